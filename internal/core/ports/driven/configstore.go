package driven

// ConfigStore holds application configuration under dot-notation keys
// such as "corpus.root". Typed getters return the zero value when a key
// is missing or holds another type; use Get to tell the two apart.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetFloat(key string) float64
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// GetStringMap returns the string values under prefix, keyed by the
	// rest of their key. Used for free-form tables like context.params.
	GetStringMap(prefix string) map[string]string

	// Set stores a value. File-backed stores persist it immediately.
	Set(key string, value any) error

	Save() error
	Load() error

	// Path identifies where the configuration lives.
	Path() string
}
