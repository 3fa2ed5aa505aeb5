package memory

import (
	"sync"

	"github.com/custodia-labs/rework/internal/adapters/driven/config/flat"
	"github.com/custodia-labs/rework/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore holds configuration in memory with the same typed reads as
// the file store. Save and Load do nothing.
type ConfigStore struct {
	mu     sync.RWMutex
	values flat.Values
}

// NewConfigStore creates an empty config store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{values: make(flat.Values)}
}

// NewConfigStoreFrom creates a config store preloaded with values.
func NewConfigStoreFrom(values map[string]any) *ConfigStore {
	s := NewConfigStore()
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

// Get retrieves a configuration value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok
}

func (s *ConfigStore) read(fn func(flat.Values)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.values)
}

// GetString retrieves a string configuration value.
func (s *ConfigStore) GetString(key string) (out string) {
	s.read(func(v flat.Values) { out = v.String(key) })
	return out
}

// GetInt retrieves an integer configuration value.
func (s *ConfigStore) GetInt(key string) (out int) {
	s.read(func(v flat.Values) { out = v.Int(key) })
	return out
}

// GetFloat retrieves a numeric configuration value as float64.
func (s *ConfigStore) GetFloat(key string) (out float64) {
	s.read(func(v flat.Values) { out = v.Float(key) })
	return out
}

// GetBool retrieves a boolean configuration value.
func (s *ConfigStore) GetBool(key string) (out bool) {
	s.read(func(v flat.Values) { out = v.Bool(key) })
	return out
}

// GetStringSlice retrieves a string list configuration value.
func (s *ConfigStore) GetStringSlice(key string) (out []string) {
	s.read(func(v flat.Values) { out = v.Strings(key) })
	return out
}

// GetStringMap returns every string value stored under prefix.
func (s *ConfigStore) GetStringMap(prefix string) (out map[string]string) {
	s.read(func(v flat.Values) { out = v.StringMap(prefix) })
	return out
}

// Set stores a configuration value.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Save is a no-op.
func (s *ConfigStore) Save() error { return nil }

// Load is a no-op.
func (s *ConfigStore) Load() error { return nil }

// Path returns ":memory:".
func (s *ConfigStore) Path() string { return ":memory:" }
