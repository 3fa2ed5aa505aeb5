package domain

import "time"

// Default values for application settings.
const (
	DefaultBackupDir         = "previous"
	DefaultSelector          = "digits:2:*.py"
	DefaultMetadataBlock     = "CHART_METADATA"
	DefaultRegenTimeout      = 30 * time.Second
	DefaultRegenConcurrency  = 1
	DefaultLaunchesPerSecond = 0
	DefaultWorkers           = 1
)

// CorpusSettings controls corpus discovery.
type CorpusSettings struct {
	// Root is the corpus root directory.
	Root string

	// Selector is a selector expression such as "glob:module*/charts/*/*.py".
	Selector string
}

// BackupSettings controls where backups and the ledger live.
type BackupSettings struct {
	// Dir is the backup directory, relative to the corpus root.
	Dir string

	// LedgerDir holds the ledger database. Empty means ~/.rework/data.
	LedgerDir string
}

// ContextSettings controls how render contexts are built.
type ContextSettings struct {
	// URLBase is joined with the artifact folder when no metadata URL exists.
	URLBase string

	// MetadataBlock names the key/value block read from each artifact.
	MetadataBlock string

	// Params are static parameters passed to every renderer.
	Params map[string]string
}

// RegenerateSettings controls rebuilding of derived outputs.
type RegenerateSettings struct {
	Enabled bool

	// Command is a template run through sh -c in the artifact's folder.
	Command string

	// Output is a template naming the expected derived output file.
	Output string

	Timeout time.Duration

	// WarningPatterns mark a successful build as a warning when seen in its output.
	WarningPatterns []string

	// MaxConcurrent caps simultaneous external builds.
	MaxConcurrent int

	// LaunchesPerSecond throttles build starts. Zero disables throttling.
	LaunchesPerSecond float64

	// AuxExtensions are build by-products swept into AuxDir after a build.
	AuxExtensions []string
	AuxDir        string

	// WarningsAsFailures makes the CLI treat warnings as failed runs.
	WarningsAsFailures bool
}

// BatchSettings controls batch execution.
type BatchSettings struct {
	// Workers is the number of artifacts processed concurrently.
	Workers int
}

// Settings is the full application configuration.
type Settings struct {
	Corpus     CorpusSettings
	Backup     BackupSettings
	Context    ContextSettings
	Regenerate RegenerateSettings
	Batch      BatchSettings

	// CatalogPath is the transformation catalog file (TOML or YAML).
	CatalogPath string
}

// DefaultSettings returns settings with sensible defaults.
func DefaultSettings() Settings {
	return Settings{
		Corpus: CorpusSettings{
			Root:     ".",
			Selector: DefaultSelector,
		},
		Backup: BackupSettings{
			Dir: DefaultBackupDir,
		},
		Context: ContextSettings{
			MetadataBlock: DefaultMetadataBlock,
			Params:        map[string]string{},
		},
		Regenerate: RegenerateSettings{
			Command:           "python {{.Name}}",
			Timeout:           DefaultRegenTimeout,
			WarningPatterns:   []string{"Warning:"},
			MaxConcurrent:     DefaultRegenConcurrency,
			LaunchesPerSecond: DefaultLaunchesPerSecond,
		},
		Batch: BatchSettings{
			Workers: DefaultWorkers,
		},
	}
}

// Validate checks settings for values the services cannot work with.
func (s Settings) Validate() error {
	if s.Corpus.Root == "" {
		return errInvalid("corpus.root is required")
	}
	if s.Backup.Dir == "" {
		return errInvalid("backup.dir is required")
	}
	if s.Regenerate.Enabled && s.Regenerate.Command == "" {
		return errInvalid("regenerate.command is required when regeneration is enabled")
	}
	if s.Regenerate.Timeout <= 0 {
		return errInvalid("regenerate.timeout_seconds must be positive")
	}
	if s.Regenerate.MaxConcurrent < 1 {
		return errInvalid("regenerate.max_concurrent must be at least 1")
	}
	if s.Batch.Workers < 1 {
		return errInvalid("batch.workers must be at least 1")
	}
	return nil
}

func errInvalid(msg string) error {
	return &settingsError{msg: msg}
}

type settingsError struct {
	msg string
}

func (e *settingsError) Error() string {
	return ErrInvalidInput.Error() + ": " + e.msg
}

func (e *settingsError) Unwrap() error {
	return ErrInvalidInput
}
