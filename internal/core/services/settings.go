package services

import (
	"fmt"
	"time"

	"github.com/custodia-labs/rework/internal/core/domain"
	"github.com/custodia-labs/rework/internal/core/ports/driven"
	"github.com/custodia-labs/rework/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyCorpusRoot        = "corpus.root"
	keyCorpusSelector    = "corpus.selector"
	keyBackupDir         = "backup.dir"
	keyLedgerDir         = "ledger.dir"
	keyCatalogPath       = "catalog.path"
	keyURLBase           = "context.url_base"
	keyMetadataBlock     = "context.metadata_block"
	keyParamsPrefix      = "context.params"
	keyRegenEnabled      = "regenerate.enabled"
	keyRegenCommand      = "regenerate.command"
	keyRegenOutput       = "regenerate.output"
	keyRegenTimeout      = "regenerate.timeout_seconds"
	keyRegenWarnings     = "regenerate.warning_patterns"
	keyRegenConcurrency  = "regenerate.max_concurrent"
	keyRegenLaunchRate   = "regenerate.launches_per_second"
	keyRegenAuxExt       = "regenerate.aux_extensions"
	keyRegenAuxDir       = "regenerate.aux_dir"
	keyRegenWarningsFail = "regenerate.warnings_as_failures"
	keyBatchWorkers      = "batch.workers"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	params := s.configStore.GetStringMap(keyParamsPrefix)
	if len(params) == 0 {
		params = defaults.Context.Params
	}

	settings := &domain.Settings{
		Corpus: domain.CorpusSettings{
			Root:     s.getString(keyCorpusRoot, defaults.Corpus.Root),
			Selector: s.getString(keyCorpusSelector, defaults.Corpus.Selector),
		},
		Backup: domain.BackupSettings{
			Dir:       s.getString(keyBackupDir, defaults.Backup.Dir),
			LedgerDir: s.configStore.GetString(keyLedgerDir), // Empty means the default data dir
		},
		Context: domain.ContextSettings{
			URLBase:       s.configStore.GetString(keyURLBase),
			MetadataBlock: s.getString(keyMetadataBlock, defaults.Context.MetadataBlock),
			Params:        params,
		},
		Regenerate: domain.RegenerateSettings{
			Enabled:            s.getBool(keyRegenEnabled, defaults.Regenerate.Enabled),
			Command:            s.getString(keyRegenCommand, defaults.Regenerate.Command),
			Output:             s.configStore.GetString(keyRegenOutput),
			Timeout:            s.getSeconds(keyRegenTimeout, defaults.Regenerate.Timeout),
			WarningPatterns:    s.getStrings(keyRegenWarnings, defaults.Regenerate.WarningPatterns),
			MaxConcurrent:      s.getInt(keyRegenConcurrency, defaults.Regenerate.MaxConcurrent),
			LaunchesPerSecond:  s.getFloat(keyRegenLaunchRate, defaults.Regenerate.LaunchesPerSecond),
			AuxExtensions:      s.configStore.GetStringSlice(keyRegenAuxExt),
			AuxDir:             s.configStore.GetString(keyRegenAuxDir),
			WarningsAsFailures: s.getBool(keyRegenWarningsFail, defaults.Regenerate.WarningsAsFailures),
		},
		Batch: domain.BatchSettings{
			Workers: s.getInt(keyBatchWorkers, defaults.Batch.Workers),
		},
		CatalogPath: s.configStore.GetString(keyCatalogPath),
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{keyCorpusRoot, settings.Corpus.Root},
		{keyCorpusSelector, settings.Corpus.Selector},
		{keyBackupDir, settings.Backup.Dir},
		{keyLedgerDir, settings.Backup.LedgerDir},
		{keyCatalogPath, settings.CatalogPath},
		{keyURLBase, settings.Context.URLBase},
		{keyMetadataBlock, settings.Context.MetadataBlock},
		{keyRegenEnabled, settings.Regenerate.Enabled},
		{keyRegenCommand, settings.Regenerate.Command},
		{keyRegenOutput, settings.Regenerate.Output},
		{keyRegenTimeout, int(settings.Regenerate.Timeout / time.Second)},
		{keyRegenWarnings, settings.Regenerate.WarningPatterns},
		{keyRegenConcurrency, settings.Regenerate.MaxConcurrent},
		{keyRegenLaunchRate, settings.Regenerate.LaunchesPerSecond},
		{keyRegenAuxExt, settings.Regenerate.AuxExtensions},
		{keyRegenAuxDir, settings.Regenerate.AuxDir},
		{keyRegenWarningsFail, settings.Regenerate.WarningsAsFailures},
		{keyBatchWorkers, settings.Batch.Workers},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	for k, v := range settings.Context.Params {
		if err := s.configStore.Set(keyParamsPrefix+"."+k, v); err != nil {
			return fmt.Errorf("save %s.%s: %w", keyParamsPrefix, k, err)
		}
	}
	return nil
}

// Set updates a single configuration key.
func (s *SettingsService) Set(key string, value any) error {
	if key == "" {
		return domain.ErrInvalidInput
	}
	return s.configStore.Set(key, value)
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getStrings(key string, defaultVal []string) []string {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetStringSlice(key)
}

func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return time.Duration(s.configStore.GetFloat(key) * float64(time.Second))
}
