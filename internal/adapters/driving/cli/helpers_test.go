package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rework/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/rework/internal/core/domain"
	"github.com/custodia-labs/rework/internal/core/services"
	"github.com/custodia-labs/rework/internal/transforms"
)

// catalogFunc adapts a function to driven.CatalogSource.
type catalogFunc func() (domain.Catalog, error)

func (f catalogFunc) Load(context.Context) (domain.Catalog, error) {
	return f()
}

// stubRegen records rebuilt keys and returns a fixed result.
type stubRegen struct {
	mu     sync.Mutex
	keys   []string
	result domain.RegenerationResult
}

func (s *stubRegen) Regenerate(_ context.Context, key string) domain.RegenerationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, key)
	return s.result
}

type testEnv struct {
	store  *memory.ArtifactStore
	ledger *memory.BackupLedger
	config *memory.ConfigStore
	regen  *stubRegen
}

func markerDef() domain.TransformationDefinition {
	return domain.TransformationDefinition{
		Name:      "add-marker",
		Renderer:  transforms.KindLiteral,
		Placement: string(domain.PlacementInsertAfter),
		Markers:   []domain.PatternDefinition{{Pattern: "MARKER"}},
		Anchors:   []domain.PatternDefinition{{Pattern: "X"}},
		Template:  "\nMARKER",
	}
}

func urlDef() domain.TransformationDefinition {
	return domain.TransformationDefinition{
		Name:      "add-url",
		Placement: string(domain.PlacementAppend),
		Markers:   []domain.PatternDefinition{{Pattern: "URL = "}},
		Template:  "\nURL = {{ quote .URL }}\n",
	}
}

// setupTestServices wires real services over in-memory adapters.
func setupTestServices(t *testing.T, defs ...domain.TransformationDefinition) *testEnv {
	t.Helper()
	if len(defs) == 0 {
		defs = []domain.TransformationDefinition{markerDef()}
	}

	env := &testEnv{
		store:  memory.NewArtifactStore(),
		ledger: memory.NewBackupLedger(),
		config: memory.NewConfigStore(),
		regen:  &stubRegen{result: domain.RegenerationResult{Status: domain.RegenSuccess}},
	}
	require.NoError(t, env.config.Set("corpus.root", "/corpus"))
	require.NoError(t, env.config.Set("context.url_base", "https://example.org/deck/"))

	settings := services.NewSettingsService(env.config)
	current, err := settings.Get()
	require.NoError(t, err)

	registry := transforms.NewRegistry()
	transforms.RegisterDefaults(registry, transforms.Options{})
	catalog := catalogFunc(func() (domain.Catalog, error) {
		return domain.Catalog{Transformations: defs}, nil
	})
	engine := services.NewPatchEngine(env.store, env.ledger, services.NewSignatureMatcher())

	app = &Services{
		Settings: settings,
		Catalog:  services.NewCatalogService(catalog, transforms.NewBuilder(registry)),
		Runner:   services.NewBatchRunner(env.store, engine, env.regen),
		Planner:  services.NewPlanService(env.store, engine),
		Rollback: services.NewRollbackService(env.store, env.ledger),
		Contexts: services.NewContextBuilder(env.store, current.Context),
	}
	t.Cleanup(func() { app = nil })
	return env
}

// execute runs the root command with fresh flag values.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
