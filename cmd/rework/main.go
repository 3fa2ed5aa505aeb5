// Command rework applies idempotent transformations to a file corpus.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/rework/internal/adapters/driven/config/file"
	"github.com/custodia-labs/rework/internal/adapters/driven/regenerate"
	"github.com/custodia-labs/rework/internal/adapters/driven/storage/filesystem"
	"github.com/custodia-labs/rework/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/rework/internal/adapters/driving/cli"
	"github.com/custodia-labs/rework/internal/core/ports/driven"
	"github.com/custodia-labs/rework/internal/core/services"
	"github.com/custodia-labs/rework/internal/transforms"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetInitializer(wire)

	if err := cli.Execute(); err != nil {
		if !errors.Is(err, cli.ErrRunFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// wire builds the adapters and services from configuration.
func wire(opts cli.Options) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	out := &cli.Services{Settings: settingsService}

	settings, err := settingsService.Get()
	if err != nil {
		out.CorpusErr = fmt.Errorf("load settings: %w", err)
		return out, nil
	}

	root := opts.Root
	if root == "" {
		root = settings.Corpus.Root
	}
	store, err := filesystem.NewStore(root, settings.Backup.Dir)
	if err != nil {
		out.CorpusErr = fmt.Errorf("open corpus: %w", err)
		return out, nil
	}

	ledgerDir := settings.Backup.LedgerDir
	if ledgerDir == "" && opts.ConfigDir != "" {
		ledgerDir = filepath.Join(opts.ConfigDir, "data")
	}
	db, err := sqlite.NewStore(ledgerDir)
	if err != nil {
		out.CorpusErr = fmt.Errorf("open ledger: %w", err)
		return out, nil
	}
	ledger := db.BackupLedger()

	catalogPath := opts.CatalogPath
	if catalogPath == "" {
		catalogPath = settings.CatalogPath
	}
	if catalogPath == "" && opts.ConfigDir != "" {
		catalogPath = filepath.Join(opts.ConfigDir, "catalog.toml")
	}
	catalogStore, err := file.NewCatalogStore(catalogPath)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	registry := transforms.NewRegistry()
	transforms.RegisterDefaults(registry, transforms.Options{MetadataBlock: settings.Context.MetadataBlock})

	var regen driven.RegenerationGateway
	if settings.Regenerate.Command != "" {
		gateway, err := regenerate.New(regenerate.FromSettings(store.Root(), settings.Regenerate))
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("regeneration: %w", err)
		}
		regen = gateway
	}

	engine := services.NewPatchEngine(store, ledger, services.NewSignatureMatcher())

	out.Catalog = services.NewCatalogService(catalogStore, transforms.NewBuilder(registry))
	out.Runner = services.NewBatchRunner(store, engine, regen)
	out.Planner = services.NewPlanService(store, engine)
	out.Rollback = services.NewRollbackService(store, ledger)
	out.Contexts = services.NewContextBuilder(store, settings.Context)
	out.Watcher = store
	out.Close = db.Close
	return out, nil
}
