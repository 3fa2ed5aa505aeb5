// Package cli implements the rework command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rework/internal/core/domain"
	"github.com/custodia-labs/rework/internal/core/ports/driving"
	"github.com/custodia-labs/rework/internal/logger"
	"github.com/custodia-labs/rework/internal/selectors"
)

// ErrRunFailed is returned when a run finished with failures under the
// active failure policy. The report has already been printed.
var ErrRunFailed = errors.New("run finished with failures")

// version is set by SetVersion from build flags.
var version = "dev"

// Watcher streams keys of artifacts that change on disk.
type Watcher interface {
	Watch(ctx context.Context, selector domain.Selector) (<-chan string, error)
}

// Services holds everything the commands drive.
type Services struct {
	Settings driving.SettingsService
	Catalog  driving.CatalogService
	Runner   driving.BatchRunner
	Planner  driving.PlanService
	Rollback driving.RollbackService
	Contexts driving.ContextBuilder

	// Watcher is optional; the watch command needs it.
	Watcher Watcher

	// Close releases resources such as the ledger database.
	Close func() error

	// CorpusErr explains why the corpus services are missing. Settings
	// stay usable so a bad corpus.root can be fixed.
	CorpusErr error
}

// Options are the global flags passed to the initialiser.
type Options struct {
	ConfigDir   string
	Root        string
	CatalogPath string
}

// Initializer builds services once flags are parsed.
type Initializer func(opts Options) (*Services, error)

var (
	app         *Services
	initializer Initializer

	verbose     bool
	logLevel    string
	configDir   string
	rootDir     string
	catalogPath string
)

var rootCmd = &cobra.Command{
	Use:   "rework",
	Short: "Idempotent patch-and-regenerate for file corpora",
	Long: `rework applies named text transformations to every selected file of a
corpus, exactly once. Each change is located by an anchor and recognised
by a marker, so re-running a batch never applies anything twice.

Every rewrite is preceded by a timestamped backup recorded in a ledger,
and patched files can have their derived outputs rebuilt by an external
command.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every step")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.rework)")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "corpus root (overrides corpus.root)")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "transformation catalog file (overrides catalog.path)")
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	version = v
}

// SetInitializer registers the function that wires services.
func SetInitializer(fn Initializer) {
	initializer = fn
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer func() {
		if app != nil && app.Close != nil {
			if err := app.Close(); err != nil {
				logger.Warn("close: %v", err)
			}
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if logLevel != "" {
		level, err := logger.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logger.SetLevel(level)
	}

	if app != nil || initializer == nil || !needsServices(cmd) {
		return nil
	}
	s, err := initializer(Options{ConfigDir: configDir, Root: rootDir, CatalogPath: catalogPath})
	if err != nil {
		return fmt.Errorf("initialise: %w", err)
	}
	app = s
	return nil
}

// needsServices is false for commands that only print static text.
func needsServices(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "help", "completion":
		return false
	}
	return true
}

func requireServices() (*Services, error) {
	if app == nil {
		return nil, errors.New("services not configured")
	}
	return app, nil
}

// requireCorpus is requireServices for commands that touch the corpus.
func requireCorpus() (*Services, error) {
	s, err := requireServices()
	if err != nil {
		return nil, err
	}
	if s.Runner == nil || s.Planner == nil || s.Rollback == nil || s.Catalog == nil {
		if s.CorpusErr != nil {
			return nil, s.CorpusErr
		}
		return nil, errors.New("corpus not configured")
	}
	return s, nil
}

// resolveSelector picks the artifacts for a command. Explicit keys win
// over a selector expression, which wins over the configured selector.
func resolveSelector(s *Services, expr, only string) (domain.Selector, error) {
	if keys := splitList(only); len(keys) > 0 {
		return selectors.Keys(keys...), nil
	}
	if expr == "" {
		settings, err := s.Settings.Get()
		if err != nil {
			return nil, fmt.Errorf("load settings: %w", err)
		}
		expr = settings.Corpus.Selector
	}
	return selectors.Parse(expr)
}

// splitList splits a comma-separated flag value, dropping blanks.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
