package cli

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rework/internal/adapters/driving/cli/styles"
	"github.com/custodia-labs/rework/internal/core/domain"
	"github.com/custodia-labs/rework/internal/core/ports/driving"
)

var (
	runSelector           string
	runOnly               string
	runStrict             bool
	runWarningsAsFailures bool
	runRegenerate         bool
	runWorkers            int
)

var runCmd = &cobra.Command{
	Use:   "run [transformation...]",
	Short: "Apply transformations to the corpus",
	Long: `Applies the named transformations, or the whole catalog, to every
selected artifact in catalog order. Artifacts that already carry a
transformation's marker are left alone, so running twice is safe.

The run fails on i/o errors and failed rebuilds. Use --strict to also fail
when an anchor is missing, and --warnings-as-failures to fail on rebuild
warnings.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runSelector, "selector", "s", "", "selector expression (default corpus.selector)")
	runCmd.Flags().StringVar(&runOnly, "only", "", "comma-separated artifact keys to process")
	runCmd.Flags().BoolVar(&runStrict, "strict", false, "treat missing anchors as failures")
	runCmd.Flags().BoolVar(&runWarningsAsFailures, "warnings-as-failures", false, "treat rebuild warnings as failures")
	runCmd.Flags().BoolVar(&runRegenerate, "regenerate", false, "rebuild outputs of patched artifacts (default regenerate.enabled)")
	runCmd.Flags().IntVarP(&runWorkers, "workers", "w", 0, "artifacts processed concurrently (default batch.workers)")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	s, err := requireCorpus()
	if err != nil {
		return err
	}
	settings, err := s.Settings.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	selector, err := resolveSelector(s, runSelector, runOnly)
	if err != nil {
		return err
	}
	specs, err := s.Catalog.Specs(cmd.Context(), args)
	if err != nil {
		return err
	}

	regenerate := settings.Regenerate.Enabled
	if cmd.Flags().Changed("regenerate") {
		regenerate = runRegenerate
	}
	workers := settings.Batch.Workers
	if cmd.Flags().Changed("workers") {
		workers = runWorkers
	}
	warningsFatal := settings.Regenerate.WarningsAsFailures
	if cmd.Flags().Changed("warnings-as-failures") {
		warningsFatal = runWarningsAsFailures
	}

	st := styles.For(cmd.OutOrStdout())
	var mu sync.Mutex
	report, err := s.Runner.Run(cmd.Context(), driving.RunRequest{
		Selector:   selector,
		Specs:      specs,
		Contexts:   s.Contexts,
		Regenerate: regenerate,
		Workers:    workers,
		OnArtifact: func(a domain.ArtifactReport) {
			if !verbose {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			renderArtifact(cmd.ErrOrStderr(), st, a)
		},
	})
	if err != nil {
		return err
	}

	renderReport(cmd.OutOrStdout(), st, report)
	if report.HasFailures(runStrict, warningsFatal) {
		return ErrRunFailed
	}
	return nil
}
