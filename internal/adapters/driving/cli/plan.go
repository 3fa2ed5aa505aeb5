package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/rework/internal/adapters/driving/cli/styles"
	"github.com/custodia-labs/rework/internal/core/domain"
	"github.com/custodia-labs/rework/internal/core/ports/driving"
)

var (
	planSelector string
	planOnly     string
	planDiff     bool
	planCheck    bool
)

var planCmd = &cobra.Command{
	Use:     "plan [transformation...]",
	Aliases: []string{"check"},
	Short:   "Show what a run would change",
	Long: `Classifies every selected artifact against each transformation without
writing, backing up or recording anything.

With --check the command fails when any artifact still needs a change or
has no anchor, which suits CI jobs that verify a corpus is up to date.`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&planSelector, "selector", "s", "", "selector expression (default corpus.selector)")
	planCmd.Flags().StringVar(&planOnly, "only", "", "comma-separated artifact keys to inspect")
	planCmd.Flags().BoolVarP(&planDiff, "diff", "d", false, "print the patch for each pending change")
	planCmd.Flags().BoolVar(&planCheck, "check", false, "fail unless every artifact is already applied")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	s, err := requireCorpus()
	if err != nil {
		return err
	}
	selector, err := resolveSelector(s, planSelector, planOnly)
	if err != nil {
		return err
	}
	specs, err := s.Catalog.Specs(cmd.Context(), args)
	if err != nil {
		return err
	}

	previews, err := s.Planner.Plan(cmd.Context(), driving.PlanRequest{
		Selector: selector,
		Specs:    specs,
		Contexts: s.Contexts,
	})
	if err != nil {
		return err
	}

	renderPreviews(cmd.OutOrStdout(), styles.For(cmd.OutOrStdout()), previews, planDiff)

	if planCheck || cmd.CalledAs() == "check" {
		for _, p := range previews {
			if p.Classification.Kind != domain.MatchAlreadyApplied {
				return ErrRunFailed
			}
		}
	}
	return nil
}
