package cli

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rework/internal/adapters/driving/cli/styles"
	"github.com/custodia-labs/rework/internal/core/ports/driving"
	"github.com/custodia-labs/rework/internal/logger"
	"github.com/custodia-labs/rework/internal/selectors"
)

var (
	watchSelector string
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch [transformation...]",
	Short: "Apply transformations as artifacts change",
	Long: `Watches the corpus and re-runs the transformations on artifacts that are
created or modified. Changes are batched until the corpus has been quiet
for the debounce period. Rewrites made by the run itself are classified as
already applied on the next event, so the loop settles.

Stop with Ctrl-C.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchSelector, "selector", "s", "", "selector expression (default corpus.selector)")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "quiet period before a batch starts")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	s, err := requireCorpus()
	if err != nil {
		return err
	}
	if s.Watcher == nil {
		return errors.New("watching is not supported by this artifact store")
	}
	settings, err := s.Settings.Get()
	if err != nil {
		return err
	}
	selector, err := resolveSelector(s, watchSelector, "")
	if err != nil {
		return err
	}
	specs, err := s.Catalog.Specs(cmd.Context(), args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	events, err := s.Watcher.Watch(ctx, selector)
	if err != nil {
		return err
	}

	st := styles.For(cmd.OutOrStdout())
	cmd.Printf("Watching for changes (%d transformations). Press Ctrl-C to stop.\n", len(specs))

	debounce(ctx, events, watchDebounce, func(keys []string) {
		report, err := s.Runner.Run(ctx, driving.RunRequest{
			Selector:   selectors.Keys(keys...),
			Specs:      specs,
			Contexts:   s.Contexts,
			Regenerate: settings.Regenerate.Enabled,
			Workers:    settings.Batch.Workers,
		})
		if err != nil {
			logger.Error("run: %v", err)
			return
		}
		for _, a := range report.Artifacts {
			renderArtifact(cmd.OutOrStdout(), st, a)
		}
	})
	return nil
}

// debounce collects keys from events and calls fn with the distinct keys,
// sorted, once no event has arrived for wait. It returns when ctx is done
// or events is closed, flushing anything pending in the latter case.
func debounce(ctx context.Context, events <-chan string, wait time.Duration, fn func(keys []string)) {
	pending := make(map[string]bool)
	timer := time.NewTimer(wait)
	if !timer.Stop() {
		<-timer.C
	}

	flush := func() {
		if len(pending) == 0 {
			return
		}
		keys := make([]string, 0, len(pending))
		for k := range pending {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		clear(pending)
		fn(keys)
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case key, ok := <-events:
			if !ok {
				timer.Stop()
				flush()
				return
			}
			pending[key] = true
			timer.Reset(wait)
		case <-timer.C:
			flush()
		}
	}
}
