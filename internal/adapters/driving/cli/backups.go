package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rework/internal/adapters/driving/cli/styles"
	"github.com/custodia-labs/rework/internal/core/domain"
)

var (
	backupsArtifact       string
	backupsTransformation string
	backupsRun            string
	backupsLimit          int

	rollbackArtifact       string
	rollbackTransformation string
	rollbackRun            string
)

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "List recorded backups",
	Long: `Lists backup ledger entries, oldest first. Each entry records where the
pre-patch bytes were copied, their hash and the run that took them.`,
	Args: cobra.NoArgs,
	RunE: runBackups,
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback [entry-id]",
	Short: "Restore artifacts from backups",
	Long: `Restores an artifact from a ledger entry. The backup is verified against
its recorded hash, and the current content is itself backed up first, so a
rollback can be rolled back.

Pick the entry by ID, by --artifact (newest entry, optionally narrowed
with --transformation), or restore every artifact a run touched with --run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRollback,
}

func init() {
	backupsCmd.Flags().StringVarP(&backupsArtifact, "artifact", "a", "", "only entries for this artifact key")
	backupsCmd.Flags().StringVarP(&backupsTransformation, "transformation", "t", "", "only entries for this transformation")
	backupsCmd.Flags().StringVar(&backupsRun, "run", "", "only entries from this run")
	backupsCmd.Flags().IntVarP(&backupsLimit, "limit", "n", 0, "show only the newest N entries")
	rootCmd.AddCommand(backupsCmd)

	rollbackCmd.Flags().StringVarP(&rollbackArtifact, "artifact", "a", "", "restore the newest backup of this artifact")
	rollbackCmd.Flags().StringVarP(&rollbackTransformation, "transformation", "t", "", "with --artifact, the newest backup taken by this transformation")
	rollbackCmd.Flags().StringVar(&rollbackRun, "run", "", "restore every artifact to its state before this run")
	rootCmd.AddCommand(rollbackCmd)
}

func runBackups(cmd *cobra.Command, _ []string) error {
	s, err := requireCorpus()
	if err != nil {
		return err
	}

	entries, err := s.Rollback.Entries(cmd.Context(), domain.LedgerFilter{
		ArtifactKey:    backupsArtifact,
		Transformation: backupsTransformation,
		RunID:          backupsRun,
		Limit:          backupsLimit,
	})
	if err != nil {
		return fmt.Errorf("list backups: %w", err)
	}
	if len(entries) == 0 {
		cmd.Println("No backups recorded.")
		return nil
	}

	st := styles.For(cmd.OutOrStdout())
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tARTIFACT\tTRANSFORMATION\tLOCATION")
	for _, e := range entries {
		location := st.Muted.Render(e.Location)
		if e.IsVoid() {
			location = st.Warning.Render("voids " + e.Voids)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s v%d\t%s\n",
			e.ID, e.Timestamp.UTC().Format(time.DateTime), e.ArtifactKey, e.Transformation, e.Version,
			location)
	}
	return w.Flush()
}

func runRollback(cmd *cobra.Command, args []string) error {
	s, err := requireCorpus()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	var ids []string
	switch {
	case len(args) == 1:
		ids = []string{args[0]}
	case rollbackArtifact != "":
		latest, err := s.Rollback.Latest(ctx, rollbackArtifact, rollbackTransformation)
		if err != nil {
			return fmt.Errorf("find backup of %s: %w", rollbackArtifact, err)
		}
		ids = []string{latest.ID}
	case rollbackRun != "":
		entries, err := s.Rollback.Entries(ctx, domain.LedgerFilter{RunID: rollbackRun})
		if err != nil {
			return fmt.Errorf("list run %s: %w", rollbackRun, err)
		}
		if len(entries) == 0 {
			return fmt.Errorf("run %s: %w", rollbackRun, domain.ErrNotFound)
		}
		ids = firstPerArtifact(entries)
	default:
		return errors.New("specify an entry ID, --artifact or --run")
	}

	st := styles.For(cmd.OutOrStdout())
	var failed bool
	for _, id := range ids {
		restored, err := s.Rollback.Restore(ctx, id)
		if err != nil {
			failed = true
			cmd.PrintErrf("%s %s: %v\n", st.Error.Render("failed"), id, err)
			continue
		}
		cmd.Printf("%s %s (current content saved as %s)\n",
			st.Success.Render("restored"), restored.ArtifactKey, restored.Location)
	}
	if failed {
		return ErrRunFailed
	}
	return nil
}

// firstPerArtifact returns the oldest entry ID of each artifact, which
// holds the content from before the run.
func firstPerArtifact(entries []domain.BackupEntry) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, e := range entries {
		if seen[e.ArtifactKey] {
			continue
		}
		seen[e.ArtifactKey] = true
		ids = append(ids, e.ID)
	}
	return ids
}
