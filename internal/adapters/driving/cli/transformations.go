package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rework/internal/core/domain"
)

var transformationsCmd = &cobra.Command{
	Use:     "transformations",
	Aliases: []string{"catalog"},
	Short:   "List the transformation catalog",
	Long: `Lists the catalog's transformations in pipeline order and checks that
each one builds: placements are known, patterns compile and templates parse.`,
	Args: cobra.NoArgs,
	RunE: runTransformations,
}

func init() {
	rootCmd.AddCommand(transformationsCmd)
}

func runTransformations(cmd *cobra.Command, _ []string) error {
	s, err := requireCorpus()
	if err != nil {
		return err
	}
	catalog, err := s.Catalog.Catalog(cmd.Context())
	if err != nil {
		return err
	}
	if len(catalog.Transformations) == 0 {
		cmd.Println("The catalog is empty.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERSION\tRENDERER\tPLACEMENT\tANCHORS")
	for _, t := range catalog.Transformations {
		renderer := t.Renderer
		if renderer == "" {
			renderer = "template"
		}
		version := t.Version
		if version == 0 {
			version = 1
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", t.Name, version, renderer, t.Placement, patternList(t.Anchors))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	// Building validates every definition
	if _, err := s.Catalog.Specs(cmd.Context(), nil); err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}
	return nil
}

func patternList(defs []domain.PatternDefinition) string {
	if len(defs) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(defs))
	for _, d := range defs {
		if d.Regex {
			parts = append(parts, "/"+d.Pattern+"/")
		} else {
			parts = append(parts, fmt.Sprintf("%q", d.Pattern))
		}
	}
	return strings.Join(parts, ", ")
}
