package cli

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rework/internal/adapters/driving/cli/styles"
	"github.com/custodia-labs/rework/internal/core/domain"
)

var settingsSetList bool

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change configuration. Settings live in config.toml in the
configuration directory; keys use dot notation, for example
corpus.root or regenerate.timeout_seconds.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration key",
	Long: `Sets one configuration key. Values are stored as booleans, integers or
numbers when they parse as one, otherwise as strings. Use --list to store
a comma-separated value as a list.

Examples:
  rework settings set corpus.root ~/slides
  rework settings set regenerate.enabled true
  rework settings set regenerate.warning_patterns "Warning:,Overfull" --list
  rework settings set context.params.logo_zoom 0.08`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

func init() {
	settingsSetCmd.Flags().BoolVar(&settingsSetList, "list", false, "store the value as a comma-separated list")
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	s, err := requireServices()
	if err != nil {
		return err
	}
	settings, err := s.Settings.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	st := styles.For(cmd.OutOrStdout())
	section := func(name string) {
		cmd.Println(st.Subtitle.Render("[" + name + "]"))
	}

	cmd.Println(st.Title.Render("Current Settings"))
	cmd.Println()

	section("Corpus")
	cmd.Printf("  Root: %s\n", orUnset(settings.Corpus.Root))
	cmd.Printf("  Selector: %s\n", settings.Corpus.Selector)
	cmd.Printf("  Catalog: %s\n", orUnset(settings.CatalogPath))
	cmd.Println()

	section("Backup")
	cmd.Printf("  Directory: %s\n", settings.Backup.Dir)
	cmd.Printf("  Ledger: %s\n", orDefault(settings.Backup.LedgerDir, "~/.rework/data"))
	cmd.Println()

	section("Context")
	cmd.Printf("  URL base: %s\n", orUnset(settings.Context.URLBase))
	cmd.Printf("  Metadata block: %s\n", settings.Context.MetadataBlock)
	if len(settings.Context.Params) > 0 {
		keys := make([]string, 0, len(settings.Context.Params))
		for k := range settings.Context.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		cmd.Println("  Params:")
		for _, k := range keys {
			cmd.Printf("    %s = %s\n", k, settings.Context.Params[k])
		}
	}
	cmd.Println()

	section("Regenerate")
	r := settings.Regenerate
	cmd.Printf("  Enabled: %t\n", r.Enabled)
	cmd.Printf("  Command: %s\n", orUnset(r.Command))
	cmd.Printf("  Output: %s\n", orUnset(r.Output))
	cmd.Printf("  Timeout: %s\n", r.Timeout)
	cmd.Printf("  Max concurrent: %d\n", r.MaxConcurrent)
	if r.LaunchesPerSecond > 0 {
		cmd.Printf("  Launches per second: %g\n", r.LaunchesPerSecond)
	}
	if len(r.WarningPatterns) > 0 {
		cmd.Printf("  Warning patterns: %s\n", strings.Join(r.WarningPatterns, ", "))
	}
	cmd.Printf("  Warnings as failures: %t\n", r.WarningsAsFailures)
	cmd.Println()

	section("Batch")
	cmd.Printf("  Workers: %d\n", settings.Batch.Workers)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	s, err := requireServices()
	if err != nil {
		return err
	}
	key, raw := args[0], args[1]
	if key == "" {
		return errors.New("key must not be empty")
	}

	var value any = parseValue(raw)
	if settingsSetList {
		value = splitList(raw)
	}

	if err := s.Settings.Set(key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	if _, err := s.Settings.Get(); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			cmd.PrintErrf("Warning: settings are now invalid: %v\n", err)
		}
	}
	cmd.Printf("%s = %v\n", key, value)
	return nil
}

// parseValue stores booleans and numbers with their TOML types.
func parseValue(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil && (raw == "true" || raw == "false") {
		return b
	}
	if i, err := strconv.Atoi(raw); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

func orUnset(v string) string {
	return orDefault(v, "(not set)")
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
