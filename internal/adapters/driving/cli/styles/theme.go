// Package styles provides colour themes and styling for CLI reports.
package styles

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/custodia-labs/rework/internal/core/domain"
)

// Theme defines the colour palette for reports.
type Theme struct {
	// Primary is the main accent colour.
	Primary lipgloss.Color

	// Secondary is the secondary accent colour.
	Secondary lipgloss.Color

	// Muted is for less important text.
	Muted lipgloss.Color

	// Success indicates positive outcomes.
	Success lipgloss.Color

	// Warning indicates caution.
	Warning lipgloss.Color

	// Error indicates problems.
	Error lipgloss.Color

	// Added and Removed colour patch lines.
	Added   lipgloss.Color
	Removed lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:   lipgloss.Color("#7C3AED"), // Purple
		Secondary: lipgloss.Color("#06B6D4"), // Cyan
		Muted:     lipgloss.Color("#6C7086"), // Medium gray
		Success:   lipgloss.Color("#A6E3A1"), // Green
		Warning:   lipgloss.Color("#F9E2AF"), // Yellow
		Error:     lipgloss.Color("#F38BA8"), // Red
		Added:     lipgloss.Color("#A6E3A1"),
		Removed:   lipgloss.Color("#F38BA8"),
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	// Title style for headers.
	Title lipgloss.Style

	// Subtitle style for secondary headers.
	Subtitle lipgloss.Style

	// Muted style for less important text.
	Muted lipgloss.Style

	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style

	// Added and Removed style patch lines.
	Added   lipgloss.Style
	Removed lipgloss.Style

	// Box frames the run summary.
	Box lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),

		Subtitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Secondary),

		Muted:   lipgloss.NewStyle().Foreground(theme.Muted),
		Error:   lipgloss.NewStyle().Foreground(theme.Error),
		Success: lipgloss.NewStyle().Foreground(theme.Success),
		Warning: lipgloss.NewStyle().Foreground(theme.Warning),
		Added:   lipgloss.NewStyle().Foreground(theme.Added),
		Removed: lipgloss.NewStyle().Foreground(theme.Removed),

		Box: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Muted).
			Padding(0, 1),
	}
}

// Plain returns styles that add no escape codes, for pipes and files.
func Plain() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		theme:    DefaultTheme(),
		Title:    plain,
		Subtitle: plain,
		Muted:    plain,
		Error:    plain,
		Success:  plain,
		Warning:  plain,
		Added:    plain,
		Removed:  plain,
		Box:      plain,
	}
}

// For returns coloured styles when w is a terminal and NO_COLOR is unset,
// plain styles otherwise.
func For(w io.Writer) *Styles {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return Plain()
	}
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return Plain()
	}
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Status styles an application status.
func (s *Styles) Status(status domain.ApplicationStatus) lipgloss.Style {
	switch status {
	case domain.StatusApplied:
		return s.Success
	case domain.StatusAlreadyApplied:
		return s.Muted
	case domain.StatusAnchorNotFound:
		return s.Warning
	default:
		return s.Error
	}
}

// Regeneration styles a regeneration status.
func (s *Styles) Regeneration(status domain.RegenerationStatus) lipgloss.Style {
	switch status {
	case domain.RegenSuccess:
		return s.Success
	case domain.RegenWarning:
		return s.Warning
	case domain.RegenFailure:
		return s.Error
	default:
		return s.Muted
	}
}
