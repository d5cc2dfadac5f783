// Package styles holds the colours and lipgloss styles of the project editor.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is the editor palette.
type Theme struct {
	Accent    lipgloss.Color
	Secondary lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Good      lipgloss.Color
	Warning   lipgloss.Color
	Bad       lipgloss.Color
}

// DefaultTheme returns the palette shared with the plain CLI output.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:    lipgloss.Color("#7C3AED"),
		Secondary: lipgloss.Color("#06B6D4"),
		Text:      lipgloss.Color("#CDD6F4"),
		Muted:     lipgloss.Color("#6C7086"),
		Good:      lipgloss.Color("#A6E3A1"),
		Warning:   lipgloss.Color("#F9E2AF"),
		Bad:       lipgloss.Color("#F38BA8"),
	}
}

// Styles are the rendered styles built from a Theme.
type Styles struct {
	theme *Theme

	// Title renders the project name.
	Title lipgloss.Style

	// Subtitle renders section headers such as the picker target.
	Subtitle lipgloss.Style

	Normal lipgloss.Style
	Muted  lipgloss.Style

	// Selected highlights the row under the cursor.
	Selected lipgloss.Style

	// Face marks the face the cursor is on within a slot row.
	Face lipgloss.Style

	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

// NewStyles builds styles from theme, or from the default theme when nil.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Accent),

		Subtitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Secondary),

		Normal: lipgloss.NewStyle().
			Foreground(theme.Text),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Text).
			Background(theme.Accent),

		Face: lipgloss.NewStyle().
			Underline(true),

		Success: lipgloss.NewStyle().
			Foreground(theme.Good),

		Warning: lipgloss.NewStyle().
			Foreground(theme.Warning),

		Error: lipgloss.NewStyle().
			Foreground(theme.Bad),
	}
}

// DefaultStyles returns styles for the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the palette the styles were built from.
func (s *Styles) Theme() *Theme {
	return s.theme
}
