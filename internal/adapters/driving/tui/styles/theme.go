// Package styles provides the colour palette and lipgloss styles for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is the colour palette.
type Theme struct {
	Accent  lipgloss.Color // titles, selection
	Source  lipgloss.Color // attribution lines
	Text    lipgloss.Color
	Faint   lipgloss.Color // previews, hints
	Bar     lipgloss.Color // status bar background
	Edge    lipgloss.Color // input border
	Strong  lipgloss.Color // high scores
	Weak    lipgloss.Color // low scores
	Flagged lipgloss.Color // redactions
	Bad     lipgloss.Color // errors
}

// DefaultTheme returns the default dark palette.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:  lipgloss.Color("#7C3AED"),
		Source:  lipgloss.Color("#06B6D4"),
		Text:    lipgloss.Color("#CDD6F4"),
		Faint:   lipgloss.Color("#6C7086"),
		Bar:     lipgloss.Color("#181825"),
		Edge:    lipgloss.Color("#45475A"),
		Strong:  lipgloss.Color("#A6E3A1"),
		Weak:    lipgloss.Color("#FAB387"),
		Flagged: lipgloss.Color("#F9E2AF"),
		Bad:     lipgloss.Color("#F38BA8"),
	}
}

// Score bands. A passage scoring at or above StrongScore is drawn in the
// strong colour, below WeakScore in the weak one.
const (
	StrongScore = 0.75
	WeakScore   = 0.4
)

// Styles holds the rendered styles of one theme.
type Styles struct {
	theme *Theme

	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	Normal     lipgloss.Style
	Muted      lipgloss.Style
	Selected   lipgloss.Style
	Error      lipgloss.Style
	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Help       lipgloss.Style

	// SourceHeader marks the attribution line of a context block.
	SourceHeader lipgloss.Style

	// Redacted marks sanitizer replacements inside chunk text.
	Redacted lipgloss.Style

	strong lipgloss.Style
	medium lipgloss.Style
	weak   lipgloss.Style
}

// NewStyles builds styles from theme. A nil theme means DefaultTheme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	return &Styles{
		theme:      theme,
		Title:      fg(theme.Accent).Bold(true),
		Subtitle:   fg(theme.Source).Bold(true),
		Normal:     fg(theme.Text),
		Muted:      fg(theme.Faint),
		Selected:   fg(theme.Text).Background(theme.Accent).Bold(true),
		Error:      fg(theme.Bad),
		InputField: lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(theme.Edge).Padding(0, 1),
		StatusBar:  fg(theme.Faint).Background(theme.Bar).Padding(0, 1),
		Help:       fg(theme.Faint),

		SourceHeader: fg(theme.Source).Bold(true),
		Redacted:     fg(theme.Flagged).Italic(true),

		strong: fg(theme.Strong),
		medium: fg(theme.Text),
		weak:   fg(theme.Weak),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Score returns the style for a retrieval score.
func (s *Styles) Score(score float64) lipgloss.Style {
	switch {
	case score >= StrongScore:
		return s.strong
	case score < WeakScore:
		return s.weak
	default:
		return s.medium
	}
}
