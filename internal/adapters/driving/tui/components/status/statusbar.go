// Package status provides the status bar shown under the passages.
package status

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docrag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docrag/internal/core/domain"
)

// State is what the ask view is doing.
type State string

const (
	StateReady      State = "ready"
	StateRetrieving State = "retrieving"
	StateResults    State = "results"
	StateError      State = "error"
)

// Bar summarises the last retrieval on the left and shows key hints on
// the right.
type Bar struct {
	styles *styles.Styles
	keymap *keymap.KeyMap
	width  int

	state    State
	err      error
	count    int
	topScore float64
	elapsed  time.Duration
}

// NewBar creates a status bar. Nil styles or keymap use the defaults.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{styles: s, keymap: km, width: 80, state: StateReady}
}

// Init implements the component contract; the bar has no commands.
func (b *Bar) Init() tea.Cmd { return nil }

// Retrieving marks a question in flight.
func (b *Bar) Retrieving() {
	b.state = StateRetrieving
	b.err = nil
}

// Done records a finished retrieval.
func (b *Bar) Done(results domain.RetrievalResult, elapsed time.Duration) {
	b.state = StateResults
	b.err = nil
	b.count = len(results)
	b.topScore = 0
	if len(results) > 0 {
		b.topScore = results[0].Score
	}
	b.elapsed = elapsed
}

// Fail records a failed retrieval.
func (b *Bar) Fail(err error) {
	b.state = StateError
	b.err = err
	b.count = 0
}

// Reset returns to the ready state.
func (b *Bar) Reset() {
	*b = Bar{styles: b.styles, keymap: b.keymap, width: b.width, state: StateReady}
}

// SetWidth sets the rendered width.
func (b *Bar) SetWidth(width int) { b.width = width }

func (b *Bar) State() State           { return b.state }
func (b *Bar) ResultCount() int       { return b.count }
func (b *Bar) Elapsed() time.Duration { return b.elapsed }
func (b *Bar) Err() error             { return b.err }

// View renders the bar at its width.
func (b *Bar) View() string {
	left, right := b.summary(), b.hints()
	gap := max(b.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return b.styles.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (b *Bar) summary() string {
	switch b.state {
	case StateRetrieving:
		return b.styles.Muted.Render("Retrieving...")
	case StateError:
		if b.err != nil {
			return b.styles.Error.Render("Error: " + b.err.Error())
		}
		return b.styles.Error.Render("Error")
	case StateResults:
		if b.count == 0 {
			return b.styles.Muted.Render("No passages matched")
		}
		text := fmt.Sprintf("%d passages, best %.3f", b.count, b.topScore)
		if b.elapsed > 0 {
			text += " in " + b.elapsed.Round(time.Millisecond).String()
		}
		return b.styles.Score(b.topScore).Render(text)
	default:
		return b.styles.Muted.Render("Ready")
	}
}

func (b *Bar) hints() string {
	bindings := b.keymap.ShortHelp()
	if b.state == StateResults && b.count > 0 {
		bindings = b.keymap.ResultsHelp()
	}
	parts := make([]string, 0, len(bindings))
	for _, k := range bindings {
		h := k.Help()
		parts = append(parts, h.Key+": "+h.Desc)
	}
	return b.styles.Muted.Render(strings.Join(parts, " | "))
}
