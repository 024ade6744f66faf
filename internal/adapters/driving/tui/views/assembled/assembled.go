// Package assembled provides the assembled-context view for the TUI.
package assembled

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docrag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/services"
	"github.com/custodia-labs/docrag/internal/sanitizer"
)

// View shows the context block that would be handed to a model.
type View struct {
	styles *styles.Styles
	keymap *keymap.KeyMap

	answer       *domain.Answer
	lines        []string
	scrollOffset int
	width        int
	height       int
	ready        bool
}

// NewView creates a new context view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		keymap: keymap.DefaultKeyMap(),
		width:  80,
		height: 24,
	}
}

// SetAnswer replaces the displayed answer and scrolls to the top.
func (v *View) SetAnswer(answer *domain.Answer) {
	v.answer = answer
	v.scrollOffset = 0
	v.wrapContent()
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the context view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	km := v.keymap
	switch {
	case key.Matches(msg, km.Up):
		if v.scrollOffset > 0 {
			v.scrollOffset--
		}
	case key.Matches(msg, km.Down):
		if v.scrollOffset < v.maxScrollOffset() {
			v.scrollOffset++
		}
	case key.Matches(msg, km.PageUp):
		v.scrollOffset = max(v.scrollOffset-v.visibleLines(), 0)
	case key.Matches(msg, km.PageDown):
		v.scrollOffset = min(v.scrollOffset+v.visibleLines(), v.maxScrollOffset())
	case key.Matches(msg, km.Top):
		v.scrollOffset = 0
	case key.Matches(msg, km.Bottom):
		v.scrollOffset = v.maxScrollOffset()
	case key.Matches(msg, km.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewAsk}
		}
	}

	return v, nil
}

// wrapContent wraps the context to fit the view width, by rune.
func (v *View) wrapContent() {
	if v.answer == nil || v.answer.Context == "" {
		v.lines = nil
		return
	}

	contentWidth := max(v.width-4, 20)

	rawLines := strings.Split(v.answer.Context, "\n")
	v.lines = make([]string, 0, len(rawLines))
	for _, line := range rawLines {
		runes := []rune(line)
		for len(runes) > contentWidth {
			v.lines = append(v.lines, string(runes[:contentWidth]))
			runes = runes[contentWidth:]
		}
		v.lines = append(v.lines, string(runes))
	}
	v.scrollOffset = min(v.scrollOffset, v.maxScrollOffset())
}

// visibleLines returns the number of lines that can be displayed.
func (v *View) visibleLines() int {
	// title, question, separator, help and padding
	return max(v.height-7, 1)
}

// maxScrollOffset returns the maximum scroll offset.
func (v *View) maxScrollOffset() int {
	return max(len(v.lines)-v.visibleLines(), 0)
}

// View renders the context view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Context"))
	b.WriteString("\n")
	if v.answer != nil {
		b.WriteString(v.styles.Muted.Render("Q: " + v.answer.Question))
		b.WriteString("\n")
	}
	b.WriteString(strings.Repeat("─", min(max(v.width-4, 0), 60)))
	b.WriteString("\n\n")

	if len(v.lines) == 0 {
		b.WriteString(v.styles.Muted.Render("(No context)"))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	visible := v.visibleLines()
	end := min(v.scrollOffset+visible, len(v.lines))
	for _, line := range v.lines[v.scrollOffset:end] {
		b.WriteString(v.renderLine(line))
		b.WriteString("\n")
	}

	if len(v.lines) > visible {
		b.WriteString("\n")
		percentage := 0
		if v.maxScrollOffset() > 0 {
			percentage = v.scrollOffset * 100 / v.maxScrollOffset()
		}
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d%%] Line %d-%d of %d",
			percentage, v.scrollOffset+1, end, len(v.lines))))
	}

	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

// renderLine styles attribution headers and redaction markers.
func (v *View) renderLine(line string) string {
	if strings.HasPrefix(line, services.SourcePrefix) {
		return v.styles.SourceHeader.Render(line)
	}
	if !strings.Contains(line, sanitizer.RedactionMarker) {
		return v.styles.Normal.Render(line)
	}

	parts := strings.Split(line, sanitizer.RedactionMarker)
	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			b.WriteString(v.styles.Redacted.Render(sanitizer.RedactionMarker))
		}
		if p != "" {
			b.WriteString(v.styles.Normal.Render(p))
		}
	}
	return b.String()
}

// renderHelp renders the help footer.
func (v *View) renderHelp() string {
	return v.styles.Help.Render("[↑/↓/PgUp/PgDn] scroll  [g/G] top/bottom  [esc] back")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.wrapContent()
}

// Answer returns the displayed answer.
func (v *View) Answer() *domain.Answer {
	return v.answer
}

// Lines returns the wrapped context lines.
func (v *View) Lines() []string {
	return v.lines
}

// ScrollOffset returns the index of the first visible line.
func (v *View) ScrollOffset() int {
	return v.scrollOffset
}
