// Package indexinfo provides the index build info view for the TUI.
package indexinfo

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docrag/internal/core/domain"
)

// View shows how the loaded index was built.
type View struct {
	styles *styles.Styles

	info   domain.IndexInfo
	width  int
	height int
	ready  bool
}

// NewView creates a new index info view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		width:  80,
		height: 24,
	}
}

// SetInfo sets the build info to display.
func (v *View) SetInfo(info domain.IndexInfo) {
	v.info = info
}

// Info returns the displayed build info.
func (v *View) Info() domain.IndexInfo {
	return v.info
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the index view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		}
	}

	return v, nil
}

// buildContent builds the label/value lines for display.
func (v *View) buildContent() []string {
	lines := []string{
		formatField("Build", v.info.BuildID),
		formatField("Model", v.info.Model),
		formatField("Chunks", fmt.Sprintf("%d", v.info.Count)),
		formatField("Dimensions", fmt.Sprintf("%d", v.info.Dimensionality)),
	}
	if !v.info.CreatedAt.IsZero() {
		lines = append(lines, formatField("Created", v.info.CreatedAt.Local().Format("2006-01-02 15:04:05")))
	}
	return lines
}

func formatField(label, value string) string {
	return fmt.Sprintf("%-12s %s", label+":", value)
}

// View renders the index view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Index"))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(max(v.width-4, 0), 60)))
	b.WriteString("\n\n")

	if v.info.BuildID == "" {
		b.WriteString(v.styles.Muted.Render("No index loaded"))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	for _, line := range v.buildContent() {
		label, value, _ := strings.Cut(line, ":")
		b.WriteString(v.styles.Subtitle.Render(label + ":"))
		b.WriteString(v.styles.Normal.Render(value))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

// renderHelp renders the help footer.
func (v *View) renderHelp() string {
	return v.styles.Help.Render("[esc] back")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}
