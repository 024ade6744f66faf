// Package menu provides the start menu of the TUI.
package menu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docrag/internal/core/domain"
)

// Item is one menu entry. Selecting a Quit item exits.
type Item struct {
	Label string
	View  messages.ViewType
	Quit  bool
}

// View lists the entries under a one-line summary of the loaded index.
type View struct {
	styles   *styles.Styles
	items    []Item
	selected int
	info     domain.IndexInfo
	width    int
	height   int
	ready    bool
}

// NewView creates the menu.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		items: []Item{
			{Label: "Ask a question", View: messages.ViewAsk},
			{Label: "Index info", View: messages.ViewIndex},
			{Label: "Help", View: messages.ViewHelp},
			{Label: "Quit", Quit: true},
		},
		width:  80,
		height: 24,
	}
}

func (v *View) Init() tea.Cmd { return nil }

// Update moves the cursor and emits ViewChanged on enter.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			v.selected = max(v.selected-1, 0)
		case "down", "j":
			v.selected = min(v.selected+1, len(v.items)-1)
		case "q":
			return v, tea.Quit
		case "enter":
			item := v.items[v.selected]
			if item.Quit {
				return v, tea.Quit
			}
			return v, func() tea.Msg { return messages.ViewChanged{View: item.View} }
		}
	}
	return v, nil
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("docrag") + "\n")
	b.WriteString(v.styles.Muted.Render("Attributed context from your PDFs") + "\n\n")
	b.WriteString(v.summary() + "\n\n")

	for i, item := range v.items {
		if i == v.selected {
			b.WriteString(v.styles.Selected.Render("> "+item.Label) + "\n")
			continue
		}
		b.WriteString(v.styles.Normal.Render("  "+item.Label) + "\n")
	}

	b.WriteString("\n" + v.styles.Help.Render("[j/k] Navigate  [Enter] Select  [q] Quit"))
	return b.String()
}

func (v *View) summary() string {
	if v.info.BuildID == "" {
		return v.styles.Error.Render("No index loaded")
	}
	return v.styles.Subtitle.Render(fmt.Sprintf("%d chunks", v.info.Count)) +
		v.styles.Muted.Render(fmt.Sprintf(" embedded with %s", v.info.Model))
}

// SetInfo sets the index summary line.
func (v *View) SetInfo(info domain.IndexInfo) {
	v.info = info
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the cursor index.
func (v *View) Selected() int {
	return v.selected
}
