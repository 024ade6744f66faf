// Package keymap holds the TUI key bindings.
package keymap

import "github.com/charmbracelet/bubbles/key"

// KeyMap groups the bindings shared by the views.
type KeyMap struct {
	Quit key.Binding
	Help key.Binding
	Back key.Binding

	// Passage list.
	Up          key.Binding
	Down        key.Binding
	NewQuestion key.Binding
	Context     key.Binding

	// Scrolling long text.
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
}

func bind(help, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

// DefaultKeyMap returns vim-flavoured bindings with arrow-key fallbacks.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit:        bind("q", "quit", "q", "ctrl+c"),
		Help:        bind("?", "help", "?"),
		Back:        bind("esc", "back", "esc"),
		Up:          bind("↑/k", "up", "up", "k"),
		Down:        bind("↓/j", "down", "down", "j"),
		NewQuestion: bind("n", "new question", "n"),
		Context:     bind("enter", "context", "enter", "c"),
		PageUp:      bind("pgup", "page up", "pgup", "ctrl+u"),
		PageDown:    bind("pgdn", "page down", "pgdown", "ctrl+d"),
		Top:         bind("g", "top", "home", "g"),
		Bottom:      bind("G", "bottom", "end", "G"),
	}
}

// ShortHelp is shown while no passages are listed.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help}
}

// ResultsHelp is shown next to a passage list.
func (k *KeyMap) ResultsHelp() []key.Binding {
	return []key.Binding{k.NewQuestion, k.Up, k.Context, k.Back}
}

// ScrollHelp is shown under scrollable text.
func (k *KeyMap) ScrollHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom, k.Back}
}

// FullHelp lists every binding, one group per column.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NewQuestion, k.Context},
		{k.PageUp, k.PageDown, k.Top, k.Bottom},
		{k.Back, k.Help, k.Quit},
	}
}
