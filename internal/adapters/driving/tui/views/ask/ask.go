// Package ask provides the question view for the TUI: an input line,
// the ranked passages of the last answer, and a status bar.
package ask

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docrag/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docrag/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/docrag/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docrag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
)

// View represents the ask view with input, passage list, and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	list      *list.ResultList
	statusbar *status.Bar

	queryService driving.QueryService
	ctx          context.Context
	topK         int

	width      int
	height     int
	ready      bool
	err        error
	answer     *domain.Answer
	focusInput bool // true = input mode (typing), false = results mode (navigating)
}

// NewView creates a new ask view.
func NewView(s *styles.Styles, km *keymap.KeyMap, queryService driving.QueryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:       s,
		keymap:       km,
		input:        input.NewQuestionInput(s),
		list:         list.NewResultList(s),
		statusbar:    status.NewBar(s, km),
		queryService: queryService,
		ctx:          context.Background(),
		width:        80,
		height:       24,
		focusInput:   true,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetTopK sets how many passages each question retrieves. Zero uses the
// service default.
func (v *View) SetTopK(k int) {
	v.topK = max(k, 0)
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the ask view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.statusbar.Fail(msg.Err)
		return v, nil
	}

	var inputCmd tea.Cmd
	v.input, inputCmd = v.input.Update(msg)
	if inputCmd != nil {
		cmds = append(cmds, inputCmd)
	}

	var listCmd tea.Cmd
	v.list, listCmd = v.list.Update(msg)
	if listCmd != nil {
		cmds = append(cmds, listCmd)
	}

	return v, tea.Batch(cmds...)
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if msg.Type == tea.KeyEnter && v.focusInput {
		question := strings.TrimSpace(v.input.Value())
		if question == "" {
			return v, nil
		}
		return v, v.Ask(question)
	}

	if v.focusInput {
		v.input, _ = v.input.Update(msg)
		return v, nil
	}

	switch {
	case key.Matches(msg, v.keymap.Up):
		v.list.MoveUp()
	case key.Matches(msg, v.keymap.Down):
		v.list.MoveDown()
	case key.Matches(msg, v.keymap.NewQuestion):
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	case key.Matches(msg, v.keymap.Context):
		if v.answer == nil {
			return v, nil
		}
		answer := v.answer
		return v, func() tea.Msg {
			return messages.ContextRequested{Answer: answer}
		}
	}

	return v, nil
}

// Ask starts retrieval for question and returns the command that
// delivers the answer.
func (v *View) Ask(question string) tea.Cmd {
	v.input.SetValue(question)
	v.statusbar.Retrieving()
	v.focusInput = false
	v.input.Blur()

	ctx, svc, topK := v.ctx, v.queryService, v.topK
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoQueryService}
		}
		start := time.Now()
		answer, err := svc.Ask(ctx, question, topK)
		return messages.AnswerReceived{Answer: answer, Err: err, Elapsed: time.Since(start)}
	}
}

// handleAnswer processes a finished retrieval.
func (v *View) handleAnswer(msg messages.AnswerReceived) {
	if msg.Err != nil {
		v.err = msg.Err
		v.answer = nil
		v.list.SetResults(nil)
		v.statusbar.Fail(msg.Err)
		return
	}

	v.err = nil
	v.answer = msg.Answer
	var results domain.RetrievalResult
	if msg.Answer != nil {
		results = msg.Answer.Results
	}
	v.list.SetResults(results)
	v.statusbar.Done(results, msg.Elapsed)

	v.focusInput = false
	v.input.Blur()
}

// View renders the ask view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)
	sections = append(sections, v.styles.Title.Render("docrag"), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	sections = append(sections, v.list.View(), "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-10) // header, input and status
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Question returns the current input value.
func (v *View) Question() string {
	return v.input.Value()
}

// Answer returns the last successful answer, if any.
func (v *View) Answer() *domain.Answer {
	return v.answer
}

// Results returns the passages of the last answer.
func (v *View) Results() domain.RetrievalResult {
	return v.list.Results()
}

// SelectedIndex returns the index of the selected passage.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Reset returns the view to input mode with nothing shown.
func (v *View) Reset() {
	v.focusInput = true
	v.input.Focus()
	v.input.SetValue("")
	v.list.SetResults(nil)
	v.answer = nil
	v.err = nil
	v.statusbar.Reset()
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}
