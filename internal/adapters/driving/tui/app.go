package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docrag/internal/adapters/driving/tui/views/ask"
	"github.com/custodia-labs/docrag/internal/adapters/driving/tui/views/assembled"
	"github.com/custodia-labs/docrag/internal/adapters/driving/tui/views/indexinfo"
	"github.com/custodia-labs/docrag/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/docrag/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	menuView    *menu.View
	askView     *ask.View
	contextView *assembled.View
	indexView   *indexinfo.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// question, if set, is asked as soon as the program starts.
	question string

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	menuView := menu.NewView(s)
	menuView.SetInfo(ports.Query.IndexInfo())

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		menuView:    menuView,
		askView:     ask.NewView(s, nil, ports.Query),
		contextView: assembled.NewView(s),
		indexView:   indexinfo.NewView(s),
		currentView: messages.ViewMenu,
	}, nil
}

// WithContext sets the context for the app and the queries it runs.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.askView.WithContext(ctx)
	return a
}

// WithTopK sets how many passages each question retrieves.
func (a *App) WithTopK(k int) *App {
	a.askView.SetTopK(k)
	return a
}

// WithQuestion asks question on start instead of showing the menu.
func (a *App) WithQuestion(question string) *App {
	a.question = question
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tea.SetWindowTitle("docrag"),
	}
	if a.question != "" {
		question := a.question
		cmds = append(cmds, func() tea.Msg {
			return messages.QuestionAsked{Question: question}
		})
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
//
//nolint:gocyclo // central message handler
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		switch a.currentView {
		case messages.ViewMenu:
			a.menuView, cmd = a.menuView.Update(msg)
		case messages.ViewAsk:
			a.askView, cmd = a.askView.Update(msg)
		case messages.ViewContext:
			a.contextView, cmd = a.contextView.Update(msg)
		case messages.ViewIndex:
			a.indexView, cmd = a.indexView.Update(msg)
		case messages.ViewHelp:
			if msg.Type == tea.KeyEsc {
				a.currentView = messages.ViewMenu
			}
		}
		return a, cmd

	case messages.QuestionAsked:
		a.currentView = messages.ViewAsk
		if msg.TopK > 0 {
			a.askView.SetTopK(msg.TopK)
		}
		return a, a.askView.Ask(msg.Question)

	case messages.AnswerReceived:
		a.err = msg.Err
		a.askView, cmd = a.askView.Update(msg)
		return a, cmd

	case messages.ContextRequested:
		a.contextView.SetAnswer(msg.Answer)
		a.currentView = messages.ViewContext
		return a, nil

	case messages.ViewChanged:
		previous := a.currentView
		a.currentView = msg.View
		switch msg.View {
		case messages.ViewAsk:
			// Coming back from the context keeps the passages on screen.
			if previous == messages.ViewContext {
				return a, nil
			}
			a.askView.Reset()
			return a, a.askView.Init()
		case messages.ViewIndex:
			a.indexView.SetInfo(a.ports.Query.IndexInfo())
		case messages.ViewMenu, messages.ViewContext, messages.ViewHelp:
			// Nothing to load.
		}
		return a, nil

	case messages.ErrorOccurred:
		a.err = msg.Err
		if a.currentView == messages.ViewAsk {
			a.askView, cmd = a.askView.Update(msg)
		}
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages (cursor blinks) to the active view.
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewAsk:
		a.askView, cmd = a.askView.Update(msg)
	case messages.ViewContext, messages.ViewIndex, messages.ViewHelp:
		// Static views.
	}

	return a, cmd
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewAsk:
		return a.askView.View()
	case messages.ViewContext:
		return a.contextView.View()
	case messages.ViewIndex:
		return a.indexView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.menuView.View()
	}
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return `Help

Navigation:
  esc         Back
  ctrl+c      Quit

Menu:
  j/k, ↑/↓    Navigate options
  enter       Select option
  q           Quit

Ask:
  (type)      Enter a question
  enter       Retrieve passages
  esc         Back to Menu

Passages:
  j/k, ↑/↓    Navigate passages
  enter, c    Show assembled context
  n           New question

Context:
  j/k, ↑/↓    Scroll
  PgUp/PgDn   Page
  esc         Back to passages

[esc] back to menu`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// Question returns the current question input.
func (a *App) Question() string {
	return a.askView.Question()
}

// Answer returns the last answer, if any.
func (a *App) Answer() *domain.Answer {
	return a.askView.Answer()
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.askView.SetDimensions(width, height)
	a.contextView.SetDimensions(width, height)
	a.indexView.SetDimensions(width, height)
}
