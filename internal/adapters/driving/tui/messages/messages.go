// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"time"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// QuestionAsked is a command to retrieve context for a question.
type QuestionAsked struct {
	Question string
	TopK     int
}

// AnswerReceived carries the retrieved chunks and assembled context.
type AnswerReceived struct {
	Answer  *domain.Answer
	Err     error
	Elapsed time.Duration
}

// ContextRequested opens the assembled context of the current answer.
type ContextRequested struct {
	Answer *domain.Answer
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewAsk is the question input and ranked chunks view.
	ViewAsk
	// ViewContext shows the assembled context.
	ViewContext
	// ViewIndex shows the loaded index's build info.
	ViewIndex
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewAsk:
		return "ask"
	case ViewContext:
		return "context"
	case ViewIndex:
		return "index"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
