package cli

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// Reporter shows progress of one long-running stage.
type Reporter interface {
	Start(total int)
	Update(current int, message string)
	Finish()
}

// newReporter returns a progress bar when w is an interactive terminal and
// a line reporter otherwise.
func newReporter(w io.Writer, description string) Reporter {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) && os.Getenv("CI") == "" {
		return &TerminalReporter{w: f, description: description}
	}
	return &LineReporter{w: w, description: description}
}

// TerminalReporter draws a progress bar.
type TerminalReporter struct {
	w           io.Writer
	description string
	bar         *progressbar.ProgressBar
}

func (r *TerminalReporter) Start(total int) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(r.w),
		progressbar.OptionSetDescription(r.description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) Update(current int, message string) {
	if r.bar != nil {
		r.bar.Describe(message)
		_ = r.bar.Set(current)
	}
}

func (r *TerminalReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// LineReporter prints one line per update, for logs and pipes.
type LineReporter struct {
	w           io.Writer
	description string
	total       int
}

func (r *LineReporter) Start(total int) {
	r.total = total
	fmt.Fprintf(r.w, "%s: %d to go\n", r.description, total)
}

func (r *LineReporter) Update(current int, message string) {
	fmt.Fprintf(r.w, "[%d/%d] %s\n", current, r.total, message)
}

func (r *LineReporter) Finish() {
	fmt.Fprintf(r.w, "%s: done\n", r.description)
}

// progressFunc adapts a Reporter to the done/total callbacks of the
// services. Calls may come from several workers.
func progressFunc(r Reporter, message string) func(done, total int) {
	var (
		mu       sync.Mutex
		started  bool
		finished bool
	)
	return func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		if finished {
			return
		}
		if !started {
			r.Start(total)
			started = true
		}
		r.Update(done, message)
		if done >= total {
			r.Finish()
			finished = true
		}
	}
}
