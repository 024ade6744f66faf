// Package logger provides leveled console logging and structured
// diagnostics for docrag.
//
// A Logger writes human-readable lines. Debug and Info messages are only
// printed in verbose mode; warnings are always printed. Components that
// report pipeline events accept a Sink, so tests can assert on emitted
// diagnostics with a Recorder instead of capturing process output.
package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
)

// Logger prints leveled messages to a writer.
type Logger struct {
	mu      sync.RWMutex
	verbose bool
	output  io.Writer
}

// New creates a logger writing to w. A nil writer means os.Stderr.
func New(w io.Writer, verbose bool) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return &Logger{output: w, verbose: verbose}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return New(io.Discard, false)
}

// SetVerbose enables or disables verbose logging.
func (l *Logger) SetVerbose(v bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func (l *Logger) IsVerbose() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.verbose
}

// SetOutput sets the output writer.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
}

// Debug prints a message if verbose mode is enabled.
func (l *Logger) Debug(format string, args ...any) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.verbose {
		fmt.Fprintf(l.output, "[DEBUG] "+format+"\n", args...)
	}
}

// Section prints a section header if verbose mode is enabled.
func (l *Logger) Section(name string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.verbose {
		fmt.Fprintf(l.output, "\n=== %s ===\n", name)
	}
}

// Info prints an informational message if verbose mode is enabled.
func (l *Logger) Info(format string, args ...any) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.verbose {
		fmt.Fprintf(l.output, "[INFO] "+format+"\n", args...)
	}
}

// Warn prints a warning message.
func (l *Logger) Warn(format string, args ...any) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	fmt.Fprintf(l.output, "[WARN] "+format+"\n", args...)
}

// Emit prints a diagnostic at its level.
func (l *Logger) Emit(d Diagnostic) {
	msg := d.Kind + ": " + d.Message
	if f := d.formatFields(); f != "" {
		msg += " " + f
	}
	switch d.Level {
	case LevelWarn:
		l.Warn("%s", msg)
	case LevelInfo:
		l.Info("%s", msg)
	default:
		l.Debug("%s", msg)
	}
}

func (d Diagnostic) formatFields() string {
	if len(d.Fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(d.Fields))
	for k := range d.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%q", k, d.Fields[k])
	}
	return strings.Join(parts, " ")
}
