package logger

import "sync"

// Level is a diagnostic severity.
type Level int

// Diagnostic levels.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	default:
		return "debug"
	}
}

// Diagnostic kinds emitted by the pipeline.
const (
	// KindSanitizationTriggered means the sanitizer modified chunk content.
	KindSanitizationTriggered = "sanitization_triggered"

	// KindMissingAttribution means a document path had no mapped filename.
	KindMissingAttribution = "missing_attribution"

	// KindParseFailed means a document was skipped because it failed to parse.
	KindParseFailed = "parse_failed"

	// KindIndexBuilt reports a completed index build.
	KindIndexBuilt = "index_built"
)

// Diagnostic is a structured, non-fatal pipeline event.
type Diagnostic struct {
	Level   Level
	Kind    string
	Message string
	Fields  map[string]string
}

// Sink receives diagnostics. Implementations must be safe for concurrent use.
type Sink interface {
	Emit(d Diagnostic)
}

// Discard is a Sink that drops every diagnostic.
var Discard Sink = discard{}

type discard struct{}

func (discard) Emit(Diagnostic) {}

// Tee returns a Sink that forwards to every non-nil sink in order.
func Tee(sinks ...Sink) Sink {
	out := make(multiSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

type multiSink []Sink

func (m multiSink) Emit(d Diagnostic) {
	for _, s := range m {
		s.Emit(d)
	}
}

// Recorder is a Sink that keeps every diagnostic in memory.
type Recorder struct {
	mu    sync.Mutex
	diags []Diagnostic
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Emit records d.
func (r *Recorder) Emit(d Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diags = append(r.diags, d)
}

// Diagnostics returns a copy of everything recorded, in emission order.
func (r *Recorder) Diagnostics() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Diagnostic, len(r.diags))
	copy(out, r.diags)
	return out
}

// OfKind returns the recorded diagnostics of one kind.
func (r *Recorder) OfKind(kind string) []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Diagnostic
	for _, d := range r.diags {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// Len returns the number of recorded diagnostics.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.diags)
}

// Reset drops everything recorded.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diags = nil
}
