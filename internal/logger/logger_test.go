package logger

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestSetVerbose(t *testing.T) {
	l := New(&bytes.Buffer{}, false)
	if l.IsVerbose() {
		t.Error("expected verbose to be false initially")
	}

	l.SetVerbose(true)
	if !l.IsVerbose() {
		t.Error("expected verbose to be true after SetVerbose(true)")
	}

	l.SetVerbose(false)
	if l.IsVerbose() {
		t.Error("expected verbose to be false after SetVerbose(false)")
	}
}

func TestDebug_WhenVerbose(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, true)

	l.Debug("test message %s", "arg")

	if got := buf.String(); got != "[DEBUG] test message arg\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false)

	l.Debug("test message")
	l.Info("info message")
	l.Section("Section")

	if buf.Len() != 0 {
		t.Errorf("expected no output when verbose is disabled, got: %q", buf.String())
	}
}

func TestSection_WhenVerbose(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, true)

	l.Section("Chunking")

	if got := buf.String(); got != "\n=== Chunking ===\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestInfo_WhenVerbose(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, true)

	l.Info("count: %d", 42)

	if got := buf.String(); got != "[INFO] count: 42\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestWarn_AlwaysPrinted(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false)

	l.Warn("careful %s", "now")

	if got := buf.String(); got != "[WARN] careful now\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestSetOutput(t *testing.T) {
	var first, second bytes.Buffer
	l := New(&first, true)

	l.SetOutput(&second)
	l.Info("moved")

	if first.Len() != 0 {
		t.Errorf("expected first buffer empty, got %q", first.String())
	}
	if second.String() != "[INFO] moved\n" {
		t.Errorf("unexpected output: %q", second.String())
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Warn("dropped")
	l.Emit(Diagnostic{Level: LevelWarn, Kind: "k", Message: "m"})
}

func TestEmit_FormatsSortedFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false)

	l.Emit(Diagnostic{
		Level:   LevelWarn,
		Kind:    KindMissingAttribution,
		Message: "path has no filename",
		Fields:  map[string]string{"path": "/b.pdf", "fallback": "unknown"},
	})

	want := `[WARN] missing_attribution: path has no filename fallback="unknown" path="/b.pdf"` + "\n"
	if got := buf.String(); got != want {
		t.Errorf("unexpected output:\n got: %q\nwant: %q", got, want)
	}
}

func TestEmit_InfoRespectsVerbose(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false)

	l.Emit(Diagnostic{Level: LevelInfo, Kind: KindSanitizationTriggered, Message: "redacted"})
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}

	l.SetVerbose(true)
	l.Emit(Diagnostic{Level: LevelInfo, Kind: KindSanitizationTriggered, Message: "redacted"})
	if !strings.HasPrefix(buf.String(), "[INFO] sanitization_triggered") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestLevel_String(t *testing.T) {
	tests := map[Level]string{LevelDebug: "debug", LevelInfo: "info", LevelWarn: "warn"}
	for level, want := range tests {
		if got := level.String(); got != want {
			t.Errorf("Level(%d).String() = %q, want %q", level, got, want)
		}
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	r.Emit(Diagnostic{Kind: KindParseFailed})
	r.Emit(Diagnostic{Kind: KindMissingAttribution})
	r.Emit(Diagnostic{Kind: KindParseFailed})

	if r.Len() != 3 {
		t.Fatalf("expected 3 diagnostics, got %d", r.Len())
	}
	if got := len(r.OfKind(KindParseFailed)); got != 2 {
		t.Errorf("expected 2 parse_failed, got %d", got)
	}
	if got := r.Diagnostics()[1].Kind; got != KindMissingAttribution {
		t.Errorf("expected emission order preserved, got %q", got)
	}

	r.Reset()
	if r.Len() != 0 {
		t.Errorf("expected empty recorder after Reset, got %d", r.Len())
	}
}

func TestRecorder_Concurrent(t *testing.T) {
	r := NewRecorder()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Emit(Diagnostic{Kind: KindSanitizationTriggered})
		}()
	}
	wg.Wait()

	if r.Len() != 50 {
		t.Errorf("expected 50 diagnostics, got %d", r.Len())
	}
}

func TestTee(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	sink := Tee(a, nil, b)

	sink.Emit(Diagnostic{Kind: KindIndexBuilt})

	if a.Len() != 1 || b.Len() != 1 {
		t.Errorf("expected both recorders to receive the diagnostic, got %d and %d", a.Len(), b.Len())
	}
	Discard.Emit(Diagnostic{})
}
