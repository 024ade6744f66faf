package pdf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error
	name   string
	args   []string
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.name = name
	m.args = args
	return m.output, m.err
}

func writeFakePDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "annual_report-2024.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 fake pdf content"), 0o600))
	return path
}

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.IsType(t, &Normaliser{}, normaliser)
	assert.Equal(t, "pdftotext", normaliser.Name())
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.DocumentParser = (*Normaliser)(nil)
	var _ driven.DocumentParser = (*Native)(nil)
}

func TestParse_EmptyPath(t *testing.T) {
	_, err := NewWithRunner(&mockRunner{}).Parse(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParse_MissingFile(t *testing.T) {
	_, err := NewWithRunner(&mockRunner{}).Parse(context.Background(), "/does/not/exist.pdf")
	assert.ErrorIs(t, err, domain.ErrParseFailed)
}

// TestParse_WithMockRunner tests page splitting of pdftotext output.
func TestParse_WithMockRunner(t *testing.T) {
	path := writeFakePDF(t)
	runner := &mockRunner{
		output: []byte("PDF Title\n\nFirst page body.\n\fSecond page.\n\f"),
	}

	doc, err := NewWithRunner(runner).Parse(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "pdftotext", runner.name)
	assert.Equal(t, []string{"-enc", "UTF-8", path, "-"}, runner.args)

	assert.Equal(t, path, doc.Path)
	require.Len(t, doc.Pages, 2)
	assert.Equal(t, 1, doc.Pages[0].Number)
	assert.Contains(t, doc.Pages[0].Text, "First page body.")
	assert.Equal(t, 2, doc.Pages[1].Number)
	assert.Equal(t, "Second page.\n", doc.Pages[1].Text)
	assert.Equal(t, "2", doc.Metadata[domain.MetaTotalPages])
	assert.Equal(t, "PDF Title", doc.Metadata[MetaTitle])
	assert.Equal(t, "pdftotext", doc.Metadata[MetaParser])
}

// TestParse_RunnerError tests error handling when pdftotext fails.
func TestParse_RunnerError(t *testing.T) {
	path := writeFakePDF(t)
	runner := &mockRunner{err: errors.New("pdftotext crashed")}

	doc, err := NewWithRunner(runner).Parse(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrParseFailed)
	assert.Contains(t, err.Error(), "pdftotext failed")
	assert.Nil(t, doc)
}

func TestParse_Cancelled(t *testing.T) {
	path := writeFakePDF(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewWithRunner(&mockRunner{err: errors.New("killed")}).Parse(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSplitPages(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty output", "", nil},
		{"single page without feed", "only page", []string{"only page"}},
		{"trailing feed dropped", "one\ftwo\f", []string{"one", "two"}},
		{"blank middle page kept", "one\f\fthree\f", []string{"one", "", "three"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pages := splitPages(tc.input)
			require.Len(t, pages, len(tc.want))
			for i, p := range pages {
				assert.Equal(t, i+1, p.Number)
				assert.Equal(t, tc.want[i], p.Text)
			}
		})
	}
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		path     string
		expected string
	}{
		{
			name:     "first line as title",
			content:  "Document Title\n\nSome content here.",
			path:     "/doc.pdf",
			expected: "Document Title",
		},
		{
			name:     "skip empty lines",
			content:  "\n\n\nActual Title\nContent",
			path:     "/doc.pdf",
			expected: "Actual Title",
		},
		{
			name:     "fallback to filename",
			content:  "",
			path:     "/path/to/my_document.pdf",
			expected: "my document",
		},
		{
			name:     "skip very long first line",
			content:  string(make([]byte, 250)) + "\nShort Title\nContent",
			path:     "/doc.pdf",
			expected: "Short Title",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, extractTitle(tc.content, tc.path))
		})
	}
}

func TestInstallInstructions(t *testing.T) {
	instructions := InstallInstructions()
	assert.Contains(t, instructions, "pdftotext")
	assert.Contains(t, instructions, "brew install poppler")
	assert.Contains(t, instructions, "apt install poppler-utils")
}

func TestErrPDFToolNotFound(t *testing.T) {
	assert.Error(t, ErrPDFToolNotFound)
	assert.Contains(t, ErrPDFToolNotFound.Error(), "pdftotext")
}

// TestNewWithRunner verifies the mock runner injection works.
func TestNewWithRunner(t *testing.T) {
	runner := &mockRunner{output: []byte("test output")}
	normaliser := NewWithRunner(runner)
	require.NotNil(t, normaliser)
	assert.Equal(t, runner, normaliser.runner)
	assert.False(t, normaliser.lookupBin)
}

// Integration test - only runs if pdftotext is available.
func TestParse_Integration(t *testing.T) {
	if err := CheckAvailable(); err != nil {
		t.Skip("pdftotext not available, skipping integration test")
	}

	_, err := New().Parse(context.Background(), writeFakePDF(t))
	assert.ErrorIs(t, err, domain.ErrParseFailed, "a fake PDF must fail to parse")
}
