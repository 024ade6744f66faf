package driven

import (
	"context"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// DocumentParser extracts ordered page texts from a document file.
type DocumentParser interface {
	// Name returns the parser name for diagnostics.
	Name() string

	// Parse reads the file at path. Errors wrap domain.ErrParseFailed.
	Parse(ctx context.Context, path string) (*domain.Document, error)
}

// CommandRunner executes external commands.
// Parsers that shell out accept one so tests can substitute the process.
type CommandRunner interface {
	// Run executes name with args and returns its standard output.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}
