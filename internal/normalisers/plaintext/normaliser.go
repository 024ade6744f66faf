// Package plaintext parses text files. Form feeds separate pages, which
// matches the output of pdftotext and similar extractors.
package plaintext

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.DocumentParser = (*Normaliser)(nil)

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Name returns the parser name.
func (n *Normaliser) Name() string {
	return "plaintext"
}

// Extensions returns the file extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{".txt", ".text"}
}

// Parse reads the text file at path.
func (n *Normaliser) Parse(ctx context.Context, path string) (*domain.Document, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", domain.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrParseFailed, path, err)
	}
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("%w: %s: not valid UTF-8", domain.ErrParseFailed, path)
	}

	parts := strings.Split(string(raw), "\f")
	if len(parts) > 1 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}
	pages := make([]domain.Page, len(parts))
	for i, p := range parts {
		pages[i] = domain.Page{Number: i + 1, Text: p}
	}

	return &domain.Document{
		Path:  path,
		Pages: pages,
		Metadata: map[string]string{
			domain.MetaTotalPages: strconv.Itoa(len(pages)),
			"title":               extractTitle(path),
		},
	}, nil
}

// extractTitle extracts a human-readable title from a path.
func extractTitle(path string) string {
	filename := filepath.Base(path)
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}
