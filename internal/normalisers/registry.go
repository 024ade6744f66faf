package normalisers

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/normalisers/markdown"
	"github.com/custodia-labs/docrag/internal/normalisers/pdf"
	"github.com/custodia-labs/docrag/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.DocumentParser = (*Registry)(nil)

// Registry selects a parser by file extension.
// It is safe for concurrent use once registration is done.
type Registry struct {
	parsers  map[string]driven.DocumentParser
	fallback driven.DocumentParser
}

// NewRegistry creates a registry. Files with an unregistered extension
// go to fallback, or fail when fallback is nil.
func NewRegistry(fallback driven.DocumentParser) *Registry {
	return &Registry{
		parsers:  make(map[string]driven.DocumentParser),
		fallback: fallback,
	}
}

// NewDefaultRegistry registers every built-in parser. kind picks the PDF backend.
func NewDefaultRegistry(kind domain.ParserKind) *Registry {
	var pdfParser driven.DocumentParser
	if kind == domain.ParserNative {
		pdfParser = pdf.NewNative()
	} else {
		pdfParser = pdf.New()
	}

	r := NewRegistry(pdfParser)
	r.Register(".pdf", pdfParser)

	md := markdown.New()
	for _, ext := range md.Extensions() {
		r.Register(ext, md)
	}
	txt := plaintext.New()
	for _, ext := range txt.Extensions() {
		r.Register(ext, txt)
	}
	return r
}

// Register maps an extension (with leading dot, any case) to a parser.
func (r *Registry) Register(ext string, parser driven.DocumentParser) {
	r.parsers[strings.ToLower(ext)] = parser
}

// Extensions returns the registered extensions, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.parsers))
	for ext := range r.parsers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ParserFor returns the parser that handles path.
func (r *Registry) ParserFor(path string) (driven.DocumentParser, bool) {
	if p, ok := r.parsers[strings.ToLower(filepath.Ext(path))]; ok {
		return p, true
	}
	if r.fallback != nil {
		return r.fallback, true
	}
	return nil, false
}

// Name returns the parser name.
func (r *Registry) Name() string {
	return "auto"
}

// Parse dispatches path to the matching parser.
func (r *Registry) Parse(ctx context.Context, path string) (*domain.Document, error) {
	p, ok := r.ParserFor(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s: unsupported file type %q", domain.ErrParseFailed, path, filepath.Ext(path))
	}
	return p.Parse(ctx, path)
}
