// Package sanitize runs chunk content through the sanitizer.
package sanitize

import (
	"context"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/sanitizer"
)

// ProcessorName is the registry name of the sanitization stage.
const ProcessorName = "sanitizer"

// Processor sanitizes the content of every chunk.
// It implements the PostProcessor interface.
type Processor struct {
	sanitizer *sanitizer.Sanitizer
}

// New wraps a compiled sanitizer as a pipeline stage.
func New(s *sanitizer.Sanitizer) *Processor {
	return &Processor{sanitizer: s}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return ProcessorName
}

// Process returns sanitized copies of chunks. Metadata is carried over
// unchanged. Chunks left empty by sanitization are dropped.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	out := make([]domain.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fields := map[string]string{domain.MetaSource: doc.Path}
		if page, ok := c.Metadata[domain.MetaPage]; ok {
			fields[domain.MetaPage] = page
		}

		content, _ := p.sanitizer.SanitizeWith(c.Content, fields)
		if content == "" {
			continue
		}
		out = append(out, domain.Chunk{Content: content, Metadata: domain.CopyMetadata(c.Metadata)})
	}
	return out, nil
}
