// Package attribution tags chunks with the human-readable name of their source document.
package attribution

import (
	"context"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/logger"
)

// ProcessorName is the registry name of the attribution stage.
const ProcessorName = "attribution"

// Processor sets original_filename on every chunk.
// It implements the PostProcessor interface.
type Processor struct {
	filenames map[string]string
	sink      logger.Sink
}

// New creates an attribution processor for one path to filename map.
func New(filenames map[string]string, sink logger.Sink) *Processor {
	if sink == nil {
		sink = logger.Discard
	}
	return &Processor{filenames: filenames, sink: sink}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return ProcessorName
}

// Process returns copies of chunks carrying the document's filename.
// An unmapped path falls back to domain.UnknownFilename with one warning
// per document.
func (p *Processor) Process(_ context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if len(chunks) == 0 {
		return chunks, nil
	}

	name, ok := p.filenames[doc.Path]
	if !ok || name == "" {
		name = domain.UnknownFilename
		p.sink.Emit(logger.Diagnostic{
			Level:   logger.LevelWarn,
			Kind:    logger.KindMissingAttribution,
			Message: "document path has no mapped filename",
			Fields:  map[string]string{"path": doc.Path, "fallback": domain.UnknownFilename},
		})
	}

	out := make([]domain.Chunk, len(chunks))
	for i, c := range chunks {
		c = c.Clone()
		if c.Metadata == nil {
			c.Metadata = make(map[string]string, 1)
		}
		c.Metadata[domain.MetaOriginalFilename] = name
		out[i] = c
	}
	return out, nil
}
