package splitter

import (
	"context"
	"strconv"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// ProcessorName is the registry name of the splitting stage.
const ProcessorName = "splitter"

// Processor splits each page of a document into chunks.
// It implements the PostProcessor interface.
type Processor struct {
	splitter *Splitter
}

// NewProcessor wraps a splitter as a pipeline stage.
func NewProcessor(s *Splitter) *Processor {
	return &Processor{splitter: s}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return ProcessorName
}

// Process splits the document pages into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
// Each chunk carries the document metadata plus its source path and page number.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	var chunks []domain.Chunk

	for _, page := range doc.Pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for _, text := range p.splitter.Split(page.Text) {
			meta := make(map[string]string, len(doc.Metadata)+2)
			for k, v := range doc.Metadata {
				meta[k] = v
			}
			meta[domain.MetaSource] = doc.Path
			meta[domain.MetaPage] = strconv.Itoa(page.Number)

			chunks = append(chunks, domain.Chunk{Content: text, Metadata: meta})
		}
	}

	return chunks, nil
}
