package driven

import (
	"context"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// PostProcessor is one stage of the per-document chunk pipeline.
// PostProcessors are chained (splitting, attribution, sanitization).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a document and returns chunks.
	// If the processor modifies chunks (e.g., sanitizer), it receives and returns chunks.
	// If the processor creates chunks (e.g., splitter), it receives nil and returns new chunks.
	// Implementations must not mutate the chunks they receive.
	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the document through all processors in order.
	// Returns the final chunks after all processing.
	Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}
