package driving

import (
	"context"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// IndexService builds vector indexes from chunk batches.
type IndexService interface {
	// BuildIndex embeds chunks and indexes them with ids 0..n-1 in input order.
	// Any failure fails the whole build; no partial index is returned.
	BuildIndex(ctx context.Context, chunks []domain.Chunk) (driven.VectorIndex, error)
}

// IngestService runs the full corpus build and persists the result.
type IngestService interface {
	// Ingest chunks, indexes and saves the corpus to indexPath.
	Ingest(ctx context.Context, req ChunkRequest, indexPath string) (domain.IndexInfo, error)
}
