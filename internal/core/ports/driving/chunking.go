package driving

import (
	"context"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// ChunkRequest names the documents of one corpus build.
type ChunkRequest struct {
	// Paths are document paths in output order.
	Paths []string

	// PathToFilename maps a path to its human-readable filename.
	// Unmapped paths are attributed to domain.UnknownFilename.
	PathToFilename map[string]string
}

// ChunkService turns a corpus of documents into an ordered chunk batch.
type ChunkService interface {
	// BuildChunks parses, splits, attributes and sanitizes every document.
	// Output follows input path order, then splitter order within a document.
	BuildChunks(ctx context.Context, req ChunkRequest) ([]domain.Chunk, error)
}
