package driven

import (
	"context"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// VectorIndex is a built, read-only set of indexed chunks supporting
// similarity search. It is safe for concurrent queries.
type VectorIndex interface {
	// Info describes the build.
	Info() domain.IndexInfo

	// Count returns the number of indexed chunks.
	Count() int

	// Dimensionality returns the embedding vector length.
	Dimensionality() int

	// Chunk returns the indexed chunk with the given id.
	Chunk(id int) (domain.IndexedChunk, bool)

	// Chunks returns every indexed chunk ordered by id.
	Chunks() []domain.IndexedChunk

	// Search returns up to k hits ordered by descending similarity,
	// ties broken by lowest id.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ID is the matched chunk id.
	ID int

	// Similarity is the cosine similarity score (-1 to 1).
	Similarity float64

	// Embedding is the stored vector of the matched chunk.
	Embedding []float32
}

// VectorIndexBuilder constructs a VectorIndex from embedded chunks.
type VectorIndexBuilder interface {
	// Build indexes chunks, whose ids must be dense from 0 in slice order.
	// The returned index carries info with Count and Dimensionality set.
	Build(ctx context.Context, chunks []domain.IndexedChunk, info domain.IndexInfo) (VectorIndex, error)
}

// IndexStore persists a VectorIndex as a single file.
// Save and Load are whole-file operations; Save never leaves a partial file.
type IndexStore interface {
	// Save writes idx to path, replacing any existing file.
	Save(ctx context.Context, path string, idx VectorIndex) error

	// Load reads the index at path. Errors wrap domain.ErrIndexUnavailable.
	Load(ctx context.Context, path string) (VectorIndex, error)
}
