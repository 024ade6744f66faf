package vectorindex

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"strconv"

	chromem "github.com/philippgille/chromem-go"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// Ensure Builder implements the interface.
var _ driven.VectorIndexBuilder = (*Builder)(nil)

// Builder creates chromem-backed indexes.
type Builder struct {
	concurrency int
}

// NewBuilder creates a builder that inserts with one goroutine per CPU.
func NewBuilder() *Builder {
	return &Builder{concurrency: runtime.NumCPU()}
}

// Build indexes chunks. Ids must equal slice positions and every embedding
// must have the same, non-zero length. info.Count and info.Dimensionality
// are overwritten; for an empty index the given dimensionality is kept.
func (b *Builder) Build(ctx context.Context, chunks []domain.IndexedChunk, info domain.IndexInfo) (driven.VectorIndex, error) {
	return b.build(ctx, chunks, info)
}

func (b *Builder) build(ctx context.Context, chunks []domain.IndexedChunk, info domain.IndexInfo) (*Index, error) {
	if len(chunks) > 0 {
		info.Dimensionality = len(chunks[0].Embedding)
		if info.Dimensionality == 0 {
			return nil, fmt.Errorf("%w: chunk 0 has an empty embedding", domain.ErrIndexBuild)
		}
	}
	info.Count = len(chunks)

	stored := make([]domain.IndexedChunk, len(chunks))
	docs := make([]chromem.Document, len(chunks))
	for i, c := range chunks {
		if c.ID != i {
			return nil, fmt.Errorf("%w: chunk at position %d has id %d", domain.ErrIndexBuild, i, c.ID)
		}
		if len(c.Embedding) != info.Dimensionality {
			return nil, fmt.Errorf("%w: chunk %d has %d dimensions, expected %d",
				domain.ErrIndexBuild, i, len(c.Embedding), info.Dimensionality)
		}
		emb, err := normalize(c.Embedding)
		if err != nil {
			return nil, fmt.Errorf("%w: chunk %d: %v", domain.ErrIndexBuild, i, err)
		}

		chunk := c.Chunk.Clone()
		stored[i] = domain.IndexedChunk{ID: i, Chunk: chunk, Embedding: emb}
		docs[i] = chromem.Document{
			ID:        strconv.Itoa(i),
			Metadata:  chunk.Metadata,
			Embedding: emb,
			Content:   chunk.Content,
		}
	}

	db := chromem.NewDB()
	coll, err := db.CreateCollection(ChunksCollection, nil, noTextEmbedding)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexBuild, err)
	}
	if len(docs) > 0 {
		if err := coll.AddDocuments(ctx, docs, max(1, b.concurrency)); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrIndexBuild, err)
		}
	}

	infoJSON, err := json.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("%w: encode index info: %v", domain.ErrIndexBuild, err)
	}
	infoColl, err := db.CreateCollection(InfoCollection, nil, noTextEmbedding)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexBuild, err)
	}
	infoDoc := chromem.Document{ID: infoDocID, Content: string(infoJSON), Embedding: []float32{1}}
	if err := infoColl.AddDocument(ctx, infoDoc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexBuild, err)
	}

	return &Index{db: db, coll: coll, info: info, chunks: stored}, nil
}
