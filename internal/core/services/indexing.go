package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
	"github.com/custodia-labs/docrag/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// IndexOptions tune an IndexService.
type IndexOptions struct {
	// BatchSize is the number of chunks per embedding call (default: domain.DefaultEmbeddingBatch).
	BatchSize int

	// Sink receives the index_built diagnostic.
	Sink logger.Sink

	// Progress is called after each batch with the number of chunks embedded.
	Progress func(done, total int)

	// Now stamps the build (default: time.Now).
	Now func() time.Time
}

// IndexService embeds chunk batches and builds vector indexes.
type IndexService struct {
	embedder driven.EmbeddingService
	builder  driven.VectorIndexBuilder
	opts     IndexOptions
}

// NewIndexService creates an index service.
func NewIndexService(embedder driven.EmbeddingService, builder driven.VectorIndexBuilder, opts IndexOptions) *IndexService {
	if opts.BatchSize <= 0 {
		opts.BatchSize = domain.DefaultEmbeddingBatch
	}
	if opts.Sink == nil {
		opts.Sink = logger.Discard
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &IndexService{embedder: embedder, builder: builder, opts: opts}
}

// BuildIndex assigns ids 0..n-1 in input order, embeds every chunk and
// builds the index. Batches run one after another so vectors stay in
// input order. Any failure fails the whole build.
func (s *IndexService) BuildIndex(ctx context.Context, chunks []domain.Chunk) (driven.VectorIndex, error) {
	if s.embedder == nil || s.builder == nil {
		return nil, fmt.Errorf("indexing: %w: embedder and builder are required", domain.ErrInvalidConfig)
	}

	embeddings, err := s.embed(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("indexing: %w", err)
	}

	dim := s.embedder.Dimensions()
	if len(embeddings) > 0 {
		got := len(embeddings[0])
		if dim > 0 && got != dim {
			return nil, fmt.Errorf("indexing: %w: embedding service declares %d dimensions, returned %d",
				domain.ErrIndexBuild, dim, got)
		}
		dim = got
	}

	indexed := make([]domain.IndexedChunk, len(chunks))
	for i, c := range chunks {
		if len(embeddings[i]) != dim {
			return nil, fmt.Errorf("indexing: %w: chunk %d has %d dimensions, expected %d",
				domain.ErrIndexBuild, i, len(embeddings[i]), dim)
		}
		indexed[i] = domain.IndexedChunk{ID: i, Chunk: c.Clone(), Embedding: embeddings[i]}
	}

	info := domain.IndexInfo{
		BuildID:        uuid.NewString(),
		Model:          s.embedder.ModelName(),
		Count:          len(indexed),
		Dimensionality: dim,
		CreatedAt:      s.opts.Now().UTC(),
	}
	idx, err := s.builder.Build(ctx, indexed, info)
	if err != nil {
		return nil, fmt.Errorf("indexing: %w", err)
	}

	built := idx.Info()
	s.opts.Sink.Emit(logger.Diagnostic{
		Level:   logger.LevelInfo,
		Kind:    logger.KindIndexBuilt,
		Message: "vector index built",
		Fields: map[string]string{
			"build_id":       built.BuildID,
			"model":          built.Model,
			"count":          strconv.Itoa(idx.Count()),
			"dimensionality": strconv.Itoa(idx.Dimensionality()),
		},
	})
	return idx, nil
}

// embed returns one vector per chunk, in chunk order.
func (s *IndexService) embed(ctx context.Context, chunks []domain.Chunk) ([][]float32, error) {
	out := make([][]float32, len(chunks))
	for start := 0; start < len(chunks); start += s.opts.BatchSize {
		end := min(start+s.opts.BatchSize, len(chunks))

		texts := make([]string, end-start)
		for i := range texts {
			texts[i] = chunks[start+i].Content
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("%w: chunks %d-%d: %w", domain.ErrIndexBuild, start, end-1, err)
		}
		if len(vectors) != len(texts) {
			return nil, fmt.Errorf("%w: chunks %d-%d: got %d embeddings for %d texts",
				domain.ErrIndexBuild, start, end-1, len(vectors), len(texts))
		}
		copy(out[start:end], vectors)

		if s.opts.Progress != nil {
			s.opts.Progress(end, len(chunks))
		}
	}
	return out, nil
}
