package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// RetrievalService ranks indexed chunks against a query.
type RetrievalService struct {
	embedder driven.EmbeddingService
}

// NewRetrievalService creates a retrieval service. The embedder must be the
// one the index was built with.
func NewRetrievalService(embedder driven.EmbeddingService) *RetrievalService {
	return &RetrievalService{embedder: embedder}
}

// Retrieve embeds query and ranks chunks with the configured strategy.
// cfg.K of zero means topK. At most topK results are returned.
func (s *RetrievalService) Retrieve(
	ctx context.Context, query string, idx driven.VectorIndex, cfg domain.RetrieverConfig, topK int,
) (domain.RetrievalResult, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("retrieval: %w: top_k must be positive, got %d", domain.ErrInvalidConfig, topK)
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("retrieval: %w", err)
	}
	if s.embedder == nil {
		return nil, fmt.Errorf("retrieval: %w: no embedding service", domain.ErrRetrieval)
	}
	if idx == nil {
		return nil, fmt.Errorf("retrieval: %w: %w", domain.ErrRetrieval, domain.ErrIndexUnavailable)
	}
	if idx.Count() == 0 {
		return domain.RetrievalResult{}, nil
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("retrieval: %w: embed query: %w", domain.ErrRetrieval, err)
	}

	k := cfg.K
	if k == 0 {
		k = topK
	}

	var ranked []scored
	switch cfg.SearchType {
	case domain.SearchTypeMMR:
		hits, err := idx.Search(ctx, vec, cfg.FetchK)
		if err != nil {
			return nil, fmt.Errorf("retrieval: %w: %w", domain.ErrRetrieval, err)
		}
		ranked = maxMarginalRelevance(hits, k, cfg.Lambda())

	case domain.SearchTypeScoreThreshold:
		hits, err := idx.Search(ctx, vec, k)
		if err != nil {
			return nil, fmt.Errorf("retrieval: %w: %w", domain.ErrRetrieval, err)
		}
		for _, h := range hits {
			if h.Similarity >= cfg.ScoreThreshold {
				ranked = append(ranked, scored{id: h.ID, score: h.Similarity})
			}
		}

	default:
		hits, err := idx.Search(ctx, vec, k)
		if err != nil {
			return nil, fmt.Errorf("retrieval: %w: %w", domain.ErrRetrieval, err)
		}
		for _, h := range hits {
			ranked = append(ranked, scored{id: h.ID, score: h.Similarity})
		}
	}

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	result := make(domain.RetrievalResult, 0, len(ranked))
	for _, r := range ranked {
		c, ok := idx.Chunk(r.id)
		if !ok {
			return nil, fmt.Errorf("retrieval: %w: index returned unknown id %d", domain.ErrRetrieval, r.id)
		}
		result = append(result, domain.ScoredChunk{ID: r.id, Chunk: c.Chunk, Score: r.score})
	}
	return result, nil
}

type scored struct {
	id    int
	score float64
}

// maxMarginalRelevance picks up to k hits, each maximising
// lambda*sim(query) - (1-lambda)*max sim(selected). Hits must be unit
// vectors ranked by similarity. Redundancy is clamped at zero so the
// reported scores never increase. Ties go to the more similar hit, then
// the lower id.
func maxMarginalRelevance(hits []driven.VectorHit, k int, lambda float64) []scored {
	k = min(k, len(hits))
	redundancy := make([]float64, len(hits))
	taken := make([]bool, len(hits))
	out := make([]scored, 0, k)

	for len(out) < k {
		best := -1
		var bestScore float64
		for i, h := range hits {
			if taken[i] {
				continue
			}
			score := lambda*h.Similarity - (1-lambda)*redundancy[i]
			if best < 0 || score > bestScore || (score == bestScore && preferHit(h, hits[best])) {
				best, bestScore = i, score
			}
		}

		taken[best] = true
		out = append(out, scored{id: hits[best].ID, score: bestScore})
		for i, h := range hits {
			if !taken[i] {
				redundancy[i] = max(redundancy[i], cosine(h.Embedding, hits[best].Embedding))
			}
		}
	}
	return out
}

func preferHit(a, b driven.VectorHit) bool {
	if a.Similarity != b.Similarity {
		return a.Similarity > b.Similarity
	}
	return a.ID < b.ID
}

// cosine of two unit vectors.
func cosine(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}
