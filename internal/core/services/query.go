package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// QueryService answers questions against a loaded index. The index can be
// swapped while queries run.
type QueryService struct {
	retriever driving.RetrievalService
	cfg       domain.RetrieverConfig
	topK      int

	mu  sync.RWMutex
	idx driven.VectorIndex
}

// NewQueryService creates a query service over idx.
func NewQueryService(
	retriever driving.RetrievalService, idx driven.VectorIndex, settings domain.RetrieverSettings,
) *QueryService {
	topK := settings.TopK
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	return &QueryService{
		retriever: retriever,
		cfg:       settings.Config.WithDefaults(),
		topK:      topK,
		idx:       idx,
	}
}

// Ask retrieves the chunks relevant to question and assembles their context.
func (s *QueryService) Ask(ctx context.Context, question string, topK int) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}
	if topK < 0 {
		return nil, fmt.Errorf("%w: top_k must not be negative", domain.ErrInvalidInput)
	}
	if topK == 0 {
		topK = s.topK
	}

	s.mu.RLock()
	idx := s.idx
	s.mu.RUnlock()

	results, err := s.retriever.Retrieve(ctx, question, idx, s.cfg, topK)
	if err != nil {
		return nil, err
	}
	return &domain.Answer{
		Question: question,
		Context:  AssembleContext(results.Chunks()),
		Results:  results,
	}, nil
}

// IndexInfo describes the current index.
func (s *QueryService) IndexInfo() domain.IndexInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.idx == nil {
		return domain.IndexInfo{}
	}
	return s.idx.Info()
}

// SetIndex replaces the index used by later queries.
func (s *QueryService) SetIndex(idx driven.VectorIndex) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idx = idx
}
