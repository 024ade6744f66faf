package driving

import (
	"context"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// RetrievalService ranks indexed chunks against a query.
type RetrievalService interface {
	// Retrieve returns at most topK chunks ranked by the configured strategy.
	// Errors wrap domain.ErrRetrieval; no partial result is returned.
	Retrieve(ctx context.Context, query string, idx driven.VectorIndex,
		cfg domain.RetrieverConfig, topK int) (domain.RetrievalResult, error)
}

// QueryService answers questions against the loaded corpus index.
type QueryService interface {
	// Ask retrieves chunks for question and assembles their context.
	// A topK of zero uses the configured default.
	Ask(ctx context.Context, question string, topK int) (*domain.Answer, error)

	// IndexInfo describes the index queries run against.
	IndexInfo() domain.IndexInfo
}
