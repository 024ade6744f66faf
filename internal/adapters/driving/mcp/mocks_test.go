package mcp

import (
	"context"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	answer *domain.Answer
	info   domain.IndexInfo
	err    error

	question string
	topK     int
}

func (m *mockQueryService) Ask(_ context.Context, question string, topK int) (*domain.Answer, error) {
	m.question = question
	m.topK = topK
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}

func (m *mockQueryService) IndexInfo() domain.IndexInfo {
	return m.info
}
