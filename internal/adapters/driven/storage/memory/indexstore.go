package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

// IndexStore keeps saved indexes in a map keyed by path.
type IndexStore struct {
	mu      sync.RWMutex
	indexes map[string]driven.VectorIndex
}

// NewIndexStore creates an empty in-memory index store.
func NewIndexStore() *IndexStore {
	return &IndexStore{indexes: make(map[string]driven.VectorIndex)}
}

// Save stores idx under path.
func (s *IndexStore) Save(ctx context.Context, path string, idx driven.VectorIndex) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if idx == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexes[path] = idx
	return nil
}

// Load returns the index stored under path.
func (s *IndexStore) Load(ctx context.Context, path string) (driven.VectorIndex, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.indexes[path]
	if !ok {
		return nil, fmt.Errorf("%w: no index at %s", domain.ErrIndexUnavailable, path)
	}
	return idx, nil
}

// Len returns the number of stored indexes.
func (s *IndexStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.indexes)
}
