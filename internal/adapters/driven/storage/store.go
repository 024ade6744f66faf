// Package storage picks the index file format from the file extension.
package storage

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/docrag/internal/adapters/driven/storage/gobfile"
	"github.com/custodia-labs/docrag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

// IndexStore routes .db and .sqlite paths to SQLite and everything else to
// chromem gob exports.
type IndexStore struct {
	sqlite driven.IndexStore
	gob    driven.IndexStore
}

// NewIndexStore creates a routing store over both formats.
func NewIndexStore(builder driven.VectorIndexBuilder) *IndexStore {
	return &IndexStore{
		sqlite: sqlite.NewIndexStore(builder),
		gob:    gobfile.NewIndexStore(builder),
	}
}

// For returns the store that handles path.
func (s *IndexStore) For(path string) driven.IndexStore {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return s.sqlite
	default:
		return s.gob
	}
}

// Save writes idx in the format chosen by path.
func (s *IndexStore) Save(ctx context.Context, path string, idx driven.VectorIndex) error {
	return s.For(path).Save(ctx, path, idx)
}

// Load reads the index at path in the format chosen by path.
func (s *IndexStore) Load(ctx context.Context, path string) (driven.VectorIndex, error) {
	return s.For(path).Load(ctx, path)
}
