// Package gobfile persists vector indexes as gzip-compressed chromem-go
// gob exports.
package gobfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/docrag/internal/adapters/driven/vectorindex"
	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

// IndexStore saves and loads chromem exports.
type IndexStore struct {
	builder driven.VectorIndexBuilder
}

// NewIndexStore creates a store. Indexes not built by the vectorindex
// package are rebuilt with builder before export.
func NewIndexStore(builder driven.VectorIndexBuilder) *IndexStore {
	return &IndexStore{builder: builder}
}

// Save writes idx to path through a temporary file and a rename.
func (s *IndexStore) Save(ctx context.Context, path string, idx driven.VectorIndex) error {
	native, err := s.native(ctx, idx)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".index-*.gob.gz")
	if err != nil {
		return fmt.Errorf("creating temporary index file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := native.Export(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("syncing index file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing index file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing index file: %w", err)
	}
	return nil
}

func (s *IndexStore) native(ctx context.Context, idx driven.VectorIndex) (*vectorindex.Index, error) {
	if native, ok := idx.(*vectorindex.Index); ok {
		return native, nil
	}
	rebuilt, err := s.builder.Build(ctx, idx.Chunks(), idx.Info())
	if err != nil {
		return nil, fmt.Errorf("rebuilding index for export: %w", err)
	}
	native, ok := rebuilt.(*vectorindex.Index)
	if !ok {
		return nil, fmt.Errorf("%w: builder %T does not produce exportable indexes", domain.ErrInvalidConfig, s.builder)
	}
	return native, nil
}

// Load reads the export at path.
func (s *IndexStore) Load(ctx context.Context, path string) (driven.VectorIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}
	defer f.Close()

	idx, err := vectorindex.Import(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return idx, nil
}
