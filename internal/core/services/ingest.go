package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
	"github.com/custodia-labs/docrag/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService chunks a corpus, indexes it and saves the index.
type IngestService struct {
	chunker driving.ChunkService
	indexer driving.IndexService
	store   driven.IndexStore
	log     *logger.Logger
}

// NewIngestService creates an ingest service. A nil log discards output.
func NewIngestService(
	chunker driving.ChunkService, indexer driving.IndexService, store driven.IndexStore, log *logger.Logger,
) *IngestService {
	if log == nil {
		log = logger.Nop()
	}
	return &IngestService{chunker: chunker, indexer: indexer, store: store, log: log}
}

// Ingest builds the corpus index and writes it to indexPath. Nothing is
// written unless every stage succeeds.
func (s *IngestService) Ingest(ctx context.Context, req driving.ChunkRequest, indexPath string) (domain.IndexInfo, error) {
	if indexPath == "" {
		return domain.IndexInfo{}, fmt.Errorf("%w: index path is required", domain.ErrInvalidInput)
	}

	s.log.Section("Chunking")
	s.log.Debug("%d documents", len(req.Paths))
	chunks, err := s.chunker.BuildChunks(ctx, req)
	if err != nil {
		return domain.IndexInfo{}, err
	}
	s.log.Info("%d chunks from %d documents", len(chunks), len(req.Paths))

	s.log.Section("Indexing")
	idx, err := s.indexer.BuildIndex(ctx, chunks)
	if err != nil {
		return domain.IndexInfo{}, err
	}

	if err := s.store.Save(ctx, indexPath, idx); err != nil {
		return domain.IndexInfo{}, fmt.Errorf("saving: %w", err)
	}
	info := idx.Info()
	s.log.Info("index %s saved to %s (%d chunks, %d dimensions)", info.BuildID, indexPath, info.Count, info.Dimensionality)
	return info, nil
}
