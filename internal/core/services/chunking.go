package services

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
	"github.com/custodia-labs/docrag/internal/logger"
)

// Ensure ChunkService implements the interface.
var _ driving.ChunkService = (*ChunkService)(nil)

// PipelineBuilder builds the per-document pipeline for one filename map.
type PipelineBuilder func(filenames map[string]string) (driven.PostProcessorPipeline, error)

// ChunkOptions tune a ChunkService.
type ChunkOptions struct {
	// Workers bounds concurrent documents (default: runtime.NumCPU()).
	Workers int

	// OnParseError decides whether a parse failure skips the document or
	// aborts the batch (default: skip).
	OnParseError domain.ParseFailurePolicy

	// Sink receives parse_failed diagnostics.
	Sink logger.Sink

	// Progress is called after each document with the number finished.
	Progress func(done, total int)
}

// ChunkService turns document paths into an ordered chunk batch.
type ChunkService struct {
	parser   driven.DocumentParser
	pipeline PipelineBuilder
	opts     ChunkOptions
}

// NewChunkService creates a chunk service.
func NewChunkService(parser driven.DocumentParser, pipeline PipelineBuilder, opts ChunkOptions) *ChunkService {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.OnParseError == "" {
		opts.OnParseError = domain.ParseFailureSkip
	}
	if opts.Sink == nil {
		opts.Sink = logger.Discard
	}
	return &ChunkService{parser: parser, pipeline: pipeline, opts: opts}
}

// BuildChunks parses, splits, attributes and sanitizes every document.
// Documents run concurrently; each writes to its own slot so the output
// follows input path order.
func (s *ChunkService) BuildChunks(ctx context.Context, req driving.ChunkRequest) ([]domain.Chunk, error) {
	if s.parser == nil || s.pipeline == nil {
		return nil, fmt.Errorf("chunking: %w: parser and pipeline are required", domain.ErrInvalidConfig)
	}
	if !s.opts.OnParseError.IsValid() {
		return nil, fmt.Errorf("chunking: %w: unknown parse failure policy %q", domain.ErrInvalidConfig, s.opts.OnParseError)
	}
	if len(req.Paths) == 0 {
		return nil, nil
	}

	pipeline, err := s.pipeline(req.PathToFilename)
	if err != nil {
		return nil, fmt.Errorf("chunking: %w", err)
	}

	slots := make([][]domain.Chunk, len(req.Paths))
	progress := newCounter(len(req.Paths), s.opts.Progress)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, path := range req.Paths {
		g.Go(func() error {
			chunks, err := s.processDocument(gctx, pipeline, path)
			if err != nil {
				return err
			}
			slots[i] = chunks
			progress.add()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("chunking: %w", err)
	}

	total := 0
	for _, chunks := range slots {
		total += len(chunks)
	}
	out := make([]domain.Chunk, 0, total)
	for _, chunks := range slots {
		out = append(out, chunks...)
	}
	return out, nil
}

// processDocument runs one document. Under the skip policy a parse failure
// yields no chunks and a diagnostic.
func (s *ChunkService) processDocument(
	ctx context.Context, pipeline driven.PostProcessorPipeline, path string,
) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := s.parser.Parse(ctx, path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if s.opts.OnParseError == domain.ParseFailureAbort {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		s.opts.Sink.Emit(logger.Diagnostic{
			Level:   logger.LevelWarn,
			Kind:    logger.KindParseFailed,
			Message: "document skipped",
			Fields:  map[string]string{"path": path, "error": err.Error()},
		})
		return nil, nil
	}
	if doc.Path == "" {
		doc.Path = path
	}

	chunks, err := pipeline.Process(ctx, doc)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("process %s: %w", path, err)
	}
	return chunks, nil
}

// counter reports progress from concurrent workers.
type counter struct {
	mu    sync.Mutex
	n     int
	total int
	fn    func(done, total int)
}

func newCounter(total int, fn func(done, total int)) *counter {
	return &counter{total: total, fn: fn}
}

func (c *counter) add() {
	if c.fn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	c.fn(c.n, c.total)
}
