package cli

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docrag/internal/adapters/driven/ai"
	"github.com/custodia-labs/docrag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docrag/internal/adapters/driven/storage"
	"github.com/custodia-labs/docrag/internal/adapters/driven/tokenizer"
	"github.com/custodia-labs/docrag/internal/adapters/driven/vectorindex"
	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
	"github.com/custodia-labs/docrag/internal/core/services"
	"github.com/custodia-labs/docrag/internal/logger"
	"github.com/custodia-labs/docrag/internal/normalisers"
	"github.com/custodia-labs/docrag/internal/postprocessors"
	"github.com/custodia-labs/docrag/internal/sanitizer"
)

// progressHooks receive per-stage progress from a corpus build.
type progressHooks struct {
	Parse func(done, total int)
	Embed func(done, total int)

	// Diagnostics, when set, receives every pipeline diagnostic alongside
	// the command logger.
	Diagnostics logger.Sink
}

func (h progressHooks) sink() logger.Sink {
	return logger.Tee(currentLog(), h.Diagnostics)
}

// closeFunc releases whatever a constructor opened.
type closeFunc func() error

// Service constructors. Tests swap these for mocks.
var (
	newChunkService  = defaultChunkService
	newIngestService = defaultIngestService
	newQueryService  = defaultQueryService
	loadIndex        = defaultLoadIndex

	newConfigStore = func(path string) driven.ConfigStore { return file.NewConfigStore(path) }
	validateConfig = ai.NewConfigValidator().Validate
)

// indexSetter is implemented by query services whose index can be swapped.
type indexSetter interface {
	SetIndex(idx driven.VectorIndex)
}

// currentLog returns the command logger, or a silent one before any command ran.
func currentLog() *logger.Logger {
	if cliLog == nil {
		return logger.Nop()
	}
	return cliLog
}

// defaultChunkService wires parser, tokenizer, sanitizer and the
// postprocessor pipeline. It needs no embedding provider.
func defaultChunkService(s *domain.Settings, hooks progressHooks) (driving.ChunkService, error) {
	tok, err := tokenizer.Resolve(s.Embedding.Model, s.Embedding.Tokenizer)
	if err != nil {
		return nil, err
	}
	sink := hooks.sink()
	san, err := sanitizer.New(s.Chunking.SuspiciousPatterns, sanitizer.WithSink(sink))
	if err != nil {
		return nil, err
	}

	reg := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(reg, postprocessors.Dependencies{
		Tokenizer: tok,
		Sanitizer: san,
		Sink:      sink,
	})
	build, err := postprocessors.DefaultPipelineBuilder(reg, s.Chunking)
	if err != nil {
		return nil, err
	}

	currentLog().Debug("tokenizer: %s, parser: %s", tok.Name(), s.Corpus.Parser)
	return services.NewChunkService(normalisers.NewDefaultRegistry(s.Corpus.Parser), build, services.ChunkOptions{
		Workers:      s.Corpus.Workers,
		OnParseError: s.Corpus.OnParseError,
		Sink:         sink,
		Progress:     hooks.Parse,
	}), nil
}

// defaultIngestService wires the full build: chunking, embedding and
// persistence in the format chosen by the index path.
func defaultIngestService(s *domain.Settings, hooks progressHooks) (driving.IngestService, closeFunc, error) {
	chunker, err := newChunkService(s, hooks)
	if err != nil {
		return nil, nil, err
	}
	embedder, err := ai.CreateEmbeddingService(&s.Embedding)
	if err != nil {
		return nil, nil, err
	}

	builder := vectorindex.NewBuilder()
	indexer := services.NewIndexService(embedder, builder, services.IndexOptions{
		BatchSize: s.Embedding.BatchSize,
		Sink:      hooks.sink(),
		Progress:  hooks.Embed,
	})
	ingest := services.NewIngestService(chunker, indexer, storage.NewIndexStore(builder), currentLog())
	return ingest, embedder.Close, nil
}

func defaultLoadIndex(ctx context.Context, path string) (driven.VectorIndex, error) {
	return storage.NewIndexStore(vectorindex.NewBuilder()).Load(ctx, path)
}

// defaultQueryService loads the configured index and wires retrieval over
// it. The embedding provider is pinged first so long-running commands fail
// at startup rather than on the first question.
func defaultQueryService(ctx context.Context, s *domain.Settings) (driving.QueryService, closeFunc, error) {
	idx, err := loadIndex(ctx, s.Corpus.IndexPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load index %s: %w", s.Corpus.IndexPath, err)
	}
	embedder, err := ai.CreateAndValidateEmbeddingService(ctx, &s.Embedding)
	if err != nil {
		return nil, nil, err
	}
	if info := idx.Info(); info.Model != "" && info.Model != embedder.ModelName() {
		currentLog().Warn("index %s was built with %s, queries use %s", s.Corpus.IndexPath, info.Model, embedder.ModelName())
	}

	q := services.NewQueryService(services.NewRetrievalService(embedder), idx, s.Retriever)
	return q, embedder.Close, nil
}
