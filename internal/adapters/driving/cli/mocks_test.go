package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
	"github.com/custodia-labs/docrag/internal/logger"
)

// MockChunkService implements driving.ChunkService for CLI tests.
type MockChunkService struct {
	Chunks []domain.Chunk
	Err    error
	Req    driving.ChunkRequest
}

func (m *MockChunkService) BuildChunks(_ context.Context, req driving.ChunkRequest) ([]domain.Chunk, error) {
	m.Req = req
	return m.Chunks, m.Err
}

// MockIngestService implements driving.IngestService for CLI tests.
type MockIngestService struct {
	Info  domain.IndexInfo
	Err   error
	Calls int
	Req   driving.ChunkRequest
	Path  string
}

func (m *MockIngestService) Ingest(_ context.Context, req driving.ChunkRequest, indexPath string) (domain.IndexInfo, error) {
	m.Calls++
	m.Req = req
	m.Path = indexPath
	return m.Info, m.Err
}

// MockQueryService implements driving.QueryService and can swap its index.
type MockQueryService struct {
	AskFunc  func(ctx context.Context, question string, topK int) (*domain.Answer, error)
	Info     domain.IndexInfo
	Question string
	TopK     int
	Swapped  []driven.VectorIndex
}

func (m *MockQueryService) Ask(ctx context.Context, question string, topK int) (*domain.Answer, error) {
	m.Question = question
	m.TopK = topK
	if m.AskFunc != nil {
		return m.AskFunc(ctx, question, topK)
	}
	return &domain.Answer{Question: question}, nil
}

func (m *MockQueryService) IndexInfo() domain.IndexInfo { return m.Info }

func (m *MockQueryService) SetIndex(idx driven.VectorIndex) {
	m.Swapped = append(m.Swapped, idx)
	m.Info = idx.Info()
}

// MockIndex implements driven.VectorIndex with build info only.
type MockIndex struct {
	info domain.IndexInfo
}

func (m *MockIndex) Info() domain.IndexInfo                { return m.info }
func (m *MockIndex) Count() int                            { return m.info.Count }
func (m *MockIndex) Dimensionality() int                   { return m.info.Dimensionality }
func (m *MockIndex) Chunk(int) (domain.IndexedChunk, bool) { return domain.IndexedChunk{}, false }
func (m *MockIndex) Chunks() []domain.IndexedChunk         { return nil }
func (m *MockIndex) Search(context.Context, []float32, int) ([]driven.VectorHit, error) {
	return nil, nil
}

// setupTestCLI injects default settings and restores package state after the test.
func setupTestCLI(t *testing.T) (*bytes.Buffer, *domain.Settings) {
	t.Helper()

	s := domain.DefaultSettings()
	settings = &s
	cliLog = logger.Nop()

	origChunk, origIngest, origQuery, origLoad := newChunkService, newIngestService, newQueryService, loadIndex
	origRun := runApp

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)

	t.Cleanup(func() {
		settings = nil
		cliLog = nil
		newChunkService, newIngestService, newQueryService, loadIndex = origChunk, origIngest, origQuery, origLoad
		runApp = origRun
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		resetFlags(rootCmd)
		resetContexts(rootCmd)
	})
	return buf, &s
}

// resetFlags puts every flag back to its default. Cobra keeps flag values
// between Execute calls in one process.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// resetContexts drops contexts left by ExecuteContext. Cobra only hands a
// command the root context when its own is nil.
func resetContexts(cmd *cobra.Command) {
	cmd.SetContext(nil) //nolint:staticcheck // nil lets the next run propagate its context
	for _, c := range cmd.Commands() {
		resetContexts(c)
	}
}

// execute runs the root command with args.
func execute(args ...string) error {
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func noClose() error { return nil }

func stubQuery(q *MockQueryService) {
	newQueryService = func(context.Context, *domain.Settings) (driving.QueryService, closeFunc, error) {
		return q, noClose, nil
	}
}

var testAnswer = &domain.Answer{
	Question: "what was revenue",
	Context:  "Source: report\nRevenue grew 12%.",
	Results: domain.RetrievalResult{
		{ID: 3, Score: 0.91, Chunk: domain.Chunk{
			Content:  "Revenue grew 12%.",
			Metadata: map[string]string{domain.MetaOriginalFilename: "report.pdf", domain.MetaPage: "2"},
		}},
	},
}
