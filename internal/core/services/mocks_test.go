package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// --- Mock implementations ---

// wordTokenizer counts whitespace-separated words.
type wordTokenizer struct{}

func (wordTokenizer) Name() string                { return "words" }
func (wordTokenizer) CountTokens(text string) int { return len(strings.Fields(text)) }

// mockParser implements driven.DocumentParser from in-memory pages.
type mockParser struct {
	mu     sync.Mutex
	docs   map[string][]string
	errs   map[string]error
	delays map[string]time.Duration
	calls  []string
}

func (m *mockParser) Name() string { return "mock" }

func (m *mockParser) Parse(ctx context.Context, path string) (*domain.Document, error) {
	m.mu.Lock()
	m.calls = append(m.calls, path)
	m.mu.Unlock()

	if d := m.delays[path]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := m.errs[path]; err != nil {
		return nil, err
	}
	pages, ok := m.docs[path]
	if !ok {
		return nil, errors.New("no such document")
	}
	doc := &domain.Document{Path: path, Metadata: map[string]string{}}
	for i, text := range pages {
		doc.Pages = append(doc.Pages, domain.Page{Number: i + 1, Text: text})
	}
	return doc, nil
}

// mockEmbedder implements driven.EmbeddingService. Texts listed in vectors
// get that vector; anything else gets a bag-of-letters vector.
type mockEmbedder struct {
	mu      sync.Mutex
	dims    int
	vectors map[string][]float32
	failOn  map[string]bool
	batches [][]string
	short   bool // return one vector too few
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batches = append(m.batches, append([]string(nil), texts...))
	m.mu.Unlock()

	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		if m.failOn[t] {
			return nil, errors.New("embedding backend exploded")
		}
		if v, ok := m.vectors[t]; ok {
			out = append(out, v)
			continue
		}
		out = append(out, bagOfLetters(t, m.dims))
	}
	if m.short && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int              { return m.dims }
func (m *mockEmbedder) ModelName() string            { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// bagOfLetters counts letters into dims buckets, plus a constant so the
// vector is never zero.
func bagOfLetters(text string, dims int) []float32 {
	v := make([]float32, dims)
	v[0] = 1
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			v[int(r-'a')%dims]++
		}
	}
	return v
}

// mockIndex implements driven.VectorIndex with fixed hits.
type mockIndex struct {
	chunks    []domain.IndexedChunk
	hits      []driven.VectorHit
	searchErr error
}

func (m *mockIndex) Info() domain.IndexInfo { return domain.IndexInfo{Count: len(m.chunks)} }
func (m *mockIndex) Count() int             { return len(m.chunks) }
func (m *mockIndex) Dimensionality() int    { return 2 }
func (m *mockIndex) Chunk(id int) (domain.IndexedChunk, bool) {
	if id < 0 || id >= len(m.chunks) {
		return domain.IndexedChunk{}, false
	}
	return m.chunks[id], true
}
func (m *mockIndex) Chunks() []domain.IndexedChunk { return m.chunks }
func (m *mockIndex) Search(_ context.Context, _ []float32, k int) ([]driven.VectorHit, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:k], nil
}

// unit returns v scaled to unit length.
func unit(v ...float32) []float32 {
	var s float64
	for _, f := range v {
		s += float64(f) * float64(f)
	}
	n := math.Sqrt(s)
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(float64(f) / n)
	}
	return out
}
