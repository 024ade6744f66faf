// Package hash provides a deterministic, offline embedding service based on
// feature hashing. It needs no network and no model, which makes it useful
// for tests, demos and air-gapped builds. Vectors reflect shared vocabulary
// only, not meaning.
package hash

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultDimensions = 256
	ModelName         = "hash-xxh64"
)

// EmbeddingService hashes words and word bigrams into a fixed-size vector.
type EmbeddingService struct {
	dimensions int
}

// NewEmbeddingService creates a hashing embedder. Zero dimensions selects the default.
func NewEmbeddingService(dimensions int) (*EmbeddingService, error) {
	if dimensions < 0 {
		return nil, fmt.Errorf("%w: hash: dimensions must not be negative", domain.ErrInvalidConfig)
	}
	if dimensions == 0 {
		dimensions = DefaultDimensions
	}
	return &EmbeddingService{dimensions: dimensions}, nil
}

// Embed returns the unit-length feature vector of text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: hash: %w", domain.ErrEmbeddingFailed, err)
	}
	return s.vector(text), nil
}

// EmbedBatch embeds each text in order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (s *EmbeddingService) vector(text string) []float32 {
	// Casers are stateful, so one per call.
	folded := cases.Fold().String(norm.NFKC.String(text))
	words := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	acc := make([]float64, s.dimensions)
	for i, w := range words {
		s.add(acc, w, 1)
		if i > 0 {
			s.add(acc, words[i-1]+" "+w, 0.5)
		}
	}

	var sum float64
	for _, f := range acc {
		sum += f * f
	}
	if sum == 0 {
		// No words, or colliding features cancelled out.
		acc[xxhash.Sum64String(folded)%uint64(s.dimensions)] = 1
		sum = 1
	}

	length := math.Sqrt(sum)
	v := make([]float32, s.dimensions)
	for i, f := range acc {
		v[i] = float32(f / length)
	}
	return v
}

// add hashes feature into a bucket; the top bit picks the sign.
func (s *EmbeddingService) add(acc []float64, feature string, weight float64) {
	h := xxhash.Sum64String(feature)
	if h>>63 == 1 {
		weight = -weight
	}
	acc[h%uint64(s.dimensions)] += weight
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName identifies the hashing scheme.
func (s *EmbeddingService) ModelName() string {
	return ModelName
}

// Ping always succeeds.
func (s *EmbeddingService) Ping(context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
