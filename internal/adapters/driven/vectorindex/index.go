// Package vectorindex implements the vector index on top of an in-memory
// chromem-go database.
//
// Two collections are used: one document per chunk, keyed by the decimal
// chunk id, and a single document holding the JSON-encoded build info.
// Embeddings are stored unit-normalised; cosine similarity is unaffected.
package vectorindex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	chromem "github.com/philippgille/chromem-go"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// Collection names inside the chromem database.
const (
	ChunksCollection = "docrag_chunks"
	InfoCollection   = "docrag_info"
)

const infoDocID = "info"

// tieTolerance is how close to the k-th score a candidate must be to count
// as tied with it, covering float32 rounding.
const tieTolerance = 1e-6

// unitTolerance matches chromem's own check, so vectors we pass in are never renormalised.
const unitTolerance = 1e-6

var errTextQuery = errors.New("vectorindex: text queries are not supported, embed the query first")

// noTextEmbedding stops chromem from falling back to its default remote embedder.
func noTextEmbedding(context.Context, string) ([]float32, error) {
	return nil, errTextQuery
}

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is a built, read-only vector index.
type Index struct {
	db     *chromem.DB
	coll   *chromem.Collection
	info   domain.IndexInfo
	chunks []domain.IndexedChunk
}

// Info describes the build.
func (x *Index) Info() domain.IndexInfo {
	return x.info
}

// Count returns the number of indexed chunks.
func (x *Index) Count() int {
	return len(x.chunks)
}

// Dimensionality returns the embedding vector length.
func (x *Index) Dimensionality() int {
	return x.info.Dimensionality
}

// Chunk returns the chunk with the given id. Its embedding is unit length
// and must not be modified.
func (x *Index) Chunk(id int) (domain.IndexedChunk, bool) {
	if id < 0 || id >= len(x.chunks) {
		return domain.IndexedChunk{}, false
	}
	c := x.chunks[id]
	c.Chunk = c.Chunk.Clone()
	return c, true
}

// Chunks returns every chunk ordered by id.
func (x *Index) Chunks() []domain.IndexedChunk {
	out := make([]domain.IndexedChunk, len(x.chunks))
	for i, c := range x.chunks {
		c.Chunk = c.Chunk.Clone()
		out[i] = c
	}
	return out
}

// Search returns up to k hits by descending cosine similarity, lowest id
// first among equal scores.
func (x *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}
	if len(x.chunks) == 0 {
		return nil, nil
	}
	if len(query) != x.info.Dimensionality {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrInvalidInput, len(query), x.info.Dimensionality)
	}
	q, err := normalize(query)
	if err != nil {
		return nil, fmt.Errorf("%w: query %v", domain.ErrInvalidInput, err)
	}

	// One extra candidate shows whether the tie at the k-th score runs past
	// what chromem returned.
	n := min(k, len(x.chunks))
	results, err := x.coll.QueryEmbedding(ctx, q, min(n+1, len(x.chunks)), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	seen := make(map[int]bool, len(results))
	hits := make([]driven.VectorHit, 0, len(results))
	for _, r := range results {
		id, err := strconv.Atoi(r.ID)
		if err != nil || id < 0 || id >= len(x.chunks) {
			return nil, fmt.Errorf("vector search: unexpected document id %q", r.ID)
		}
		sim := dot(q, x.chunks[id].Embedding)
		hits = append(hits, driven.VectorHit{ID: id, Similarity: sim, Embedding: x.chunks[id].Embedding})
		seen[id] = true
	}

	// chromem keeps whichever tied candidate it saw first. When the tie
	// reaches past its results, every chunk at the boundary is pulled in
	// and the id decides.
	if floor, tied := boundaryTie(hits, n); tied {
		for id := range x.chunks {
			if seen[id] {
				continue
			}
			if sim := dot(q, x.chunks[id].Embedding); sim >= floor-tieTolerance {
				hits = append(hits, driven.VectorHit{ID: id, Similarity: sim, Embedding: x.chunks[id].Embedding})
			}
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].ID < hits[j].ID
	})
	if len(hits) > n {
		hits = hits[:n]
	}
	return hits, nil
}

// boundaryTie returns the lowest score among the first n hits, in chromem's
// order, and whether the hit after them ties with it.
func boundaryTie(hits []driven.VectorHit, n int) (float64, bool) {
	floor := math.Inf(1)
	for _, h := range hits[:min(n, len(hits))] {
		floor = math.Min(floor, h.Similarity)
	}
	if len(hits) <= n {
		return floor, false
	}
	return floor, hits[n].Similarity >= floor-tieTolerance
}

// Export writes the index as a gzip-compressed chromem gob stream.
func (x *Index) Export(w io.Writer) error {
	if err := x.db.ExportToWriter(w, true, "", ChunksCollection, InfoCollection); err != nil {
		return fmt.Errorf("export index: %w", err)
	}
	return nil
}

// Import reads an index written by Export.
func Import(ctx context.Context, r io.ReadSeeker) (*Index, error) {
	db := chromem.NewDB()
	if err := db.ImportFromReader(r, "", ChunksCollection, InfoCollection); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}
	return fromDB(ctx, db)
}

// fromDB rebuilds the chunk table of an imported database.
func fromDB(ctx context.Context, db *chromem.DB) (*Index, error) {
	infoColl := db.GetCollection(InfoCollection, noTextEmbedding)
	coll := db.GetCollection(ChunksCollection, noTextEmbedding)
	if infoColl == nil || coll == nil {
		return nil, fmt.Errorf("%w: missing collections", domain.ErrIndexUnavailable)
	}

	infoDoc, err := infoColl.GetByID(ctx, infoDocID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}
	var info domain.IndexInfo
	if err := json.Unmarshal([]byte(infoDoc.Content), &info); err != nil {
		return nil, fmt.Errorf("%w: decode index info: %v", domain.ErrIndexUnavailable, err)
	}

	count := coll.Count()
	if count != info.Count {
		return nil, fmt.Errorf("%w: index info lists %d chunks, found %d", domain.ErrIndexUnavailable, info.Count, count)
	}

	chunks := make([]domain.IndexedChunk, count)
	for id := 0; id < count; id++ {
		doc, err := coll.GetByID(ctx, strconv.Itoa(id))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
		}
		if len(doc.Embedding) != info.Dimensionality {
			return nil, fmt.Errorf("%w: chunk %d has %d dimensions, index has %d",
				domain.ErrIndexUnavailable, id, len(doc.Embedding), info.Dimensionality)
		}
		chunks[id] = domain.IndexedChunk{
			ID:        id,
			Chunk:     domain.Chunk{Content: doc.Content, Metadata: doc.Metadata},
			Embedding: doc.Embedding,
		}
	}

	return &Index{db: db, coll: coll, info: info, chunks: chunks}, nil
}

// normalize returns v scaled to unit length.
func normalize(v []float32) ([]float32, error) {
	var sum float64
	for _, f := range v {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return nil, errors.New("vector has non-finite components")
		}
		sum += float64(f) * float64(f)
	}
	if sum == 0 {
		return nil, errors.New("vector has zero length")
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(v))
	if math.Abs(norm-1) < unitTolerance {
		// Already unit length: keep it bit-identical so reloads are stable.
		copy(out, v)
		return out, nil
	}
	for i, f := range v {
		out[i] = float32(float64(f) / norm)
	}
	return out, nil
}

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}
