package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// newServer answers /api/embed with [len(text), 0.5] per input.
func newServer(t *testing.T, status int, requests *int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte("model not found"))
			return
		}
		switch r.URL.Path {
		case "/api/embed":
			if requests != nil {
				*requests++
			}
			var req embedRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			resp := embedResponse{Model: req.Model}
			for _, in := range req.Input {
				resp.Embeddings = append(resp.Embeddings, []float32{float32(len(in)), 0.5})
			}
			_ = json.NewEncoder(w).Encode(resp)
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc := NewEmbeddingService(Config{BaseURL: "http://example:11434/"})
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultDimensions, svc.Dimensions())
	assert.Equal(t, "http://example:11434", svc.baseURL)
	assert.NoError(t, svc.Close())
}

func TestEmbed(t *testing.T) {
	svc := NewEmbeddingService(Config{BaseURL: newServer(t, http.StatusOK, nil).URL, Dimensions: 2})

	got, err := svc.Embed(context.Background(), "abcd")
	require.NoError(t, err)
	assert.Equal(t, []float32{4, 0.5}, got)
}

func TestEmbedBatch_SingleRequestKeepsOrder(t *testing.T) {
	var requests int
	svc := NewEmbeddingService(Config{BaseURL: newServer(t, http.StatusOK, &requests).URL, Dimensions: 2})

	got, err := svc.EmbedBatch(context.Background(), []string{"a", "abc", "ab"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0.5}, {3, 0.5}, {2, 0.5}}, got)
	assert.Equal(t, 1, requests)
}

func TestEmbedBatch_Empty(t *testing.T) {
	var requests int
	svc := NewEmbeddingService(Config{BaseURL: newServer(t, http.StatusOK, &requests).URL})

	got, err := svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Zero(t, requests)
}

func TestEmbed_DimensionMismatch(t *testing.T) {
	svc := NewEmbeddingService(Config{BaseURL: newServer(t, http.StatusOK, nil).URL, Dimensions: 3})

	_, err := svc.Embed(context.Background(), "abc")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingFailed)
	assert.Contains(t, err.Error(), "expected 3")
}

func TestEmbed_ServerError(t *testing.T) {
	svc := NewEmbeddingService(Config{BaseURL: newServer(t, http.StatusNotFound, nil).URL})

	_, err := svc.Embed(context.Background(), "a")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingFailed)
	assert.Contains(t, err.Error(), "status 404: model not found")

	assert.Error(t, svc.Ping(context.Background()))
}

func TestPing(t *testing.T) {
	svc := NewEmbeddingService(Config{BaseURL: newServer(t, http.StatusOK, nil).URL})
	assert.NoError(t, svc.Ping(context.Background()))
}
