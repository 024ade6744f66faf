package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	topK := 0
	if raw := q.Get("top_k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "top_k must be a positive integer")
			return
		}
		topK = n
	}

	answer, err := s.query.Ask(r.Context(), q.Get("question"), topK)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.log.Warn("context request failed: %v", err)
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	info := s.query.IndexInfo()
	if info.BuildID == "" {
		writeError(w, http.StatusServiceUnavailable, domain.ErrIndexUnavailable.Error())
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrIndexUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
