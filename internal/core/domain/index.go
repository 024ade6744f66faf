package domain

import "time"

// IndexInfo describes one vector index build.
type IndexInfo struct {
	// BuildID uniquely identifies the build.
	BuildID string `json:"build_id"`

	// Model is the embedding model the vectors were produced with.
	Model string `json:"model"`

	// Count is the number of indexed chunks.
	Count int `json:"count"`

	// Dimensionality is the embedding vector length.
	Dimensionality int `json:"dimensionality"`

	// CreatedAt is when the build completed.
	CreatedAt time.Time `json:"created_at"`
}
