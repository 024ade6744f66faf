package domain

import "errors"

// Domain errors represent pipeline failures by stage.
// Adapters wrap them with %w so callers can test with errors.Is.
var (
	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates a configuration error detected before processing.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNotImplemented indicates functionality is not available in this build.
	ErrNotImplemented = errors.New("not implemented")

	// ErrParseFailed indicates a document could not be parsed.
	ErrParseFailed = errors.New("document parse failed")

	// ErrEmbeddingFailed indicates the embedding capability returned an error.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrEmbeddingUnavailable indicates no embedding service is configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrIndexBuild indicates the vector index could not be built.
	// No partial index exists when this is returned.
	ErrIndexBuild = errors.New("index build failed")

	// ErrIndexUnavailable indicates the vector index is missing or unreadable.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrRetrieval indicates a query could not be answered.
	// No partial result is returned with it.
	ErrRetrieval = errors.New("retrieval failed")

	// ErrRateLimited indicates a caller exceeded the request rate.
	ErrRateLimited = errors.New("rate limited")
)
