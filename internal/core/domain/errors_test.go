package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrInvalidConfig", ErrInvalidConfig},
		{"ErrNotImplemented", ErrNotImplemented},
		{"ErrParseFailed", ErrParseFailed},
		{"ErrEmbeddingFailed", ErrEmbeddingFailed},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrIndexBuild", ErrIndexBuild},
		{"ErrIndexUnavailable", ErrIndexUnavailable},
		{"ErrRetrieval", ErrRetrieval},
		{"ErrRateLimited", ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

// TestErrors_Wrapping tests that wrapped stage errors are still detectable
func TestErrors_Wrapping(t *testing.T) {
	wrapped := fmt.Errorf("indexing: batch 2: %w", ErrIndexBuild)

	assert.True(t, errors.Is(wrapped, ErrIndexBuild))
	assert.False(t, errors.Is(wrapped, ErrRetrieval))
	assert.Contains(t, wrapped.Error(), "indexing")
}

// TestErrors_Distinct tests that sentinel errors do not match each other
func TestErrors_Distinct(t *testing.T) {
	all := []error{
		ErrInvalidInput, ErrInvalidConfig, ErrNotImplemented, ErrParseFailed,
		ErrEmbeddingFailed, ErrEmbeddingUnavailable, ErrIndexBuild,
		ErrIndexUnavailable, ErrRetrieval, ErrRateLimited,
	}
	for i, a := range all {
		for j, b := range all {
			if i != j {
				assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
			}
		}
	}
}
