// Package ai provides factory functions for creating embedding service adapters.
package ai

import (
	"context"
	"fmt"
	"os"
	"time"

	hashembed "github.com/custodia-labs/docrag/internal/adapters/driven/embedding/hash"
	ollamaembed "github.com/custodia-labs/docrag/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/docrag/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// getenv is replaced in tests.
var getenv = os.Getenv

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Check the [embedding] section of your config",
			domain.ErrEmbeddingUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Check the [embedding] section of your config",
			domain.ErrEmbeddingUnavailable, err)
	}

	return svc, nil
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
func ValidateEmbeddingConfig(ctx context.Context, settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateEmbeddingService creates the embedding service selected by settings.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: embedding settings are missing", domain.ErrInvalidConfig)
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAIEmbedding(settings)

	case domain.AIProviderHash:
		return hashembed.NewEmbeddingService(settings.Dimensions)

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider: %q", domain.ErrInvalidConfig, settings.Provider)
	}
}

// APIKey returns the key named by settings.APIKeyEnv, or an error when the
// provider needs one and it is unset.
func APIKey(settings *domain.EmbeddingSettings) (string, error) {
	if !settings.Provider.RequiresAPIKey() {
		return "", nil
	}
	env := settings.APIKeyEnv
	if env == "" {
		env = domain.DefaultAPIKeyEnv
	}
	key := getenv(env)
	if key == "" {
		return "", fmt.Errorf("%w: environment variable %s is not set", domain.ErrInvalidConfig, env)
	}
	return key, nil
}

func timeout(settings *domain.EmbeddingSettings) time.Duration {
	return time.Duration(settings.TimeoutSecs) * time.Second
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Timeout:    timeout(settings),
		Dimensions: settings.Dimensions,
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	key, err := APIKey(settings)
	if err != nil {
		return nil, err
	}

	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:            key,
		BaseURL:           settings.BaseURL,
		Model:             settings.Model,
		Timeout:           timeout(settings),
		Dimensions:        settings.Dimensions,
		RequestsPerSecond: settings.RequestsPerSecond,
	})
}
