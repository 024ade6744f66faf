package ai

import (
	"context"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// ConfigValidator validates a full configuration before it is used.
type ConfigValidator struct{}

// NewConfigValidator creates a new config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// Validate checks settings offline, then pings the embedding provider.
func (v *ConfigValidator) Validate(ctx context.Context, settings *domain.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	return ValidateEmbeddingConfig(ctx, &settings.Embedding)
}
