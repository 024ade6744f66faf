package driven

import "github.com/custodia-labs/docrag/internal/core/domain"

// ConfigStore provides access to application configuration.
// Implementations handle persistence (e.g., TOML files).
type ConfigStore interface {
	// Load reads the settings, applying defaults for absent values.
	// A missing file yields the defaults.
	Load() (*domain.Settings, error)

	// Save persists settings.
	Save(settings *domain.Settings) error

	// Path returns the configuration file path.
	Path() string
}
