package file

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// DefaultFileName is used when no config path is given.
const DefaultFileName = "docrag.toml"

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore is a file-based implementation of driven.ConfigStore using TOML.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
}

// NewConfigStore creates a new TOML-based config store.
// If path is empty, defaults to docrag.toml in the working directory.
func NewConfigStore(path string) *ConfigStore {
	if path == "" {
		path = DefaultFileName
	}
	return &ConfigStore{filePath: path}
}

// Load reads the settings file and applies defaults. A missing file yields
// the defaults. Unknown keys are rejected so typos surface early.
func (s *ConfigStore) Load() (*domain.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var settings domain.Settings
	data, err := os.ReadFile(s.filePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// No config file yet - that's fine, use defaults
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&settings); err != nil {
			return nil, fmt.Errorf("%w: %s: %s", domain.ErrInvalidConfig, s.filePath, describe(err))
		}
	}

	settings.ApplyDefaults()
	return &settings, nil
}

// describe renders go-toml errors with their position.
func describe(err error) string {
	var decErr *toml.DecodeError
	if errors.As(err, &decErr) {
		row, col := decErr.Position()
		return fmt.Sprintf("line %d, column %d: %s", row, col, decErr.Error())
	}
	var strictErr *toml.StrictMissingError
	if errors.As(err, &strictErr) {
		return strictErr.String()
	}
	return err.Error()
}

// Save writes settings to the TOML file with restricted permissions.
func (s *ConfigStore) Save(settings *domain.Settings) error {
	if settings == nil {
		return fmt.Errorf("%w: nil settings", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := toml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if dir := filepath.Dir(s.filePath); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	return os.WriteFile(s.filePath, data, 0600)
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// LoadDotEnv loads a .env file from the config file's directory into the
// process environment. Variables already set are kept. A missing file is
// not an error.
func LoadDotEnv(configPath string) error {
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if _, err := os.Stat(envPath); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(envPath); err != nil {
		return fmt.Errorf("load %s: %w", envPath, err)
	}
	return nil
}
