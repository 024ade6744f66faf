// Package memory provides in-memory implementations of the storage ports,
// used by tests and by commands that never touch disk.
package memory

import (
	"sync"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore is an in-memory implementation of driven.ConfigStore.
type ConfigStore struct {
	mu       sync.RWMutex
	settings *domain.Settings
}

// NewConfigStore creates a store holding a copy of settings.
// A nil settings value starts from the defaults.
func NewConfigStore(settings *domain.Settings) *ConfigStore {
	s := &ConfigStore{}
	if settings == nil {
		d := domain.DefaultSettings()
		settings = &d
	}
	s.settings = clone(settings)
	return s
}

// Load returns a copy of the stored settings with defaults applied.
func (s *ConfigStore) Load() (*domain.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := clone(s.settings)
	out.ApplyDefaults()
	return out, nil
}

// Save replaces the stored settings.
func (s *ConfigStore) Save(settings *domain.Settings) error {
	if settings == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = clone(settings)
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return ":memory:"
}

// clone copies settings deeply enough that callers cannot alias stored slices or maps.
func clone(in *domain.Settings) *domain.Settings {
	out := *in
	out.Corpus.Paths = append([]string(nil), in.Corpus.Paths...)
	if in.Corpus.Filenames != nil {
		out.Corpus.Filenames = make(map[string]string, len(in.Corpus.Filenames))
		for k, v := range in.Corpus.Filenames {
			out.Corpus.Filenames[k] = v
		}
	}
	if in.Chunking.Separators != nil {
		out.Chunking.Separators = append([]string{}, in.Chunking.Separators...)
	}
	if in.Chunking.SuspiciousPatterns != nil {
		out.Chunking.SuspiciousPatterns = append([]string{}, in.Chunking.SuspiciousPatterns...)
	}
	return &out
}
