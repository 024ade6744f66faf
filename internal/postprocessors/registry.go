package postprocessors

import (
	"fmt"
	"slices"

	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// BuilderFunc makes a processor from its entry in the pipeline config.
// cfg may be nil.
type BuilderFunc func(cfg map[string]any) (driven.PostProcessor, error)

// Registry resolves processor names to builders. Names match what the
// built processor reports from Name.
type Registry struct {
	builders map[string]BuilderFunc
}

func NewRegistry() *Registry {
	return &Registry{builders: map[string]BuilderFunc{}}
}

// Register adds or replaces the builder for name.
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.builders[name] = builder
}

// Build makes the named processor.
func (r *Registry) Build(name string, cfg map[string]any) (driven.PostProcessor, error) {
	if builder, ok := r.builders[name]; ok {
		return builder(cfg)
	}
	return nil, fmt.Errorf("unknown processor: %s (have %v)", name, r.Names())
}

// BuildPipeline builds one stage per name, in order, each from cfgs[name].
func (r *Registry) BuildPipeline(names []string, cfgs map[string]map[string]any) (*Pipeline, error) {
	stages := make([]driven.PostProcessor, 0, len(names))
	for _, name := range names {
		stage, err := r.Build(name, cfgs[name])
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", name, err)
		}
		stages = append(stages, stage)
	}
	return NewPipeline(stages...), nil
}

// Has returns true if a processor with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
