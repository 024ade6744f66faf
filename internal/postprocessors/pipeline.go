// Package postprocessors turns one parsed document into its chunks by
// running split, attribution and sanitization stages in a fixed order.
package postprocessors

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// Pipeline runs its stages in insertion order. The first stage is handed
// nil and must produce the chunks; later stages transform them.
type Pipeline struct {
	stages []driven.PostProcessor
}

func NewPipeline(stages ...driven.PostProcessor) *Pipeline {
	return &Pipeline{stages: stages}
}

// Process returns the chunks of doc. A stage error aborts the run and is
// prefixed with the stage name.
func (p *Pipeline) Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", domain.ErrInvalidInput)
	}

	var chunks []domain.Chunk
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := stage.Process(ctx, doc, chunks)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", stage.Name(), err)
		}
		chunks = out
	}
	return chunks, nil
}

func (p *Pipeline) Add(stage driven.PostProcessor) { p.stages = append(p.stages, stage) }

func (p *Pipeline) Len() int { return len(p.stages) }

// Names lists the stages in run order.
func (p *Pipeline) Names() []string {
	out := make([]string, 0, len(p.stages))
	for _, s := range p.stages {
		out = append(out, s.Name())
	}
	return out
}
