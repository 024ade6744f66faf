package cli

import (
	"context"
	"time"

	"github.com/custodia-labs/docrag/internal/connectors/filesystem"
	"github.com/custodia-labs/docrag/internal/core/domain"
)

// watchDebounce is how long changes must settle before a rebuild.
var watchDebounce = 750 * time.Millisecond

// watchChanges calls onChange with each settled batch of changes to files
// matching patterns, until ctx is cancelled. Errors from onChange are
// logged and watching continues.
func watchChanges(
	ctx context.Context, patterns []string, onChange func(context.Context, []domain.CorpusChange) error,
) error {
	w := filesystem.New(patterns, currentLog())
	defer func() { _ = w.Close() }()

	changes, err := w.Watch(ctx)
	if err != nil {
		return err
	}

	var (
		pending []domain.CorpusChange
		timer   = time.NewTimer(watchDebounce)
	)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case c, ok := <-changes:
			if !ok {
				return nil
			}
			currentLog().Debug("%s %s", c.Type, c.Path)
			pending = append(pending, c)
			timer.Reset(watchDebounce)
		case <-timer.C:
			batch := pending
			pending = nil
			if err := onChange(ctx, batch); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				currentLog().Warn("%v", err)
			}
		}
	}
}
