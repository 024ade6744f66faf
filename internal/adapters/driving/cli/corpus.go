package cli

import (
	"fmt"

	"github.com/custodia-labs/docrag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
)

// corpusRequest expands the document patterns given on the command line,
// or the configured corpus paths when there are none.
func corpusRequest(args []string) (driving.ChunkRequest, error) {
	patterns := settings.Corpus.Paths
	if len(args) > 0 {
		patterns = args
	}
	if len(patterns) == 0 {
		return driving.ChunkRequest{}, fmt.Errorf("%w: no documents given and corpus.paths is empty", domain.ErrInvalidInput)
	}

	paths, unmatched, err := file.ExpandPaths(patterns)
	if err != nil {
		return driving.ChunkRequest{}, err
	}
	for _, p := range unmatched {
		currentLog().Warn("no documents match %s", p)
	}
	if len(paths) == 0 {
		return driving.ChunkRequest{}, fmt.Errorf("%w: no documents match %v", domain.ErrInvalidInput, patterns)
	}

	currentLog().Debug("corpus: %d documents", len(paths))
	return driving.ChunkRequest{Paths: paths, PathToFilename: settings.Corpus.Filenames}, nil
}
