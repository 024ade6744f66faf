package file

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// ExpandPaths resolves corpus entries in order. Entries containing glob
// metacharacters (including **) are expanded to their sorted file matches;
// other entries are kept verbatim. Duplicates keep their first position.
// Patterns that matched nothing are returned separately.
func ExpandPaths(patterns []string) (paths, unmatched []string, err error) {
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, pattern := range patterns {
		if !strings.ContainsAny(pattern, "*?[{") {
			add(pattern)
			continue
		}
		if !doublestar.ValidatePathPattern(pattern) {
			return nil, nil, fmt.Errorf("%w: bad glob pattern %q", domain.ErrInvalidConfig, pattern)
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, nil, fmt.Errorf("%w: glob %q: %v", domain.ErrInvalidConfig, pattern, err)
		}
		if len(matches) == 0 {
			unmatched = append(unmatched, pattern)
			continue
		}
		sort.Strings(matches)
		for _, m := range matches {
			add(m)
		}
	}
	return paths, unmatched, nil
}
