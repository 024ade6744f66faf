package services

import (
	"strings"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// SourcePrefix starts the header line of each context block.
const SourcePrefix = "Source: "

// AssembleContext renders chunks, in the order given, as attributed blocks
// ("Source: <name>\n<content>") joined by a newline. The name is the
// original filename without its extension. No chunks yield "".
func AssembleContext(chunks []domain.Chunk) string {
	if len(chunks) == 0 {
		return ""
	}
	var b strings.Builder
	for i, c := range chunks {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(SourcePrefix)
		b.WriteString(c.SourceName())
		b.WriteByte('\n')
		b.WriteString(c.Content)
	}
	return b.String()
}
