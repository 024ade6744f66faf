// Package markdown parses Markdown files into single-page documents with
// formatting stripped.
package markdown

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.DocumentParser = (*Normaliser)(nil)

// Normaliser handles Markdown documents.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Name returns the parser name.
func (n *Normaliser) Name() string {
	return "markdown"
}

// Extensions returns the file extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{".md", ".markdown"}
}

// Parse reads the markdown file at path. The whole file is page 1.
func (n *Normaliser) Parse(ctx context.Context, path string) (*domain.Document, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", domain.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrParseFailed, path, err)
	}
	return n.parseContent(path, string(raw)), nil
}

func (n *Normaliser) parseContent(path, rawContent string) *domain.Document {
	return &domain.Document{
		Path:  path,
		Pages: []domain.Page{{Number: 1, Text: stripMarkdown(rawContent)}},
		Metadata: map[string]string{
			domain.MetaTotalPages: "1",
			"title":               extractMarkdownTitle(rawContent, path),
			"format":              "markdown",
		},
	}
}

// extractMarkdownTitle extracts a title from the markdown content or falls back to filename.
func extractMarkdownTitle(content, path string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}

	filename := filepath.Base(path)
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}

var (
	codeBlockRe     = regexp.MustCompile("(?s)```[^`]*```")
	inlineCodeRe    = regexp.MustCompile("`[^`]+`")
	imageRe         = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	linkRe          = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headingRe       = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	blockquoteRe    = regexp.MustCompile(`(?m)^>\s*`)
	horizontalRe    = regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`)
	listMarkerRe    = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	numberedListRe  = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	multiNewlinesRe = regexp.MustCompile(`\n{3,}`)
)

// stripMarkdown removes common markdown formatting. Paragraph breaks are
// kept so the splitter can still cut on them.
func stripMarkdown(content string) string {
	content = codeBlockRe.ReplaceAllString(content, "")
	content = inlineCodeRe.ReplaceAllString(content, "")
	content = imageRe.ReplaceAllString(content, "")
	content = linkRe.ReplaceAllString(content, "$1")
	content = headingRe.ReplaceAllString(content, "")

	content = strings.ReplaceAll(content, "**", "")
	content = strings.ReplaceAll(content, "__", "")
	content = strings.ReplaceAll(content, "*", "")
	content = strings.ReplaceAll(content, "_", " ")

	content = blockquoteRe.ReplaceAllString(content, "")
	content = horizontalRe.ReplaceAllString(content, "")
	content = listMarkerRe.ReplaceAllString(content, "")
	content = numberedListRe.ReplaceAllString(content, "")
	content = multiNewlinesRe.ReplaceAllString(content, "\n\n")

	return strings.TrimSpace(content)
}
