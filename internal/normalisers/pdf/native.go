package pdf

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

var _ driven.DocumentParser = (*Native)(nil)

// Native parses PDFs in-process.
type Native struct{}

// NewNative creates a pure-Go PDF parser.
func NewNative() *Native {
	return &Native{}
}

// Name returns the parser name.
func (n *Native) Name() string {
	return string(domain.ParserNative)
}

// Parse extracts the text of every page of the PDF at path.
// Pages without content yield empty page texts so numbering is preserved.
func (n *Native) Parse(ctx context.Context, path string) (doc *domain.Document, err error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", domain.ErrInvalidInput)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrParseFailed, path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrParseFailed, path, err)
	}

	// The reader panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("%w: %s: malformed pdf: %v", domain.ErrParseFailed, path, r)
		}
	}()

	r, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrParseFailed, path, err)
	}

	total := r.NumPage()
	pages := make([]domain.Page, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := r.Page(i)
		text := ""
		if !page.V.IsNull() {
			text, err = page.GetPlainText(nil)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: page %d: %v", domain.ErrParseFailed, path, i, err)
			}
		}
		pages = append(pages, domain.Page{Number: i, Text: text})
	}

	return &domain.Document{
		Path:  path,
		Pages: pages,
		Metadata: map[string]string{
			domain.MetaTotalPages: strconv.Itoa(total),
			MetaParser:            n.Name(),
			MetaTitle:             extractTitle(firstText(pages), path),
		},
	}, nil
}
