// Package pdf extracts page texts from PDF documents.
//
// Normaliser shells out to poppler's pdftotext, which separates pages with
// form feeds. Native reads the file with a pure-Go PDF reader and needs no
// external tools.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// ErrPDFToolNotFound is returned when pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// Metadata keys set by the PDF parsers.
const (
	MetaTitle  = "title"
	MetaParser = "parser"
)

const pdftotextBin = "pdftotext"

// Ensure Normaliser implements the interface.
var _ driven.DocumentParser = (*Normaliser)(nil)

// execRunner runs commands with os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil && stderr.Len() > 0 {
		return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out, err
}

// Normaliser parses PDFs with pdftotext.
type Normaliser struct {
	runner    driven.CommandRunner
	lookupBin bool
}

// New creates a normaliser that runs the installed pdftotext.
func New() *Normaliser {
	return &Normaliser{runner: execRunner{}, lookupBin: true}
}

// NewWithRunner creates a normaliser with a custom command runner.
func NewWithRunner(runner driven.CommandRunner) *Normaliser {
	return &Normaliser{runner: runner}
}

// Name returns the parser name.
func (n *Normaliser) Name() string {
	return string(domain.ParserPDFToText)
}

// CheckAvailable reports whether pdftotext is on PATH.
func CheckAvailable() error {
	if _, err := exec.LookPath(pdftotextBin); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions returns how to install pdftotext.
func InstallInstructions() string {
	return `pdftotext is required to parse PDF documents.

Install poppler:
  macOS:         brew install poppler
  Debian/Ubuntu: apt install poppler-utils
  Fedora:        dnf install poppler-utils

Or set parser = "native" in the [corpus] section of the config file.`
}

// Parse extracts the pages of the PDF at path.
func (n *Normaliser) Parse(ctx context.Context, path string) (*domain.Document, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", domain.ErrInvalidInput)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrParseFailed, path, err)
	}
	if n.lookupBin {
		if err := CheckAvailable(); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrParseFailed, path, err)
		}
	}

	out, err := n.runner.Run(ctx, pdftotextBin, "-enc", "UTF-8", path, "-")
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %s: pdftotext failed: %v", domain.ErrParseFailed, path, err)
	}

	pages := splitPages(string(out))
	doc := &domain.Document{
		Path:  path,
		Pages: pages,
		Metadata: map[string]string{
			domain.MetaTotalPages: strconv.Itoa(len(pages)),
			MetaParser:            n.Name(),
			MetaTitle:             extractTitle(firstText(pages), path),
		},
	}
	return doc, nil
}

// splitPages splits pdftotext output on form feeds. pdftotext ends every
// page with one, so a trailing empty segment is not a page.
func splitPages(out string) []domain.Page {
	if out == "" {
		return nil
	}
	parts := strings.Split(out, "\f")
	if len(parts) > 1 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}
	pages := make([]domain.Page, len(parts))
	for i, p := range parts {
		pages[i] = domain.Page{Number: i + 1, Text: p}
	}
	return pages
}

func firstText(pages []domain.Page) string {
	for _, p := range pages {
		if strings.TrimSpace(p.Text) != "" {
			return p.Text
		}
	}
	return ""
}

// extractTitle returns the first short non-empty line, or a title derived
// from the filename.
func extractTitle(content, path string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(strings.Trim(line, "\x00"))
		if line != "" && len(line) <= 200 {
			return line
		}
	}

	filename := filepath.Base(path)
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}
