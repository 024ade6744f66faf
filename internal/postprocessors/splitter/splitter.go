// Package splitter provides a token-aware recursive text splitter.
//
// Text is split on the first separator of an ordered list that occurs in
// it, coarsest first. Pieces under the chunk size are merged back together
// up to the size, carrying up to the configured overlap into the next
// chunk. Pieces that are still too large are split again with the remaining
// separators, and once no separator remains they are cut at rune boundaries.
// Sizes are measured with an injected tokenizer, not in characters.
package splitter

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// Config holds the splitting parameters.
type Config struct {
	// ChunkSize is the maximum chunk length in tokens.
	ChunkSize int

	// ChunkOverlap is the maximum number of tokens carried between adjacent chunks.
	ChunkOverlap int

	// Separators are literal delimiters, coarsest first. The empty string
	// splits between characters.
	Separators []string
}

// Splitter splits text into bounded, overlapping chunks.
// It holds no mutable state and is safe for concurrent use.
type Splitter struct {
	cfg Config
	tok driven.Tokenizer
}

// New validates cfg and returns a splitter measuring with tok.
func New(cfg Config, tok driven.Tokenizer) (*Splitter, error) {
	if tok == nil {
		return nil, fmt.Errorf("%w: splitter requires a tokenizer", domain.ErrInvalidConfig)
	}
	if cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk_size must be positive, got %d", domain.ErrInvalidConfig, cfg.ChunkSize)
	}
	if cfg.ChunkOverlap < 0 {
		return nil, fmt.Errorf("%w: chunk_overlap must not be negative, got %d", domain.ErrInvalidConfig, cfg.ChunkOverlap)
	}
	if cfg.ChunkOverlap > cfg.ChunkSize {
		return nil, fmt.Errorf("%w: chunk_overlap (%d) exceeds chunk_size (%d)",
			domain.ErrInvalidConfig, cfg.ChunkOverlap, cfg.ChunkSize)
	}
	cfg.Separators = append([]string(nil), cfg.Separators...)
	return &Splitter{cfg: cfg, tok: tok}, nil
}

// Config returns the splitter configuration.
func (s *Splitter) Config() Config {
	c := s.cfg
	c.Separators = append([]string(nil), s.cfg.Separators...)
	return c
}

// Split returns the chunks of text in document order.
// Empty or whitespace-only text yields no chunks.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.split(text, s.cfg.Separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	separator, rest, found := pickSeparator(text, separators)

	var pieces []string
	if found {
		pieces = splitKeepingSeparator(text, separator)
	} else {
		pieces = []string{text}
	}

	var (
		final []string
		good  []sized
	)
	for _, piece := range pieces {
		n := s.tok.CountTokens(piece)
		if n < s.cfg.ChunkSize {
			good = append(good, sized{text: piece, tokens: n})
			continue
		}
		if len(good) > 0 {
			final = append(final, s.merge(good)...)
			good = nil
		}
		if len(rest) > 0 {
			final = append(final, s.split(piece, rest)...)
		} else {
			final = append(final, s.forceSplit(piece)...)
		}
	}
	if len(good) > 0 {
		final = append(final, s.merge(good)...)
	}
	return final
}

// pickSeparator returns the first separator present in text and the
// separators after it. The empty separator always matches and ends the list.
func pickSeparator(text string, separators []string) (sep string, rest []string, found bool) {
	for i, candidate := range separators {
		if candidate == "" {
			return "", nil, true
		}
		if strings.Contains(text, candidate) {
			return candidate, separators[i+1:], true
		}
	}
	return "", nil, false
}

// splitKeepingSeparator splits on sep and keeps it at the start of each
// following piece. Empty pieces are dropped.
func splitKeepingSeparator(text, sep string) []string {
	if sep == "" {
		out := make([]string, 0, len(text))
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}

	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	if parts[0] != "" {
		out = append(out, parts[0])
	}
	for _, p := range parts[1:] {
		out = append(out, sep+p)
	}
	return out
}

type sized struct {
	text   string
	tokens int
}

// merge packs consecutive pieces into chunks of at most ChunkSize tokens.
// When a chunk is emitted, pieces are dropped from its front until at most
// ChunkOverlap tokens remain and the next piece fits; the remainder opens
// the next chunk.
func (s *Splitter) merge(pieces []sized) []string {
	var (
		chunks  []string
		current []sized
		total   int
	)
	for _, p := range pieces {
		if total+p.tokens > s.cfg.ChunkSize && len(current) > 0 {
			chunks = appendJoined(chunks, current)
			for total > s.cfg.ChunkOverlap || (total+p.tokens > s.cfg.ChunkSize && total > 0) {
				total -= current[0].tokens
				current = current[1:]
			}
		}
		current = append(current, p)
		total += p.tokens
	}
	return appendJoined(chunks, current)
}

func appendJoined(chunks []string, pieces []sized) []string {
	var b strings.Builder
	for _, p := range pieces {
		b.WriteString(p.text)
	}
	if chunk := strings.TrimSpace(b.String()); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}

// forceSplit cuts text at rune boundaries into the longest prefixes that
// fit. A rune that alone exceeds the size is emitted by itself.
func (s *Splitter) forceSplit(text string) []string {
	runes := []rune(text)
	var out []string
	for start := 0; start < len(runes); {
		end := start + 1
		if s.fits(runes[start:end]) {
			// Largest end in (start, len] whose prefix fits; fits(lo) holds throughout.
			lo, hi := end, len(runes)
			for lo < hi {
				mid := lo + (hi-lo+1)/2
				if s.fits(runes[start:mid]) {
					lo = mid
				} else {
					hi = mid - 1
				}
			}
			end = lo
		}
		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			out = append(out, chunk)
		}
		start = end
	}
	return out
}

func (s *Splitter) fits(runes []rune) bool {
	return s.tok.CountTokens(string(runes)) <= s.cfg.ChunkSize
}
