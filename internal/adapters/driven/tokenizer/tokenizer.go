// Package tokenizer provides Tokenizer implementations for measuring chunk sizes.
package tokenizer

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// WordsName selects the whitespace word tokenizer.
const WordsName = "words"

// FallbackEncoding is used for models tiktoken does not know.
const FallbackEncoding = tiktoken.MODEL_CL100K_BASE

// Verify interface compliance.
var (
	_ driven.Tokenizer = (*Tiktoken)(nil)
	_ driven.Tokenizer = Words{}
)

// Tiktoken counts BPE tokens with an OpenAI encoding.
// BPE ranks are downloaded on first use and cached under TIKTOKEN_CACHE_DIR.
type Tiktoken struct {
	encoding string
	enc      *tiktoken.Tiktoken
}

// NewTiktoken loads the named encoding (e.g. cl100k_base).
func NewTiktoken(encoding string) (*Tiktoken, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("%w: tiktoken encoding %q: %v", domain.ErrInvalidConfig, encoding, err)
	}
	return &Tiktoken{encoding: encoding, enc: enc}, nil
}

// Name returns the encoding name.
func (t *Tiktoken) Name() string {
	return t.encoding
}

// CountTokens returns the number of BPE tokens in text.
// Special-token text is counted as ordinary text.
func (t *Tiktoken) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(t.enc.EncodeOrdinary(text))
}

// Words counts whitespace-separated words. It needs no model data.
type Words struct{}

// Name returns "words".
func (Words) Name() string {
	return WordsName
}

// CountTokens returns the number of words in text.
func (Words) CountTokens(text string) int {
	return len(strings.Fields(text))
}

// Resolve picks the tokenizer for an embedding model.
// A non-empty override names either "words" or a tiktoken encoding;
// otherwise the model's encoding is used, falling back to FallbackEncoding.
func Resolve(model, override string) (driven.Tokenizer, error) {
	switch override {
	case WordsName:
		return Words{}, nil
	case "":
		return NewTiktoken(EncodingFor(model))
	default:
		return NewTiktoken(override)
	}
}

// EncodingFor returns the tiktoken encoding name for a model.
func EncodingFor(model string) string {
	if enc, ok := tiktoken.MODEL_TO_ENCODING[model]; ok {
		return enc
	}
	// Longest prefix wins so gpt-4o- is not read as gpt-4-.
	best, bestLen := "", 0
	for prefix, enc := range tiktoken.MODEL_PREFIX_TO_ENCODING {
		if strings.HasPrefix(model, prefix) && len(prefix) > bestLen {
			best, bestLen = enc, len(prefix)
		}
	}
	if best != "" {
		return best
	}
	return FallbackEncoding
}
