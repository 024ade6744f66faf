// Package sanitizer scrubs untrusted document text before it reaches a prompt.
//
// Sanitize canonicalizes text with NFKC, redacts every match of the
// configured suspicious patterns and strips ASCII control characters other
// than newline and tab. Patterns are matched case-insensitively against a
// lower-cased, accent-stripped view of the text, while the redaction is
// applied to the canonical text itself. Patterns run sequentially in list
// order: each one sees the redactions made by the patterns before it, and
// the ordered pass repeats until it redacts nothing new.
package sanitizer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/logger"
)

// RedactionMarker replaces every suspicious span.
const RedactionMarker = "[REDACTED]"

// maxRedactionPasses bounds the repeated pattern pass in Clean.
const maxRedactionPasses = 16

// Sanitizer holds compiled patterns. It is safe for concurrent use.
type Sanitizer struct {
	sources  []string
	patterns []*regexp.Regexp
	sink     logger.Sink
}

// Option configures a Sanitizer.
type Option func(*Sanitizer)

// WithSink sets the diagnostics sink. Defaults to logger.Discard.
func WithSink(sink logger.Sink) Option {
	return func(s *Sanitizer) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// New compiles patterns once. An invalid pattern is a configuration error.
func New(patterns []string, opts ...Option) (*Sanitizer, error) {
	s := &Sanitizer{
		sources:  append([]string(nil), patterns...),
		patterns: make([]*regexp.Regexp, 0, len(patterns)),
		sink:     logger.Discard,
	}
	for _, opt := range opts {
		opt(s)
	}

	for i, p := range patterns {
		re, err := regexp.Compile("(?i)" + stripAccents(norm.NFKC.String(p)))
		if err != nil {
			return nil, fmt.Errorf("%w: suspicious pattern %d (%q): %v", domain.ErrInvalidConfig, i, p, err)
		}
		if matchesInsideMarker(re) {
			return nil, fmt.Errorf("%w: suspicious pattern %d (%q) matches inside %s", domain.ErrInvalidConfig, i, p, RedactionMarker)
		}
		s.patterns = append(s.patterns, re)
	}
	return s, nil
}

// Patterns returns the pattern sources in application order.
func (s *Sanitizer) Patterns() []string {
	return append([]string(nil), s.sources...)
}

// Result is the outcome of cleaning one text.
type Result struct {
	// Text is the sanitized text.
	Text string

	// Redactions counts replaced spans across all patterns.
	Redactions int

	// ControlsRemoved counts stripped control characters.
	ControlsRemoved int

	// Changed is true if Text differs from the canonicalized input.
	Changed bool
}

// Clean sanitizes text without emitting diagnostics.
func (s *Sanitizer) Clean(text string) Result {
	canonical := norm.NFKC.String(text)

	// A redaction can create a match for an earlier pattern, so the ordered
	// pass repeats until it changes nothing.
	out := canonical
	redactions := 0
	for pass := 0; pass < maxRedactionPasses; pass++ {
		next, n := s.redactPass(out)
		if next == out {
			break
		}
		out = next
		redactions += n
	}

	out, removed := stripControls(out)
	// Removing a control character can leave a combining mark next to its base.
	out = norm.NFKC.String(out)

	return Result{
		Text:            out,
		Redactions:      redactions,
		ControlsRemoved: removed,
		Changed:         out != canonical,
	}
}

// redactPass applies every pattern once, in list order.
func (s *Sanitizer) redactPass(text string) (string, int) {
	total := 0
	for _, re := range s.patterns {
		var n int
		text, n = redact(text, re)
		total += n
	}
	return text, total
}

// Sanitize cleans text and reports whether the content changed.
// A change emits a sanitization_triggered diagnostic; it is never an error.
func (s *Sanitizer) Sanitize(text string) (string, bool) {
	return s.SanitizeWith(text, nil)
}

// SanitizeWith is Sanitize with extra diagnostic fields (e.g. the source path).
func (s *Sanitizer) SanitizeWith(text string, fields map[string]string) (string, bool) {
	res := s.Clean(text)
	if res.Changed {
		f := make(map[string]string, len(fields)+2)
		for k, v := range fields {
			f[k] = v
		}
		f["redactions"] = strconv.Itoa(res.Redactions)
		f["controls_removed"] = strconv.Itoa(res.ControlsRemoved)
		s.sink.Emit(logger.Diagnostic{
			Level:   logger.LevelInfo,
			Kind:    logger.KindSanitizationTriggered,
			Message: "content modified by sanitization",
			Fields:  f,
		})
	}
	return res.Text, res.Changed
}

// Matches reports whether any pattern matches the matching view of text.
func (s *Sanitizer) Matches(text string) bool {
	view := MatchingView(text)
	for _, re := range s.patterns {
		if loc := re.FindStringIndex(view); loc != nil && loc[0] != loc[1] {
			return true
		}
	}
	return false
}

// MatchingView returns the lower-cased, accent-stripped form of text that
// patterns are matched against. Strippable control characters are omitted.
func MatchingView(text string) string {
	v := buildView(norm.NFKC.String(text))
	return v.text
}

// matchesInsideMarker reports whether re matches a non-empty part of the
// marker short of the whole marker. Such a pattern would rewrite its own
// redactions on every pass.
func matchesInsideMarker(re *regexp.Regexp) bool {
	marker := MatchingView(RedactionMarker)
	for _, loc := range re.FindAllStringIndex(marker, -1) {
		if loc[0] != loc[1] && loc[1]-loc[0] < len(marker) {
			return true
		}
	}
	return false
}

// view is the matching view of a text plus, for every view byte, the byte
// span of the source rune it came from.
type view struct {
	text   string
	starts []int
	ends   []int
}

func buildView(text string) view {
	var b strings.Builder
	b.Grow(len(text))
	starts := make([]int, 0, len(text))
	ends := make([]int, 0, len(text))

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if isStrippable(r) {
			i += size
			continue
		}
		folded := foldRune(r)
		for j := 0; j < len(folded); j++ {
			starts = append(starts, i)
			ends = append(ends, i+size)
		}
		b.WriteString(folded)
		i += size
	}
	return view{text: b.String(), starts: starts, ends: ends}
}

// redact replaces every non-empty match of re in the view of text with the
// marker, editing text through the view's byte map.
func redact(text string, re *regexp.Regexp) (string, int) {
	v := buildView(text)
	locs := re.FindAllStringIndex(v.text, -1)
	if len(locs) == 0 {
		return text, 0
	}

	var b strings.Builder
	last, count := 0, 0
	for _, loc := range locs {
		if loc[0] == loc[1] {
			continue
		}
		start, end := v.starts[loc[0]], v.ends[loc[1]-1]
		if start < last {
			start = last
		}
		b.WriteString(text[last:start])
		b.WriteString(RedactionMarker)
		last = end
		count++
	}
	if count == 0 {
		return text, 0
	}
	b.WriteString(text[last:])
	return b.String(), count
}

func foldRune(r rune) string {
	if r < utf8.RuneSelf {
		return string(unicode.ToLower(r))
	}
	return strings.ToLower(stripAccents(string(r)))
}

// stripAccents removes combining marks after canonical decomposition.
func stripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// isStrippable reports ASCII control characters other than newline and tab.
func isStrippable(r rune) bool {
	return (r < 0x20 && r != '\n' && r != '\t') || r == 0x7f
}

func stripControls(s string) (string, int) {
	removed := 0
	out := strings.Map(func(r rune) rune {
		if isStrippable(r) {
			removed++
			return -1
		}
		return r
	}, s)
	return out, removed
}
