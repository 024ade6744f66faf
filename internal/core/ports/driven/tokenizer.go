package driven

// Tokenizer measures text length in the units chunk sizes are expressed in.
// Implementations must be deterministic and safe for concurrent use.
type Tokenizer interface {
	// Name identifies the tokenizer (e.g. an encoding name).
	Name() string

	// CountTokens returns the token length of text.
	CountTokens(text string) int
}
