package domain

import (
	"fmt"
	"runtime"
	"strings"
)

// ParseFailurePolicy decides what a document parse failure does to a batch.
type ParseFailurePolicy string

// Available parse failure policies.
const (
	// ParseFailureSkip drops the failed document with a diagnostic.
	ParseFailureSkip ParseFailurePolicy = "skip"

	// ParseFailureAbort fails the whole batch.
	ParseFailureAbort ParseFailurePolicy = "abort"
)

// IsValid returns true if the policy is recognised.
func (p ParseFailurePolicy) IsValid() bool {
	return p == ParseFailureSkip || p == ParseFailureAbort
}

// ParserKind selects the PDF text extraction backend.
type ParserKind string

// Available parsers.
const (
	// ParserPDFToText shells out to poppler's pdftotext.
	ParserPDFToText ParserKind = "pdftotext"

	// ParserNative uses the pure-Go PDF reader.
	ParserNative ParserKind = "native"
)

// IsValid returns true if the parser kind is recognised.
func (k ParserKind) IsValid() bool {
	return k == ParserPDFToText || k == ParserNative
}

// AIProvider identifies an embedding provider.
type AIProvider string

// Available embedding providers.
const (
	// AIProviderOpenAI is the OpenAI (or compatible) embeddings API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderHash is the deterministic local hashing embedder.
	AIProviderHash AIProvider = "hash"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOpenAI, AIProviderOllama, AIProviderHash:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// Defaults used when a setting is absent.
const (
	DefaultChunkSize         = 500
	DefaultChunkOverlap      = 50
	DefaultTopK              = 4
	DefaultEmbeddingModel    = "text-embedding-3-small"
	DefaultEmbeddingBatch    = 64
	DefaultAPIKeyEnv         = "OPENAI_API_KEY"
	DefaultIndexPath         = "data/index.gob.gz"
	DefaultServerAddr        = ":8080"
	DefaultRequestsPerMinute = 30
	DefaultTimeoutSecs       = 60
)

// DefaultSeparators split on paragraphs, then lines, then words, then characters.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// DefaultSuspiciousPatterns are common prompt-injection phrasings.
var DefaultSuspiciousPatterns = []string{
	`ignore (all )?(the )?(previous|prior|above) instructions`,
	`disregard (all )?(the )?(previous|prior|above) (instructions|prompts?)`,
	`forget (all )?(your|the) (previous )?instructions`,
	`you are now (a|an|in) `,
	`(reveal|print|show) (your|the) system prompt`,
	`<\|?im_(start|end)\|?>`,
}

// CorpusSettings configures which documents are ingested and where the index lives.
type CorpusSettings struct {
	// Paths are PDF paths or doublestar globs, in ingestion order.
	Paths []string `toml:"paths"`

	// Filenames maps a document path to its human-readable name.
	Filenames map[string]string `toml:"filenames"`

	// IndexPath is the file the vector index is saved to and loaded from.
	IndexPath string `toml:"index_path"`

	// Parser selects the PDF backend.
	Parser ParserKind `toml:"parser"`

	// OnParseError is the parse failure policy.
	OnParseError ParseFailurePolicy `toml:"on_parse_error"`

	// Workers bounds concurrent document processing.
	Workers int `toml:"workers"`
}

// ChunkingSettings configures splitting and sanitization.
type ChunkingSettings struct {
	ChunkSize          int      `toml:"chunk_size"`
	ChunkOverlap       int      `toml:"chunk_overlap"`
	Separators         []string `toml:"separators"`
	SuspiciousPatterns []string `toml:"suspicious_patterns"`
}

// EmbeddingSettings configures the embedding capability and its tokenizer.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider `toml:"provider"`

	// Model is the embedding model identifier. It also selects the tokenizer.
	Model string `toml:"model"`

	// Tokenizer overrides the tokenizer: a tiktoken encoding name or "words".
	Tokenizer string `toml:"tokenizer"`

	// BaseURL is the API endpoint.
	BaseURL string `toml:"base_url"`

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `toml:"api_key_env"`

	// Dimensions overrides the model's vector length where supported.
	Dimensions int `toml:"dimensions"`

	// BatchSize is the number of texts per embedding call.
	BatchSize int `toml:"batch_size"`

	// RequestsPerSecond throttles embedding calls. Zero disables throttling.
	RequestsPerSecond float64 `toml:"requests_per_second"`

	// TimeoutSecs bounds a single embedding request.
	TimeoutSecs int `toml:"timeout_secs"`
}

// RetrieverSettings configures query-time retrieval.
type RetrieverSettings struct {
	Config RetrieverConfig `toml:"config"`
	TopK   int             `toml:"top_k"`
}

// ServerSettings configures the HTTP query API.
type ServerSettings struct {
	Addr              string `toml:"addr"`
	RequestsPerMinute int    `toml:"requests_per_minute"`
}

// Settings is the full application configuration.
type Settings struct {
	Corpus    CorpusSettings    `toml:"corpus"`
	Chunking  ChunkingSettings  `toml:"chunking"`
	Embedding EmbeddingSettings `toml:"embedding"`
	Retriever RetrieverSettings `toml:"retriever"`
	Server    ServerSettings    `toml:"server"`
}

// DefaultSettings returns settings with every default applied.
func DefaultSettings() Settings {
	var s Settings
	s.ApplyDefaults()
	return s
}

// ApplyDefaults fills unset fields. Separators and patterns are only
// defaulted when nil so an explicit empty list is kept.
func (s *Settings) ApplyDefaults() {
	if s.Corpus.IndexPath == "" {
		s.Corpus.IndexPath = DefaultIndexPath
	}
	if s.Corpus.Parser == "" {
		s.Corpus.Parser = ParserPDFToText
	}
	if s.Corpus.OnParseError == "" {
		s.Corpus.OnParseError = ParseFailureSkip
	}
	if s.Corpus.Workers == 0 {
		s.Corpus.Workers = runtime.NumCPU()
	}
	if s.Chunking.ChunkSize == 0 {
		s.Chunking.ChunkSize = DefaultChunkSize
	}
	if s.Chunking.ChunkOverlap == 0 && s.Chunking.ChunkSize >= DefaultChunkOverlap*2 {
		s.Chunking.ChunkOverlap = DefaultChunkOverlap
	}
	if s.Chunking.Separators == nil {
		s.Chunking.Separators = append([]string(nil), DefaultSeparators...)
	}
	if s.Chunking.SuspiciousPatterns == nil {
		s.Chunking.SuspiciousPatterns = append([]string(nil), DefaultSuspiciousPatterns...)
	}
	if s.Embedding.Provider == "" {
		s.Embedding.Provider = AIProviderOpenAI
	}
	if s.Embedding.Model == "" {
		s.Embedding.Model = DefaultEmbeddingModel
	}
	if s.Embedding.APIKeyEnv == "" {
		s.Embedding.APIKeyEnv = DefaultAPIKeyEnv
	}
	if s.Embedding.BatchSize == 0 {
		s.Embedding.BatchSize = DefaultEmbeddingBatch
	}
	if s.Embedding.TimeoutSecs == 0 {
		s.Embedding.TimeoutSecs = DefaultTimeoutSecs
	}
	s.Retriever.Config = s.Retriever.Config.WithDefaults()
	if s.Retriever.TopK == 0 {
		s.Retriever.TopK = DefaultTopK
	}
	if s.Server.Addr == "" {
		s.Server.Addr = DefaultServerAddr
	}
	if s.Server.RequestsPerMinute == 0 {
		s.Server.RequestsPerMinute = DefaultRequestsPerMinute
	}
}

// Validate reports every configuration problem in one error wrapping ErrInvalidConfig.
// Regular expressions are checked where they are compiled, by the sanitizer.
func (s *Settings) Validate() error {
	var problems []string

	if !s.Corpus.Parser.IsValid() {
		problems = append(problems, fmt.Sprintf("corpus.parser %q is not one of pdftotext, native", s.Corpus.Parser))
	}
	if !s.Corpus.OnParseError.IsValid() {
		problems = append(problems, fmt.Sprintf("corpus.on_parse_error %q is not one of skip, abort", s.Corpus.OnParseError))
	}
	if s.Corpus.Workers < 0 {
		problems = append(problems, "corpus.workers must not be negative")
	}
	if s.Corpus.IndexPath == "" {
		problems = append(problems, "corpus.index_path is required")
	}
	if s.Chunking.ChunkSize <= 0 {
		problems = append(problems, "chunking.chunk_size must be positive")
	}
	if s.Chunking.ChunkOverlap < 0 {
		problems = append(problems, "chunking.chunk_overlap must not be negative")
	}
	if s.Chunking.ChunkOverlap > s.Chunking.ChunkSize {
		problems = append(problems, fmt.Sprintf("chunking.chunk_overlap (%d) exceeds chunk_size (%d)",
			s.Chunking.ChunkOverlap, s.Chunking.ChunkSize))
	}
	if !s.Embedding.Provider.IsValid() {
		problems = append(problems, fmt.Sprintf("embedding.provider %q is not one of openai, ollama, hash", s.Embedding.Provider))
	}
	if s.Embedding.BatchSize <= 0 {
		problems = append(problems, "embedding.batch_size must be positive")
	}
	if s.Embedding.RequestsPerSecond < 0 {
		problems = append(problems, "embedding.requests_per_second must not be negative")
	}
	if s.Retriever.TopK <= 0 {
		problems = append(problems, "retriever.top_k must be positive")
	}
	if err := s.Retriever.Config.Validate(); err != nil {
		problems = append(problems, strings.TrimPrefix(err.Error(), ErrInvalidConfig.Error()+": "))
	}
	if s.Server.RequestsPerMinute < 0 {
		problems = append(problems, "server.requests_per_minute must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// FilenameFor returns the mapped filename for path and whether it was mapped.
func (c CorpusSettings) FilenameFor(path string) (string, bool) {
	name, ok := c.Filenames[path]
	if !ok || name == "" {
		return UnknownFilename, false
	}
	return name, true
}
