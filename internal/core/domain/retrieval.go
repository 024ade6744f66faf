package domain

import "fmt"

// SearchType selects the retrieval strategy.
type SearchType string

// Available retrieval strategies.
const (
	// SearchTypeSimilarity ranks by cosine similarity to the query.
	SearchTypeSimilarity SearchType = "similarity"

	// SearchTypeMMR re-ranks similarity candidates by maximal marginal relevance.
	SearchTypeMMR SearchType = "mmr"

	// SearchTypeScoreThreshold keeps similarity hits above a minimum score.
	SearchTypeScoreThreshold SearchType = "similarity_score_threshold"
)

// IsValid returns true if the search type is recognised.
func (s SearchType) IsValid() bool {
	switch s {
	case SearchTypeSimilarity, SearchTypeMMR, SearchTypeScoreThreshold:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s SearchType) String() string {
	return string(s)
}

// Retriever defaults.
const (
	DefaultFetchK     = 20
	DefaultLambdaMult = 0.5
)

// RetrieverConfig holds the typed options of a retrieval strategy.
type RetrieverConfig struct {
	// SearchType is the strategy (default: similarity).
	SearchType SearchType `toml:"search_type" json:"search_type"`

	// K is the strategy's natural output size. Zero means "use top_k".
	K int `toml:"k" json:"k,omitempty"`

	// FetchK is the number of candidates MMR considers before re-ranking.
	FetchK int `toml:"fetch_k" json:"fetch_k,omitempty"`

	// LambdaMult weights relevance against diversity for MMR, in [0, 1].
	// 1 is pure relevance, 0 is pure diversity. Nil means the default.
	LambdaMult *float64 `toml:"lambda_mult" json:"lambda_mult,omitempty"`

	// ScoreThreshold is the minimum similarity for similarity_score_threshold.
	ScoreThreshold float64 `toml:"score_threshold" json:"score_threshold,omitempty"`
}

// WithDefaults returns a copy with unset fields filled in.
func (c RetrieverConfig) WithDefaults() RetrieverConfig {
	if c.SearchType == "" {
		c.SearchType = SearchTypeSimilarity
	}
	if c.FetchK == 0 {
		c.FetchK = DefaultFetchK
	}
	if c.SearchType == SearchTypeMMR && c.LambdaMult == nil {
		c.LambdaMult = Float(DefaultLambdaMult)
	}
	return c
}

// Lambda returns LambdaMult, or DefaultLambdaMult when it is unset.
func (c RetrieverConfig) Lambda() float64 {
	if c.LambdaMult == nil {
		return DefaultLambdaMult
	}
	return *c.LambdaMult
}

// Float returns a pointer to v, for optional settings.
func Float(v float64) *float64 {
	return &v
}

// Validate checks the configuration after defaults are applied.
func (c RetrieverConfig) Validate() error {
	if !c.SearchType.IsValid() {
		return fmt.Errorf("%w: unknown search type %q", ErrInvalidConfig, c.SearchType)
	}
	if c.K < 0 {
		return fmt.Errorf("%w: k must not be negative", ErrInvalidConfig)
	}
	if c.FetchK <= 0 {
		return fmt.Errorf("%w: fetch_k must be positive", ErrInvalidConfig)
	}
	if l := c.Lambda(); l < 0 || l > 1 {
		return fmt.Errorf("%w: lambda_mult must be within [0, 1]", ErrInvalidConfig)
	}
	if c.SearchType == SearchTypeScoreThreshold && (c.ScoreThreshold < -1 || c.ScoreThreshold > 1) {
		return fmt.Errorf("%w: score_threshold must be within [-1, 1]", ErrInvalidConfig)
	}
	return nil
}

// ScoredChunk is a retrieved chunk with its index id and strategy score.
type ScoredChunk struct {
	ID    int     `json:"id"`
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// RetrievalResult is the ranked output of a retrieval, best first.
type RetrievalResult []ScoredChunk

// Chunks drops ids and scores.
func (r RetrievalResult) Chunks() []Chunk {
	out := make([]Chunk, len(r))
	for i := range r {
		out[i] = r[i].Chunk
	}
	return out
}

// Answer is the query-time output: the ranked chunks and their assembled context.
type Answer struct {
	Question string          `json:"question"`
	Context  string          `json:"context"`
	Results  RetrievalResult `json:"results"`
}
