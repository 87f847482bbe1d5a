package domain

import "time"

// Default search parameters.
const (
	DefaultSearchLimit     = 5
	DefaultSearchThreshold = 0.7
	DefaultSimilarLimit    = 5
)

// SearchOptions configures a similarity search.
type SearchOptions struct {
	// Collection scopes the search. Empty means DefaultCollection.
	Collection string

	// Limit is the maximum number of results. Zero means the default.
	Limit int

	// Threshold is the minimum similarity a result must reach.
	// Nil means the default threshold.
	Threshold *float64
}

// Threshold returns a pointer to v for use in SearchOptions.
func Threshold(v float64) *float64 {
	return &v
}

// SearchContext carries hints used to rerank results.
type SearchContext struct {
	Domain         string
	UserIntent     string
	PreviousTopics []string
}

// IsEmpty reports whether the context carries no hints.
func (c SearchContext) IsEmpty() bool {
	return c.Domain == "" && c.UserIntent == "" && len(c.PreviousTopics) == 0
}

// SearchResult is a single ranked chunk. It is never persisted.
type SearchResult struct {
	DocID      string        `json:"doc_id"`
	ChunkID    int           `json:"chunk_id"`
	Collection string        `json:"collection"`
	Content    string        `json:"content"`
	Similarity float64       `json:"similarity"`
	Metadata   ChunkMetadata `json:"metadata"`

	// ContextRelevance is set by context-aware search only.
	ContextRelevance float64 `json:"context_relevance,omitempty"`

	// Score is the ranking score: Similarity for plain search,
	// the blended score for context-aware search.
	Score float64 `json:"score"`

	CreatedAt time.Time `json:"created_at"`
}

// SimilarDocument is a document-level nearest neighbour.
type SimilarDocument struct {
	DocID      string  `json:"doc_id"`
	Similarity float64 `json:"similarity"`
}
