package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
	"github.com/custodia-labs/recall/internal/core/ports/driving"
	"github.com/custodia-labs/recall/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// Context reranking weights.
const (
	domainBonus     = 0.3
	intentBonus     = 0.4
	topicsBonus     = 0.3
	similarityBlend = 0.7
	relevanceBlend  = 0.3
)

// cancelCheckInterval is how many chunks are ranked between context checks.
const cancelCheckInterval = 256

// SearchService ranks stored chunks by cosine similarity to a query.
type SearchService struct {
	store             driven.ChunkStore
	embedder          driven.EmbeddingService
	monitor           driven.AdmissionMonitor
	cfg               domain.SearchSettings
	defaultCollection string
}

// SearchOption configures a SearchService.
type SearchOption func(*SearchService)

// WithSearchSettings sets limits, threshold, timeout and complexity clamp.
// Non-positive limits keep their defaults.
func WithSearchSettings(cfg domain.SearchSettings) SearchOption {
	return func(s *SearchService) {
		defaults := s.cfg
		s.cfg = cfg
		if s.cfg.Limit <= 0 {
			s.cfg.Limit = defaults.Limit
		}
		if s.cfg.ComplexityLimit <= 0 {
			s.cfg.ComplexityLimit = defaults.ComplexityLimit
		}
		if s.cfg.HighComplexity <= 0 {
			s.cfg.HighComplexity = defaults.HighComplexity
		}
	}
}

// WithDefaultCollection sets the collection searched when none is given.
func WithDefaultCollection(name string) SearchOption {
	return func(s *SearchService) {
		if name != "" {
			s.defaultCollection = name
		}
	}
}

// NewSearchService creates a new search service.
// The monitor parameter is optional (can be nil).
func NewSearchService(
	store driven.ChunkStore,
	embedder driven.EmbeddingService,
	monitor driven.AdmissionMonitor,
	opts ...SearchOption,
) *SearchService {
	s := &SearchService{
		store:             store,
		embedder:          embedder,
		monitor:           monitor,
		cfg:               domain.DefaultSettings().Search,
		defaultCollection: domain.DefaultCollection,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search ranks chunks of one collection by similarity to query.
// Chunks scoring below the threshold are dropped; ties keep insertion order.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.SearchResult{}, nil
	}

	collection := opts.Collection
	if collection == "" {
		collection = s.defaultCollection
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = s.cfg.Limit
	}

	threshold := s.cfg.Threshold
	if opts.Threshold != nil {
		threshold = *opts.Threshold
	}

	if s.monitor != nil {
		complexity := s.monitor.AssessComplexity(query)
		if complexity >= s.cfg.HighComplexity && limit > s.cfg.ComplexityLimit {
			logger.Info("High complexity %.2f, limit %d -> %d", complexity, limit, s.cfg.ComplexityLimit)
			limit = s.cfg.ComplexityLimit
		}
	}
	logger.Debug("Collection: %q, Limit: %d, Threshold: %.2f", collection, limit, threshold)

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		logger.Warn("Query embedding failed: %v", err)
		return nil, fmt.Errorf("embed query: %w", err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	chunks, err := s.store.Scan(ctx, domain.ChunkFilter{Collection: collection})
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	logger.Debug("Scanned %d chunks", len(chunks))

	stopRank := logger.Timer("Rank")
	results, err := rank(ctx, vector, chunks, threshold)
	stopRank()
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	logger.Debug("Above threshold: %d", len(results))

	if len(results) > limit {
		results = results[:limit]
	}
	logger.Info("Final results: %d", len(results))

	return results, nil
}

// SearchWithContext augments the query with the context hints, runs Search,
// then reorders results by 0.7*similarity + 0.3*context relevance.
func (s *SearchService) SearchWithContext(
	ctx context.Context, query string, hints domain.SearchContext, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	augmented := augmentQuery(query, hints)
	logger.Debug("Augmented query: %q", augmented)

	results, err := s.Search(ctx, augmented, opts)
	if err != nil {
		return nil, err
	}

	for i := range results {
		rel := contextRelevance(results[i].Content, hints)
		results[i].ContextRelevance = rel
		results[i].Score = results[i].Similarity*similarityBlend + rel*relevanceBlend
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results, nil
}

// SimilarDocuments ranks every other document by the cosine similarity of
// its centroid embedding to the centroid of docID, across all collections.
func (s *SearchService) SimilarDocuments(
	ctx context.Context, docID string, limit int,
) ([]domain.SimilarDocument, error) {
	logger.Section("Similar Documents")

	if limit <= 0 {
		limit = domain.DefaultSimilarLimit
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	own, err := s.store.Scan(ctx, domain.ChunkFilter{DocID: docID})
	if err != nil {
		return nil, fmt.Errorf("similar documents: %w", err)
	}
	if len(own) == 0 {
		logger.Debug("Unknown document %q", docID)
		return []domain.SimilarDocument{}, nil
	}

	target := centroid(embeddings(own))

	all, err := s.store.Scan(ctx, domain.ChunkFilter{})
	if err != nil {
		return nil, fmt.Errorf("similar documents: %w", err)
	}

	var order []string
	byDoc := make(map[string][][]float32)
	for _, c := range all {
		if c.DocID == docID {
			continue
		}
		if _, seen := byDoc[c.DocID]; !seen {
			order = append(order, c.DocID)
		}
		byDoc[c.DocID] = append(byDoc[c.DocID], c.Embedding)
	}
	logger.Debug("Comparing against %d documents", len(order))

	similar := make([]domain.SimilarDocument, 0, len(order))
	for i, id := range order {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("similar documents: %w", err)
			}
		}
		similar = append(similar, domain.SimilarDocument{
			DocID:      id,
			Similarity: cosineSimilarity(target, centroid(byDoc[id])),
		})
	}

	sort.SliceStable(similar, func(i, j int) bool {
		return similar[i].Similarity > similar[j].Similarity
	})

	if len(similar) > limit {
		similar = similar[:limit]
	}
	return similar, nil
}

func (s *SearchService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, s.cfg.Timeout)
	}
	return context.WithCancel(ctx)
}

// rank scores chunks against vector, drops those below threshold and sorts
// by similarity descending with ties in scan order.
func rank(ctx context.Context, vector []float32, chunks []domain.Chunk, threshold float64) ([]domain.SearchResult, error) {
	results := []domain.SearchResult{}
	for i, c := range chunks {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		sim := cosineSimilarity(vector, c.Embedding)
		if sim < threshold {
			continue
		}
		results = append(results, domain.SearchResult{
			DocID:      c.DocID,
			ChunkID:    c.ChunkID,
			Collection: c.Collection,
			Content:    c.Content,
			Similarity: sim,
			Metadata:   c.Metadata,
			Score:      sim,
			CreatedAt:  c.CreatedAt,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	return results, nil
}

// augmentQuery appends the non-empty context hints to the query text.
func augmentQuery(query string, hints domain.SearchContext) string {
	parts := []string{strings.TrimSpace(query)}
	if hints.Domain != "" {
		parts = append(parts, hints.Domain)
	}
	if hints.UserIntent != "" {
		parts = append(parts, hints.UserIntent)
	}
	parts = append(parts, hints.PreviousTopics...)
	return strings.TrimSpace(strings.Join(parts, " "))
}

// contextRelevance scores content against the hints in [0, 1]. Matching is
// case-insensitive substring search.
func contextRelevance(content string, hints domain.SearchContext) float64 {
	text := strings.ToLower(content)
	contains := func(s string) bool {
		s = strings.ToLower(strings.TrimSpace(s))
		return s != "" && strings.Contains(text, s)
	}

	var rel float64
	if contains(hints.Domain) {
		rel += domainBonus
	}
	if contains(hints.UserIntent) {
		rel += intentBonus
	}
	if n := len(hints.PreviousTopics); n > 0 {
		matched := 0
		for _, topic := range hints.PreviousTopics {
			if contains(topic) {
				matched++
			}
		}
		rel += topicsBonus * float64(matched) / float64(n)
	}

	if rel > 1 {
		rel = 1
	}
	return rel
}

func embeddings(chunks []domain.Chunk) [][]float32 {
	out := make([][]float32, len(chunks))
	for i, c := range chunks {
		out[i] = c.Embedding
	}
	return out
}
