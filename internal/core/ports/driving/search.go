package driving

import (
	"context"

	"github.com/custodia-labs/recall/internal/core/domain"
)

// SearchService provides similarity search to external actors.
type SearchService interface {
	// Search ranks chunks of one collection by cosine similarity to the query.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)

	// SearchWithContext runs Search on a context-augmented query and reranks
	// results by a blend of similarity and context relevance.
	SearchWithContext(
		ctx context.Context, query string, hints domain.SearchContext, opts domain.SearchOptions,
	) ([]domain.SearchResult, error)

	// SimilarDocuments ranks other documents by centroid similarity.
	SimilarDocuments(ctx context.Context, docID string, limit int) ([]domain.SimilarDocument, error)
}
