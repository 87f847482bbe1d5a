package driving

import (
	"context"

	"github.com/custodia-labs/recall/internal/core/domain"
)

// IngestService adds documents to the engine.
type IngestService interface {
	// AddDocument chunks, embeds and stores a document atomically.
	// It returns false without writing anything when admission control
	// reports overload. An empty collection means the default collection.
	AddDocument(ctx context.Context, doc domain.Document, collection string) (bool, error)

	// AddDocuments applies AddDocument to each document in order.
	AddDocuments(ctx context.Context, docs []domain.Document, collection string) []domain.IngestOutcome
}
