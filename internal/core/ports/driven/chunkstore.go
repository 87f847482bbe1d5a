package driven

import (
	"context"

	"github.com/custodia-labs/recall/internal/core/domain"
)

// ChunkStore persists chunks. It is append-only: there is no update and
// no per-document delete, only AppendDocument and DeleteCollection.
//
// Every storage failure is returned wrapped with domain.ErrPersistence.
type ChunkStore interface {
	// AppendDocument writes all chunks of one document as a single atomic
	// unit and returns them with ID and CreatedAt populated.
	AppendDocument(ctx context.Context, chunks []domain.Chunk) ([]domain.Chunk, error)

	// Scan returns chunks matching the filter in insertion order.
	Scan(ctx context.Context, filter domain.ChunkFilter) ([]domain.Chunk, error)

	// Recent returns the newest chunks of a collection, newest first.
	Recent(ctx context.Context, collection string, limit int) ([]domain.Chunk, error)

	// Collections returns distinct collection names in alphabetical order.
	Collections(ctx context.Context) ([]string, error)

	// Stats returns chunk and document counts for one collection.
	Stats(ctx context.Context, collection string) (domain.CollectionStats, error)

	// AllStats returns stats keyed by collection name.
	AllStats(ctx context.Context) (map[string]domain.CollectionStats, error)

	// DeleteCollection removes every chunk in a collection and returns
	// the number of removed chunks. Unknown collections are a no-op.
	DeleteCollection(ctx context.Context, collection string) (int64, error)

	// Close releases resources.
	Close() error
}
