package driving

import (
	"context"

	"github.com/custodia-labs/recall/internal/core/domain"
)

// CollectionService provides collection administration.
type CollectionService interface {
	// List returns collection names in alphabetical order.
	List(ctx context.Context) ([]string, error)

	// Stats returns chunk and document counts for one collection.
	Stats(ctx context.Context, collection string) (domain.CollectionStats, error)

	// AllStats returns stats for every collection.
	AllStats(ctx context.Context) (map[string]domain.CollectionStats, error)

	// Clear irreversibly removes every chunk in a collection.
	Clear(ctx context.Context, collection string) (int64, error)

	// Recent returns the newest chunks of a collection.
	Recent(ctx context.Context, collection string, limit int) ([]domain.Chunk, error)
}
