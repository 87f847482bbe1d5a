package services

import (
	"context"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
	"github.com/custodia-labs/recall/internal/core/ports/driving"
	"github.com/custodia-labs/recall/internal/logger"
)

// Ensure CollectionService implements the interface.
var _ driving.CollectionService = (*CollectionService)(nil)

// DefaultRecentLimit is the number of chunks Recent returns when no limit is given.
const DefaultRecentLimit = 10

// CollectionService provides collection listing, statistics and clearing.
// An empty collection name refers to the default collection.
type CollectionService struct {
	store             driven.ChunkStore
	defaultCollection string
}

// NewCollectionService creates a new collection service.
func NewCollectionService(store driven.ChunkStore, defaultCollection string) *CollectionService {
	if defaultCollection == "" {
		defaultCollection = domain.DefaultCollection
	}
	return &CollectionService{
		store:             store,
		defaultCollection: defaultCollection,
	}
}

// List returns collection names in alphabetical order.
func (s *CollectionService) List(ctx context.Context) ([]string, error) {
	return s.store.Collections(ctx)
}

// Stats returns chunk and document counts for one collection.
func (s *CollectionService) Stats(ctx context.Context, collection string) (domain.CollectionStats, error) {
	return s.store.Stats(ctx, s.name(collection))
}

// AllStats returns stats for every collection.
func (s *CollectionService) AllStats(ctx context.Context) (map[string]domain.CollectionStats, error) {
	return s.store.AllStats(ctx)
}

// Clear irreversibly removes every chunk in a collection.
// Clearing an empty or unknown collection is a no-op.
func (s *CollectionService) Clear(ctx context.Context, collection string) (int64, error) {
	collection = s.name(collection)
	n, err := s.store.DeleteCollection(ctx, collection)
	if err != nil {
		return 0, err
	}
	logger.Info("Cleared %q: %d chunks removed", collection, n)
	return n, nil
}

// Recent returns the newest chunks of a collection.
func (s *CollectionService) Recent(ctx context.Context, collection string, limit int) ([]domain.Chunk, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return s.store.Recent(ctx, s.name(collection), limit)
}

func (s *CollectionService) name(collection string) string {
	if collection == "" {
		return s.defaultCollection
	}
	return collection
}
