package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore is an in-memory implementation of driven.ChunkStore.
// Chunks are kept in insertion order; a document is appended under one
// write lock so readers never observe half of it.
type ChunkStore struct {
	mu     sync.RWMutex
	chunks []domain.Chunk
	nextID int64
	now    func() time.Time
}

// NewChunkStore creates a new in-memory chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		nextID: 1,
		now:    time.Now,
	}
}

// AppendDocument stores all chunks of one document.
func (s *ChunkStore) AppendDocument(ctx context.Context, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.PersistenceFailure("appending document", err)
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := s.now().UTC().Truncate(time.Second)
	saved := make([]domain.Chunk, len(chunks))
	for i, c := range chunks {
		if c.Collection == "" {
			c.Collection = domain.DefaultCollection
		}
		c.ID = s.nextID
		c.CreatedAt = createdAt
		c.Embedding = append([]float32(nil), c.Embedding...)
		s.nextID++
		saved[i] = c
	}
	s.chunks = append(s.chunks, saved...)
	return saved, nil
}

// Scan returns chunks matching the filter in insertion order.
func (s *ChunkStore) Scan(ctx context.Context, filter domain.ChunkFilter) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.PersistenceFailure("scanning chunks", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Chunk{}
	for _, c := range s.chunks {
		if filter.Collection != "" && c.Collection != filter.Collection {
			continue
		}
		if filter.DocID != "" && c.DocID != filter.DocID {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// Recent returns the newest chunks of a collection, newest first.
func (s *ChunkStore) Recent(ctx context.Context, collection string, limit int) ([]domain.Chunk, error) {
	chunks, err := s.Scan(ctx, domain.ChunkFilter{Collection: collection})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(chunks, func(i, j int) bool {
		if !chunks[i].CreatedAt.Equal(chunks[j].CreatedAt) {
			return chunks[i].CreatedAt.After(chunks[j].CreatedAt)
		}
		return chunks[i].ID > chunks[j].ID
	})

	if limit < 0 {
		limit = 0
	}
	if len(chunks) > limit {
		chunks = chunks[:limit]
	}
	return chunks, nil
}

// Collections returns distinct collection names in alphabetical order.
func (s *ChunkStore) Collections(ctx context.Context) ([]string, error) {
	all, err := s.AllStats(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Stats returns chunk and document counts for one collection.
func (s *ChunkStore) Stats(ctx context.Context, collection string) (domain.CollectionStats, error) {
	all, err := s.AllStats(ctx)
	if err != nil {
		return domain.CollectionStats{}, err
	}
	return all[collection], nil
}

// AllStats returns stats keyed by collection name.
func (s *ChunkStore) AllStats(ctx context.Context) (map[string]domain.CollectionStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.PersistenceFailure("counting chunks", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make(map[string]map[string]struct{})
	all := make(map[string]domain.CollectionStats)
	for _, c := range s.chunks {
		stats := all[c.Collection]
		stats.Chunks++
		if docs[c.Collection] == nil {
			docs[c.Collection] = make(map[string]struct{})
		}
		if _, seen := docs[c.Collection][c.DocID]; !seen {
			docs[c.Collection][c.DocID] = struct{}{}
			stats.Documents++
		}
		all[c.Collection] = stats
	}
	return all, nil
}

// DeleteCollection removes every chunk in a collection.
func (s *ChunkStore) DeleteCollection(ctx context.Context, collection string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, domain.PersistenceFailure("deleting collection", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.chunks[:0]
	var removed int64
	for _, c := range s.chunks {
		if c.Collection == collection {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	s.chunks = kept
	return removed, nil
}

// Close releases resources.
func (s *ChunkStore) Close() error {
	return nil
}
