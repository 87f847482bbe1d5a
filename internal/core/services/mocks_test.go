package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/recall/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
)

// fakeEmbedder returns fixed vectors by text, falling back to a default.
type fakeEmbedder struct {
	mu       sync.Mutex
	vectors  map[string][]float32
	fallback []float32
	err      error
	queries  []string
}

var _ driven.EmbeddingService = (*fakeEmbedder)(nil)

func newFakeEmbedder(fallback ...float32) *fakeEmbedder {
	return &fakeEmbedder{vectors: make(map[string][]float32), fallback: fallback}
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, text)
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return f.fallback, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := f.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int { return len(f.fallback) }
func (f *fakeEmbedder) ModelName() string { return "fake" }
func (f *fakeEmbedder) Ping(_ context.Context) error { return nil }
func (f *fakeEmbedder) Close() error { return nil }

func (f *fakeEmbedder) lastQuery() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queries) == 0 {
		return ""
	}
	return f.queries[len(f.queries)-1]
}

// stubMonitor reports fixed admission signals.
type stubMonitor struct {
	overloaded bool
	complexity float64
}

func (m stubMonitor) CognitiveOverload() bool { return m.overloaded }
func (m stubMonitor) AssessComplexity(_ string) float64 { return m.complexity }

// failingStore fails every call with a persistence error.
type failingStore struct {
	*memory.ChunkStore
}

var errDisk = errors.New("disk I/O error")

func (failingStore) AppendDocument(context.Context, []domain.Chunk) ([]domain.Chunk, error) {
	return nil, domain.PersistenceFailure("saving chunk", errDisk)
}

func (failingStore) Scan(context.Context, domain.ChunkFilter) ([]domain.Chunk, error) {
	return nil, domain.PersistenceFailure("querying chunks", errDisk)
}

func (failingStore) DeleteCollection(context.Context, string) (int64, error) {
	return 0, domain.PersistenceFailure("deleting collection", errDisk)
}

// blockingStore blocks scans until the context ends.
type blockingStore struct {
	*memory.ChunkStore
}

func (blockingStore) Scan(ctx context.Context, _ domain.ChunkFilter) ([]domain.Chunk, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// seed appends one document's chunks with the given contents and vectors.
func seed(store driven.ChunkStore, docID, collection string, contents []string, vectors [][]float32) {
	chunks := make([]domain.Chunk, len(contents))
	for i := range contents {
		chunks[i] = domain.Chunk{
			DocID:      docID,
			ChunkID:    i,
			Collection: collection,
			Content:    contents[i],
			Embedding:  vectors[i],
			Metadata:   domain.ChunkMetadata{ChunkIndex: i},
		}
	}
	if _, err := store.AppendDocument(context.Background(), chunks); err != nil {
		panic(err)
	}
}
