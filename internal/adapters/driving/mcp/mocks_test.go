package mcp

import (
	"context"

	"github.com/custodia-labs/recall/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results   []domain.SearchResult
	similar   []domain.SimilarDocument
	err       error
	lastQuery string
	lastOpts  domain.SearchOptions
	lastHints domain.SearchContext
	lastLimit int
}

func (m *mockSearchService) Search(
	_ context.Context,
	query string,
	opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	m.lastQuery = query
	m.lastOpts = opts
	return m.results, m.err
}

func (m *mockSearchService) SearchWithContext(
	_ context.Context,
	query string,
	hints domain.SearchContext,
	opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	m.lastQuery = query
	m.lastHints = hints
	m.lastOpts = opts
	return m.results, m.err
}

func (m *mockSearchService) SimilarDocuments(
	_ context.Context,
	docID string,
	limit int,
) ([]domain.SimilarDocument, error) {
	m.lastQuery = docID
	m.lastLimit = limit
	return m.similar, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	added          bool
	err            error
	lastDoc        domain.Document
	lastCollection string
}

func (m *mockIngestService) AddDocument(_ context.Context, doc domain.Document, collection string) (bool, error) {
	m.lastDoc = doc
	m.lastCollection = collection
	return m.added, m.err
}

func (m *mockIngestService) AddDocuments(
	ctx context.Context,
	docs []domain.Document,
	collection string,
) []domain.IngestOutcome {
	outcomes := make([]domain.IngestOutcome, len(docs))
	for i, doc := range docs {
		added, err := m.AddDocument(ctx, doc, collection)
		outcomes[i] = domain.IngestOutcome{Index: i, DocID: domain.DocumentID(doc), Added: added, Err: err}
	}
	return outcomes
}

// mockCollectionService is a mock implementation of driving.CollectionService.
type mockCollectionService struct {
	names     []string
	stats     map[string]domain.CollectionStats
	recent    []domain.Chunk
	err       error
	lastName  string
	lastLimit int
	cleared   int64
}

func (m *mockCollectionService) List(_ context.Context) ([]string, error) {
	return m.names, m.err
}

func (m *mockCollectionService) Stats(_ context.Context, collection string) (domain.CollectionStats, error) {
	m.lastName = collection
	return m.stats[collection], m.err
}

func (m *mockCollectionService) AllStats(_ context.Context) (map[string]domain.CollectionStats, error) {
	return m.stats, m.err
}

func (m *mockCollectionService) Clear(_ context.Context, collection string) (int64, error) {
	m.lastName = collection
	return m.cleared, m.err
}

func (m *mockCollectionService) Recent(_ context.Context, collection string, limit int) ([]domain.Chunk, error) {
	m.lastName = collection
	m.lastLimit = limit
	return m.recent, m.err
}

// stubAdmitter admits a fixed number of calls.
type stubAdmitter struct {
	remaining int
}

func (a *stubAdmitter) Admit() bool {
	if a.remaining <= 0 {
		return false
	}
	a.remaining--
	return true
}
