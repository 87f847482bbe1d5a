package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
	"github.com/custodia-labs/recall/internal/core/ports/driving"
	"github.com/custodia-labs/recall/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService chunks, embeds and stores documents.
type IngestService struct {
	store             driven.ChunkStore
	embedder          driven.EmbeddingService
	chunker           driven.Chunker
	monitor           driven.AdmissionMonitor
	defaultCollection string
	newIngestID       func() string
}

// NewIngestService creates a new ingest service.
// The monitor parameter is optional (can be nil), in which case
// ingestion is never deferred.
func NewIngestService(
	store driven.ChunkStore,
	embedder driven.EmbeddingService,
	chunker driven.Chunker,
	monitor driven.AdmissionMonitor,
) *IngestService {
	return &IngestService{
		store:             store,
		embedder:          embedder,
		chunker:           chunker,
		monitor:           monitor,
		defaultCollection: domain.DefaultCollection,
		newIngestID:       uuid.NewString,
	}
}

// SetDefaultCollection sets the collection used when none is given.
func (s *IngestService) SetDefaultCollection(name string) {
	if name != "" {
		s.defaultCollection = name
	}
}

// AddDocument chunks, embeds and stores a document in one atomic append.
// It returns false and writes nothing when admission control reports
// overload. A document without content is accepted as a no-op.
func (s *IngestService) AddDocument(ctx context.Context, doc domain.Document, collection string) (bool, error) {
	logger.Section("Ingest")

	if err := ctx.Err(); err != nil {
		return false, err
	}

	if s.monitor != nil && s.monitor.CognitiveOverload() {
		logger.Warn("Admission deferred: monitor reports overload")
		return false, nil
	}

	if collection == "" {
		collection = s.defaultCollection
	}

	resolved := domain.Resolve(doc)
	docID := domain.DocumentID(doc)
	logger.Debug("Document %s (%d chars) into %q", shortID(docID), len(resolved.Content), collection)

	segments := s.chunker.Chunk(resolved.Content, resolved.Title)
	if len(segments) == 0 {
		logger.Debug("No content to index")
		return true, nil
	}
	logger.Debug("Chunker %s produced %d segments", s.chunker.Name(), len(segments))

	texts := make([]string, len(segments))
	for i, seg := range segments {
		texts[i] = seg.Text
	}

	stopEmbed := logger.Timer("Embedding")
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	stopEmbed()
	if err != nil {
		logger.Warn("Embedding failed: %v", err)
		return false, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(segments) {
		return false, fmt.Errorf("embed chunks: got %d vectors for %d segments", len(vectors), len(segments))
	}

	ingestID := s.newIngestID()
	chunks := make([]domain.Chunk, len(segments))
	for i, seg := range segments {
		meta := seg.Metadata
		meta.IngestID = ingestID
		meta.Source = resolved.Metadata

		chunks[i] = domain.Chunk{
			DocID:      docID,
			ChunkID:    meta.ChunkIndex,
			Collection: collection,
			Content:    seg.Text,
			Embedding:  vectors[i],
			Metadata:   meta,
		}
	}

	if _, err := s.store.AppendDocument(ctx, chunks); err != nil {
		logger.Warn("Append failed: %v", err)
		return false, err
	}

	logger.Info("Indexed %s: %d chunks in %q", shortID(docID), len(chunks), collection)
	return true, nil
}

// AddDocuments applies AddDocument to each document in order.
func (s *IngestService) AddDocuments(
	ctx context.Context, docs []domain.Document, collection string,
) []domain.IngestOutcome {
	outcomes := make([]domain.IngestOutcome, len(docs))
	for i, doc := range docs {
		added, err := s.AddDocument(ctx, doc, collection)
		outcomes[i] = domain.IngestOutcome{
			Index: i,
			DocID: domain.DocumentID(doc),
			Added: added,
			Err:   err,
		}
	}
	return outcomes
}

// shortID abbreviates a document id for log lines.
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
