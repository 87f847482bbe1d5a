package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/recall/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "recall-test-*")
	require.NoError(t, err)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}

	return store, cleanup
}

// testChunks builds n chunks of one document.
func testChunks(docID, collection string, n int) []domain.Chunk {
	chunks := make([]domain.Chunk, n)
	for i := range chunks {
		chunks[i] = domain.Chunk{
			DocID:      docID,
			ChunkID:    i,
			Collection: collection,
			Content:    docID + " chunk",
			Embedding:  []float32{float32(i), 0.5, -1},
			Metadata: domain.ChunkMetadata{
				ChunkIndex: i,
				StartChar:  i * 10,
				EndChar:    i*10 + 10,
				Title:      "Title " + docID,
				Length:     10,
				IngestID:   "ingest-" + docID,
			},
		}
	}
	return chunks
}

// ==================== Store Creation and Initialization Tests ====================

func TestNewStore_ErrorHandling(t *testing.T) {
	// Test with invalid path (should fail to create directory)
	_, err := NewStore("/invalid\x00path")
	assert.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_FileInPlaceOfDirectory(t *testing.T) {
	tempDir := t.TempDir()
	blocker := filepath.Join(tempDir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	_, err := NewStore(filepath.Join(blocker, "data"))
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestNewStore_Success(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "recall-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	// Verify database file was created
	dbPath := filepath.Join(tempDir, DatabaseFile)
	assert.Equal(t, dbPath, store.Path())
	assert.FileExists(t, dbPath)

	err = store.db.Ping()
	assert.NoError(t, err)
}

func TestNewStore_DirectoryCreation(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "recall-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	// Create store in a nested directory that doesn't exist yet
	nestedDir := filepath.Join(tempDir, "nested", "path", "to", "db")
	store, err := NewStore(nestedDir)
	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	assert.DirExists(t, nestedDir)
}

func TestNewStore_Migrations(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	var version int
	err := store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 1, version)

	var name string
	err = store.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='chunks'",
	).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "chunks", name)

	for _, idx := range []string{"idx_chunks_doc_id", "idx_chunks_collection", "idx_chunks_created_at"} {
		var found string
		err := store.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='index' AND name=?", idx,
		).Scan(&found)
		assert.NoError(t, err, "missing index %s", idx)
	}
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	tempDir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	_, err = store.AppendDocument(ctx, testChunks("doc-1", "default", 2))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewStore(tempDir)
	require.NoError(t, err)
	defer reopened.Close()

	chunks, err := reopened.Scan(ctx, domain.ChunkFilter{})
	require.NoError(t, err)
	assert.Len(t, chunks, 2)
}

func TestStore_Close(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Close())

	_, err = store.Scan(context.Background(), domain.ChunkFilter{})
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

// ==================== Chunk Store Tests ====================

func TestAppendDocument_AssignsIDs(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	fixed := time.Date(2026, 3, 1, 12, 30, 45, 999, time.UTC)
	store.now = func() time.Time { return fixed }

	saved, err := store.AppendDocument(context.Background(), testChunks("doc-1", "notes", 3))
	require.NoError(t, err)
	require.Len(t, saved, 3)

	for i, c := range saved {
		assert.Positive(t, c.ID)
		if i > 0 {
			assert.Greater(t, c.ID, saved[i-1].ID)
		}
		assert.Equal(t, fixed.Truncate(time.Second), c.CreatedAt)
	}
}

func TestAppendDocument_RoundTrip(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	in := testChunks("doc-1", "notes", 1)
	in[0].Metadata.Source = map[string]any{"author": "ada"}

	_, err := store.AppendDocument(ctx, in)
	require.NoError(t, err)

	out, err := store.Scan(ctx, domain.ChunkFilter{Collection: "notes"})
	require.NoError(t, err)
	require.Len(t, out, 1)

	got := out[0]
	assert.Equal(t, "doc-1", got.DocID)
	assert.Equal(t, 0, got.ChunkID)
	assert.Equal(t, "notes", got.Collection)
	assert.Equal(t, in[0].Content, got.Content)
	assert.Equal(t, in[0].Embedding, got.Embedding)
	assert.Equal(t, in[0].Metadata.Title, got.Metadata.Title)
	assert.Equal(t, in[0].Metadata.EndChar, got.Metadata.EndChar)
	assert.Equal(t, "ingest-doc-1", got.Metadata.IngestID)
	assert.Equal(t, "ada", got.Metadata.Source["author"])
}

func TestAppendDocument_DefaultCollection(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	saved, err := store.AppendDocument(ctx, testChunks("doc-1", "", 1))
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCollection, saved[0].Collection)

	names, err := store.Collections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.DefaultCollection}, names)
}

func TestAppendDocument_Empty(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	saved, err := store.AppendDocument(context.Background(), nil)
	assert.NoError(t, err)
	assert.Empty(t, saved)
}

func TestAppendDocument_DuplicateContentAppends(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	_, err := store.AppendDocument(ctx, testChunks("doc-1", "default", 2))
	require.NoError(t, err)
	_, err = store.AppendDocument(ctx, testChunks("doc-1", "default", 2))
	require.NoError(t, err)

	stats, err := store.Stats(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, domain.CollectionStats{Chunks: 4, Documents: 1}, stats)
}

func TestAppendDocument_CancelledContextWritesNothing(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.AppendDocument(ctx, testChunks("doc-1", "default", 3))
	assert.ErrorIs(t, err, domain.ErrPersistence)

	chunks, err := store.Scan(context.Background(), domain.ChunkFilter{})
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestAppendDocument_Concurrent(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	var wg sync.WaitGroup
	docs := []string{"doc-a", "doc-b", "doc-c", "doc-d"}
	for _, id := range docs {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := store.AppendDocument(ctx, testChunks(id, "default", 5))
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	all, err := store.Scan(ctx, domain.ChunkFilter{})
	require.NoError(t, err)
	require.Len(t, all, 20)

	// Each document's rows are contiguous and ordered.
	for i := 0; i < len(all); i += 5 {
		for j := 0; j < 5; j++ {
			assert.Equal(t, all[i].DocID, all[i+j].DocID)
			assert.Equal(t, j, all[i+j].ChunkID)
		}
	}
}

func TestScan_Filters(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	_, err := store.AppendDocument(ctx, testChunks("doc-1", "a", 2))
	require.NoError(t, err)
	_, err = store.AppendDocument(ctx, testChunks("doc-2", "b", 3))
	require.NoError(t, err)
	_, err = store.AppendDocument(ctx, testChunks("doc-1", "b", 1))
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter domain.ChunkFilter
		want   int
	}{
		{"all", domain.ChunkFilter{}, 6},
		{"collection a", domain.ChunkFilter{Collection: "a"}, 2},
		{"collection b", domain.ChunkFilter{Collection: "b"}, 4},
		{"doc across collections", domain.ChunkFilter{DocID: "doc-1"}, 3},
		{"doc within collection", domain.ChunkFilter{Collection: "b", DocID: "doc-1"}, 1},
		{"unknown collection", domain.ChunkFilter{Collection: "zzz"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := store.Scan(ctx, tt.filter)
			require.NoError(t, err)
			assert.NotNil(t, chunks)
			assert.Len(t, chunks, tt.want)
			for i := 1; i < len(chunks); i++ {
				assert.Greater(t, chunks[i].ID, chunks[i-1].ID)
			}
		})
	}
}

func TestRecent(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }
	_, err := store.AppendDocument(ctx, testChunks("old", "default", 2))
	require.NoError(t, err)

	store.now = func() time.Time { return base.Add(time.Hour) }
	_, err = store.AppendDocument(ctx, testChunks("new", "default", 2))
	require.NoError(t, err)

	recent, err := store.Recent(ctx, "default", 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "new", recent[0].DocID)
	assert.Equal(t, 1, recent[0].ChunkID)
	assert.Equal(t, "new", recent[1].DocID)
	assert.Equal(t, 0, recent[1].ChunkID)
	assert.Equal(t, "old", recent[2].DocID)

	none, err := store.Recent(ctx, "default", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCollectionsAndStats(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	names, err := store.Collections(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	_, err = store.AppendDocument(ctx, testChunks("doc-1", "zeta", 2))
	require.NoError(t, err)
	_, err = store.AppendDocument(ctx, testChunks("doc-2", "alpha", 1))
	require.NoError(t, err)
	_, err = store.AppendDocument(ctx, testChunks("doc-3", "alpha", 4))
	require.NoError(t, err)

	names, err = store.Collections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, names)

	stats, err := store.Stats(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, domain.CollectionStats{Chunks: 5, Documents: 2}, stats)

	empty, err := store.Stats(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, domain.CollectionStats{}, empty)

	all, err := store.AllStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.CollectionStats{
		"alpha": {Chunks: 5, Documents: 2},
		"zeta":  {Chunks: 2, Documents: 1},
	}, all)
}

func TestDeleteCollection(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	_, err := store.AppendDocument(ctx, testChunks("doc-1", "a", 3))
	require.NoError(t, err)
	_, err = store.AppendDocument(ctx, testChunks("doc-2", "b", 2))
	require.NoError(t, err)

	n, err := store.DeleteCollection(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	remaining, err := store.Scan(ctx, domain.ChunkFilter{})
	require.NoError(t, err)
	assert.Len(t, remaining, 2)

	n, err = store.DeleteCollection(ctx, "a")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = store.DeleteCollection(ctx, "never-existed")
	require.NoError(t, err)
	assert.Zero(t, n)
}

// ==================== Helper Function Tests ====================

func TestFloat32Conversion(t *testing.T) {
	tests := []struct {
		name  string
		input []float32
	}{
		{"nil slice", nil},
		{"single value", []float32{1.5}},
		{"mixed values", []float32{0, -1.25, 3.75, 1e-7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := bytesToFloat32Slice(float32SliceToBytes(tt.input))
			assert.Equal(t, tt.input, out)
		})
	}

	assert.Len(t, float32SliceToBytes([]float32{1, 2}), 8)
}
