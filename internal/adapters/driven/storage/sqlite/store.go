package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/recall/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
)

// DatabaseFile is the file name of the chunk database inside the data directory.
const DatabaseFile = "recall.db"

// Ensure Store implements the interface.
var _ driven.ChunkStore = (*Store)(nil)

// Store is a SQLite-backed chunk store.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.recall/data/recall.db.
// Failures are reported as domain.ErrConfiguration.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, domain.ConfigurationFailure("getting home directory", err)
		}
		dataDir = filepath.Join(home, ".recall", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, domain.ConfigurationFailure("creating data directory", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, domain.ConfigurationFailure("opening database", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, domain.ConfigurationFailure("opening database", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
		now:  time.Now,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, domain.ConfigurationFailure("running migrations", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// AppendDocument stores all chunks of one document in a single transaction.
func (s *Store) AppendDocument(ctx context.Context, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, domain.PersistenceFailure("beginning transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (doc_id, chunk_id, collection, content, embedding, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, domain.PersistenceFailure("preparing statement", err)
	}
	defer stmt.Close()

	createdAt := s.now().UTC().Truncate(time.Second)
	saved := make([]domain.Chunk, len(chunks))

	for i, chunk := range chunks {
		if chunk.Collection == "" {
			chunk.Collection = domain.DefaultCollection
		}

		metadataJSON, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return nil, domain.PersistenceFailure("marshalling chunk metadata", err)
		}

		res, err := stmt.ExecContext(ctx, chunk.DocID, chunk.ChunkID, chunk.Collection,
			chunk.Content, float32SliceToBytes(chunk.Embedding), string(metadataJSON), createdAt.Unix())
		if err != nil {
			return nil, domain.PersistenceFailure("saving chunk", err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return nil, domain.PersistenceFailure("reading chunk id", err)
		}

		chunk.ID = id
		chunk.CreatedAt = createdAt
		saved[i] = chunk
	}

	if err := tx.Commit(); err != nil {
		return nil, domain.PersistenceFailure("committing transaction", err)
	}
	return saved, nil
}

// Scan returns chunks matching the filter in insertion order.
func (s *Store) Scan(ctx context.Context, filter domain.ChunkFilter) ([]domain.Chunk, error) {
	var (
		where []string
		args  []any
	)
	if filter.Collection != "" {
		where = append(where, "collection = ?")
		args = append(args, filter.Collection)
	}
	if filter.DocID != "" {
		where = append(where, "doc_id = ?")
		args = append(args, filter.DocID)
	}

	query := `SELECT id, doc_id, chunk_id, collection, content, embedding, metadata, created_at FROM chunks`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	return s.queryChunks(ctx, query, args...)
}

// Recent returns the newest chunks of a collection, newest first.
func (s *Store) Recent(ctx context.Context, collection string, limit int) ([]domain.Chunk, error) {
	if limit <= 0 {
		return []domain.Chunk{}, nil
	}
	return s.queryChunks(ctx, `
		SELECT id, doc_id, chunk_id, collection, content, embedding, metadata, created_at
		FROM chunks WHERE collection = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, collection, limit)
}

// Collections returns distinct collection names in alphabetical order.
func (s *Store) Collections(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT collection FROM chunks ORDER BY collection`)
	if err != nil {
		return nil, domain.PersistenceFailure("querying collections", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, domain.PersistenceFailure("scanning collection", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.PersistenceFailure("iterating collections", err)
	}
	return names, nil
}

// Stats returns chunk and document counts for one collection.
func (s *Store) Stats(ctx context.Context, collection string) (domain.CollectionStats, error) {
	var stats domain.CollectionStats
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT doc_id) FROM chunks WHERE collection = ?
	`, collection)
	if err := row.Scan(&stats.Chunks, &stats.Documents); err != nil {
		return domain.CollectionStats{}, domain.PersistenceFailure("counting chunks", err)
	}
	return stats, nil
}

// AllStats returns stats keyed by collection name.
func (s *Store) AllStats(ctx context.Context) (map[string]domain.CollectionStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT collection, COUNT(*), COUNT(DISTINCT doc_id)
		FROM chunks GROUP BY collection ORDER BY collection
	`)
	if err != nil {
		return nil, domain.PersistenceFailure("querying stats", err)
	}
	defer rows.Close()

	all := make(map[string]domain.CollectionStats)
	for rows.Next() {
		var (
			name  string
			stats domain.CollectionStats
		)
		if err := rows.Scan(&name, &stats.Chunks, &stats.Documents); err != nil {
			return nil, domain.PersistenceFailure("scanning stats", err)
		}
		all[name] = stats
	}
	if err := rows.Err(); err != nil {
		return nil, domain.PersistenceFailure("iterating stats", err)
	}
	return all, nil
}

// DeleteCollection removes every chunk in a collection.
func (s *Store) DeleteCollection(ctx context.Context, collection string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE collection = ?`, collection)
	if err != nil {
		return 0, domain.PersistenceFailure("deleting collection", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, domain.PersistenceFailure("counting deleted chunks", err)
	}
	return n, nil
}

func (s *Store) queryChunks(ctx context.Context, query string, args ...any) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.PersistenceFailure("querying chunks", err)
	}
	defer rows.Close()

	chunks := []domain.Chunk{}
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, domain.PersistenceFailure("scanning chunk", err)
		}
		chunks = append(chunks, *chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, domain.PersistenceFailure("iterating chunks", err)
	}
	return chunks, nil
}

// ==================== Helper Functions ====================

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// scanChunk scans a chunk from *sql.Rows.
func scanChunk(rows *sql.Rows) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var embeddingBlob []byte
	var metadataJSON sql.NullString
	var createdAt int64

	if err := rows.Scan(&chunk.ID, &chunk.DocID, &chunk.ChunkID, &chunk.Collection,
		&chunk.Content, &embeddingBlob, &metadataJSON, &createdAt); err != nil {
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	chunk.Embedding = bytesToFloat32Slice(embeddingBlob)
	chunk.CreatedAt = time.Unix(createdAt, 0).UTC()

	if metadataJSON.Valid && metadataJSON.String != "" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &chunk.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling chunk metadata: %w", err)
		}
	}

	return &chunk, nil
}
