package domain

import "time"

// DefaultCollection is the collection used when none is given.
const DefaultCollection = "default"

// Chunk is the atomic stored unit: a bounded substring of a document
// together with its embedding. Chunks are immutable once written.
type Chunk struct {
	// ID is the storage row id, assigned on append.
	ID int64

	// DocID is the deterministic id of the source document.
	DocID string

	// ChunkID is the 0-based sequence number within the document.
	ChunkID int

	// Collection is the namespace the chunk belongs to.
	Collection string

	// Content is the chunk text.
	Content string

	// Embedding is the vector representation of Content.
	Embedding []float32

	// Metadata describes where the chunk came from.
	Metadata ChunkMetadata

	// CreatedAt is when the chunk was written, at second precision.
	CreatedAt time.Time
}

// ChunkMetadata is persisted as a JSON key/value map next to each chunk.
type ChunkMetadata struct {
	// ChunkIndex mirrors Chunk.ChunkID.
	ChunkIndex int `json:"chunk_index"`

	// StartChar and EndChar are character offsets of the chunk window
	// in the source content.
	StartChar int `json:"start_char"`
	EndChar   int `json:"end_char"`

	// Title is the source document title, if any.
	Title string `json:"title,omitempty"`

	// Length is the character length of the stored content.
	Length int `json:"length"`

	// IngestID identifies the AddDocument call that wrote the chunk.
	IngestID string `json:"ingest_id,omitempty"`

	// Source holds the structured document's own metadata.
	Source map[string]any `json:"source,omitempty"`
}

// Segment is one piece of chunker output before embedding.
type Segment struct {
	Text     string
	Metadata ChunkMetadata
}

// ChunkFilter scopes a chunk scan. Empty fields match everything.
type ChunkFilter struct {
	Collection string
	DocID      string
}

// CollectionStats summarises one collection.
type CollectionStats struct {
	Chunks    int `json:"chunks"`
	Documents int `json:"documents"`
}

// IngestOutcome reports the result of one document in a batch ingestion.
type IngestOutcome struct {
	// Index is the position of the document in the batch.
	Index int

	// DocID is the computed document id.
	DocID string

	// Added is false when admission control deferred the document
	// or an error occurred.
	Added bool

	// Err is non-nil when ingestion failed.
	Err error
}
