package driven

import "github.com/custodia-labs/recall/internal/core/domain"

// Chunker splits document content into overlapping segments.
type Chunker interface {
	// Name returns the chunker name for logging.
	Name() string

	// Chunk splits content into ordered segments. Empty content
	// yields no segments.
	Chunk(content, title string) []domain.Segment
}
