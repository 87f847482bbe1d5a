// Package chunker provides a word-boundary-aware text chunker.
package chunker

import (
	"strings"
	"unicode"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 500

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 50

// minBoundaryRatio is the share of chunkSize that must be kept when
// moving a boundary back to whitespace.
const minBoundaryRatio = 0.8

// Processor splits document content into overlapping chunks.
// Sizes and offsets count characters (runes), not bytes.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured chunk size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Chunk splits content into segments of about chunkSize characters.
//
// When a window ends before the end of content, the boundary moves back to
// the nearest whitespace as long as at least 80% of chunkSize is kept;
// otherwise the hard boundary stands. Whitespace-only segments are dropped
// and do not consume an index.
func (p *Processor) Chunk(content, title string) []domain.Segment {
	if content == "" {
		return nil
	}

	runes := []rune(content)
	total := len(runes)
	minKeep := int(float64(p.chunkSize) * minBoundaryRatio)

	segments := make([]domain.Segment, 0, total/(p.chunkSize-p.overlap)+1)
	start := 0

	for start < total {
		end := start + p.chunkSize
		if end > total {
			end = total
		}

		if end < total {
			if boundary := lastSpace(runes, start, end); boundary-start >= minKeep {
				end = boundary
			}
		}

		text := strings.TrimSpace(string(runes[start:end]))
		if text != "" {
			index := len(segments)
			segments = append(segments, domain.Segment{
				Text: text,
				Metadata: domain.ChunkMetadata{
					ChunkIndex: index,
					StartChar:  start,
					EndChar:    end,
					Title:      title,
					Length:     len([]rune(text)),
				},
			})
		}

		if end >= total {
			break
		}

		next := end - p.overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return segments
}

// lastSpace returns the index of the last whitespace rune in runes[start+1:end+1],
// or -1 when there is none. A whitespace rune at end itself counts, since
// cutting there already falls on a word boundary.
func lastSpace(runes []rune, start, end int) int {
	for i := end; i > start; i-- {
		if unicode.IsSpace(runes[i]) {
			return i
		}
	}
	return -1
}
