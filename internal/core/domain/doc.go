// Package domain defines the core entities of the recall retrieval engine.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: RawText or StructuredDocument submitted for ingestion
//   - Chunk: the stored unit, a bounded substring with its embedding
//   - SearchResult: a ranked chunk returned by similarity search
//   - Settings: engine configuration with defaults
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
package domain
