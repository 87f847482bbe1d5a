// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - ChunkStore: append-only chunk persistence partitioned by collection
//   - EmbeddingService: maps text to a fixed-length vector
//   - ConfigStore: application configuration
//
// # Optional Interfaces
//
// These can be nil - the engine degrades gracefully:
//
//   - AdmissionMonitor: load signal. Nil means never overloaded, complexity 0.
//   - Normaliser / NormaliserRegistry: only needed by file importers.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
