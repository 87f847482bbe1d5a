package mcp

import (
	"github.com/custodia-labs/recall/internal/core/ports/driving"
)

// Admitter decides whether a request may proceed.
type Admitter interface {
	Admit() bool
}

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search provides similarity search.
	Search driving.SearchService

	// Ingest adds documents. Optional; add_document is not registered without it.
	Ingest driving.IngestService

	// Collections provides collection administration. Optional.
	Collections driving.CollectionService

	// Admission rate-limits tool calls. Optional.
	Admission Admitter
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
