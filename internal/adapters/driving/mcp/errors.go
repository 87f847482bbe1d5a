// Package mcp provides an MCP (Model Context Protocol) server adapter for recall.
// It lets AI assistants search, extend and inspect the local retrieval store.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// ErrRateLimited is returned when admission control rejects a tool call.
var ErrRateLimited = errors.New("mcp: request rate exceeded, retry later")

// ErrIngestDisabled is returned by add_document when no ingest service is wired.
var ErrIngestDisabled = errors.New("mcp: ingestion is not available")
