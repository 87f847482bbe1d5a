package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/recall/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query      string   `json:"query" jsonschema:"the search query"`
	Collection string   `json:"collection,omitempty" jsonschema:"collection to search (default collection when empty)"`
	Limit      int      `json:"limit,omitempty" jsonschema:"maximum number of results to return"`
	Threshold  *float64 `json:"threshold,omitempty" jsonschema:"minimum cosine similarity between -1 and 1"`
}

// ContextSearchInput is the input schema for the search_with_context tool.
type ContextSearchInput struct {
	Query      string   `json:"query" jsonschema:"the search query"`
	Collection string   `json:"collection,omitempty" jsonschema:"collection to search (default collection when empty)"`
	Limit      int      `json:"limit,omitempty" jsonschema:"maximum number of results to return"`
	Threshold  *float64 `json:"threshold,omitempty" jsonschema:"minimum cosine similarity between -1 and 1"`
	Domain     string   `json:"domain,omitempty" jsonschema:"subject area used to rerank results"`
	Intent     string   `json:"intent,omitempty" jsonschema:"what the user is trying to achieve"`
	Topics     []string `json:"topics,omitempty" jsonschema:"topics from earlier in the conversation"`
}

// SearchOutput is the output schema for the search tools.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	DocumentID       string  `json:"document_id"`
	ChunkID          int     `json:"chunk_id"`
	Collection       string  `json:"collection"`
	Title            string  `json:"title,omitempty"`
	Content          string  `json:"content"`
	Similarity       float64 `json:"similarity"`
	ContextRelevance float64 `json:"context_relevance,omitempty"`
	Score            float64 `json:"score"`
}

// AddDocumentInput is the input schema for the add_document tool.
type AddDocumentInput struct {
	Content    string         `json:"content" jsonschema:"the document text"`
	Title      string         `json:"title,omitempty" jsonschema:"optional document title"`
	Metadata   map[string]any `json:"metadata,omitempty" jsonschema:"optional metadata stored with every chunk"`
	Collection string         `json:"collection,omitempty" jsonschema:"target collection (default collection when empty)"`
}

// AddDocumentOutput is the output schema for the add_document tool.
type AddDocumentOutput struct {
	DocumentID string `json:"document_id"`
	Added      bool   `json:"added"`
	Message    string `json:"message,omitempty"`
}

// SimilarInput is the input schema for the similar_documents tool.
type SimilarInput struct {
	DocumentID string `json:"document_id" jsonschema:"id of the reference document"`
	Limit      int    `json:"limit,omitempty" jsonschema:"maximum number of documents to return"`
}

// SimilarOutput is the output schema for the similar_documents tool.
type SimilarOutput struct {
	Documents []domain.SimilarDocument `json:"documents"`
}

// CollectionsInput is the (empty) input schema for the collections tool.
type CollectionsInput struct{}

// CollectionsOutput is the output schema for the collections tool.
type CollectionsOutput struct {
	Collections []string `json:"collections"`
}

// StatsInput is the input schema for the collection_stats tool.
type StatsInput struct {
	Collection string `json:"collection,omitempty" jsonschema:"collection name (default collection when empty)"`
}

// StatsOutput is the output schema for the collection_stats tool.
type StatsOutput struct {
	Collection string `json:"collection,omitempty"`
	Chunks     int    `json:"chunks"`
	Documents  int    `json:"documents"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Find stored text chunks similar to a query",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_with_context",
		Description: "Search, then rerank results using domain, intent and topic hints",
	}, s.handleSearchWithContext)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "similar_documents",
		Description: "List documents whose content is closest to a stored document",
	}, s.handleSimilar)

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "add_document",
			Description: "Chunk, embed and store a document",
		}, s.handleAddDocument)
	}

	if s.ports.Collections != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "collections",
			Description: "List collection names",
		}, s.handleCollections)

		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "collection_stats",
			Description: "Count chunks and documents in a collection",
		}, s.handleCollectionStats)
	}
}

func searchOptions(in SearchInput) domain.SearchOptions {
	return domain.SearchOptions{
		Collection: in.Collection,
		Limit:      in.Limit,
		Threshold:  in.Threshold,
	}
}

func toSearchOutput(results []domain.SearchResult) SearchOutput {
	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		r := &results[i]
		output.Results[i] = SearchResultOutput{
			DocumentID:       r.DocID,
			ChunkID:          r.ChunkID,
			Collection:       r.Collection,
			Title:            r.Metadata.Title,
			Content:          r.Content,
			Similarity:       r.Similarity,
			ContextRelevance: r.ContextRelevance,
			Score:            r.Score,
		}
	}
	return output
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	if err := s.admit("search"); err != nil {
		return nil, SearchOutput{}, err
	}

	results, err := s.ports.Search.Search(ctx, input.Query, searchOptions(input))
	if err != nil {
		return nil, SearchOutput{}, err
	}
	return nil, toSearchOutput(results), nil
}

// handleSearchWithContext handles the search_with_context tool invocation.
func (s *Server) handleSearchWithContext(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ContextSearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	if err := s.admit("search_with_context"); err != nil {
		return nil, SearchOutput{}, err
	}

	hints := domain.SearchContext{
		Domain:         input.Domain,
		UserIntent:     input.Intent,
		PreviousTopics: input.Topics,
	}
	results, err := s.ports.Search.SearchWithContext(ctx, input.Query, hints, domain.SearchOptions{
		Collection: input.Collection,
		Limit:      input.Limit,
		Threshold:  input.Threshold,
	})
	if err != nil {
		return nil, SearchOutput{}, err
	}
	return nil, toSearchOutput(results), nil
}

// handleSimilar handles the similar_documents tool invocation.
func (s *Server) handleSimilar(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SimilarInput,
) (*mcp.CallToolResult, SimilarOutput, error) {
	if err := s.admit("similar_documents"); err != nil {
		return nil, SimilarOutput{}, err
	}

	docs, err := s.ports.Search.SimilarDocuments(ctx, input.DocumentID, input.Limit)
	if err != nil {
		return nil, SimilarOutput{}, err
	}
	if docs == nil {
		docs = []domain.SimilarDocument{}
	}
	return nil, SimilarOutput{Documents: docs}, nil
}

// handleAddDocument handles the add_document tool invocation.
func (s *Server) handleAddDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AddDocumentInput,
) (*mcp.CallToolResult, AddDocumentOutput, error) {
	if s.ports.Ingest == nil {
		return nil, AddDocumentOutput{}, ErrIngestDisabled
	}
	if err := s.admit("add_document"); err != nil {
		return nil, AddDocumentOutput{}, err
	}

	var doc domain.Document = domain.RawText(input.Content)
	if input.Title != "" || len(input.Metadata) > 0 {
		doc = domain.StructuredDocument{
			Content:  input.Content,
			Title:    input.Title,
			Metadata: input.Metadata,
		}
	}

	output := AddDocumentOutput{DocumentID: domain.DocumentID(doc)}
	added, err := s.ports.Ingest.AddDocument(ctx, doc, input.Collection)
	if err != nil {
		return nil, AddDocumentOutput{}, err
	}
	output.Added = added
	if !added {
		output.Message = "engine overloaded, document deferred; retry later"
	}
	return nil, output, nil
}

// handleCollections handles the collections tool invocation.
func (s *Server) handleCollections(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ CollectionsInput,
) (*mcp.CallToolResult, CollectionsOutput, error) {
	if err := s.admit("collections"); err != nil {
		return nil, CollectionsOutput{}, err
	}

	names, err := s.ports.Collections.List(ctx)
	if err != nil {
		return nil, CollectionsOutput{}, err
	}
	if names == nil {
		names = []string{}
	}
	return nil, CollectionsOutput{Collections: names}, nil
}

// handleCollectionStats handles the collection_stats tool invocation.
func (s *Server) handleCollectionStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input StatsInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	if err := s.admit("collection_stats"); err != nil {
		return nil, StatsOutput{}, err
	}

	stats, err := s.ports.Collections.Stats(ctx, input.Collection)
	if err != nil {
		return nil, StatsOutput{}, err
	}
	return nil, StatsOutput{Collection: input.Collection, Chunks: stats.Chunks, Documents: stats.Documents}, nil
}
