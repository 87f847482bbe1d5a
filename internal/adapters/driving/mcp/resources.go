package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for recall resources.
	uriScheme = "recall://"

	// recentResourceLimit is the number of chunks the recent resource returns.
	recentResourceLimit = 20
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	if s.ports.Collections == nil {
		return
	}

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "collections",
		Name:        "collections",
		Description: "Collections with chunk and document counts",
		MIMEType:    "application/json",
	}, s.handleCollectionsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "collections/{name}/recent",
		Name:        "collection-recent",
		Description: "Most recently stored chunks of a collection",
		MIMEType:    "application/json",
	}, s.handleRecentResource)
}

type collectionInfo struct {
	Name      string `json:"name"`
	Chunks    int    `json:"chunks"`
	Documents int    `json:"documents"`
}

type chunkInfo struct {
	DocID     string    `json:"doc_id"`
	ChunkID   int       `json:"chunk_id"`
	Title     string    `json:"title,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// handleCollectionsResource returns every collection with its stats.
func (s *Server) handleCollectionsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	stats, err := s.ports.Collections.AllStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}

	infos := make([]collectionInfo, 0, len(stats))
	for name, st := range stats {
		infos = append(infos, collectionInfo{Name: name, Chunks: st.Chunks, Documents: st.Documents})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })

	return jsonResource(req.Params.URI, infos)
}

// handleRecentResource returns the newest chunks of one collection.
func (s *Server) handleRecentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	name := extractCollectionName(req.Params.URI)
	if name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	chunks, err := s.ports.Collections.Recent(ctx, name, recentResourceLimit)
	if err != nil {
		return nil, fmt.Errorf("listing recent chunks: %w", err)
	}

	infos := make([]chunkInfo, len(chunks))
	for i := range chunks {
		infos[i] = chunkInfo{
			DocID:     chunks[i].DocID,
			ChunkID:   chunks[i].ChunkID,
			Title:     chunks[i].Metadata.Title,
			Content:   chunks[i].Content,
			CreatedAt: chunks[i].CreatedAt,
		}
	}

	return jsonResource(req.Params.URI, infos)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractCollectionName extracts the name from recall://collections/{name}/recent.
func extractCollectionName(uri string) string {
	const prefix = uriScheme + "collections/"
	const suffix = "/recent"

	if !strings.HasPrefix(uri, prefix) || !strings.HasSuffix(uri, suffix) {
		return ""
	}

	name := strings.TrimSuffix(strings.TrimPrefix(uri, prefix), suffix)
	if strings.Contains(name, "/") {
		return ""
	}
	return name
}
