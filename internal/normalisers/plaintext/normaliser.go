// Package plaintext normalises text files (prose, source code, data files)
// into structured documents without altering their content.
package plaintext

import (
	"context"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/x-go",
		"text/x-python",
		"text/x-rust",
		"text/x-java",
		"text/x-c",
		"text/x-ruby",
		"text/x-shellscript",
		"text/x-sql",
		"text/csv",
		"text/yaml",
		"text/toml",
		"text/javascript",
		"text/typescript",
		"application/json",
		"application/xml",
	}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 5 // Fallback normaliser
}

// Normalise converts raw bytes into a document. The file name becomes the
// title unless the importer supplied one; invalid UTF-8 is replaced.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawFile) (domain.StructuredDocument, error) {
	if raw == nil {
		return domain.StructuredDocument{}, domain.ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return domain.StructuredDocument{}, err
	}

	content := string(raw.Content)
	if !utf8.ValidString(content) {
		content = strings.ToValidUTF8(content, "�")
	}

	metadata := copyMetadata(raw.Metadata)
	metadata["source"] = raw.URI
	metadata["mime_type"] = raw.MIMEType

	return domain.StructuredDocument{
		Content:  content,
		Title:    titleFromMetadataOrURI(raw),
		Metadata: metadata,
	}, nil
}

// titleFromMetadataOrURI prefers an importer-supplied title over the file name.
func titleFromMetadataOrURI(raw *domain.RawFile) string {
	if title, ok := raw.Metadata["title"].(string); ok && title != "" {
		return title
	}
	return TitleFromPath(raw.URI)
}

// TitleFromPath derives a human-readable title from a file path:
// the base name without extension, with underscores and dashes as spaces.
func TitleFromPath(uri string) string {
	filename := filepath.Base(uri)
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))

	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")

	return filename
}

// copyMetadata creates a shallow copy of metadata, never returning nil.
func copyMetadata(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src)+2)
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
