// Package markdown normalises Markdown files into plain prose so that
// formatting syntax does not dilute embeddings.
package markdown

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
	"github.com/custodia-labs/recall/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles Markdown documents.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser, higher than plaintext
}

// Normalise converts a markdown file to a document whose content has the
// formatting removed. The first H1 heading becomes the title.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawFile) (domain.StructuredDocument, error) {
	if raw == nil {
		return domain.StructuredDocument{}, domain.ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return domain.StructuredDocument{}, err
	}

	source := string(raw.Content)

	metadata := make(map[string]any, len(raw.Metadata)+3)
	for k, v := range raw.Metadata {
		metadata[k] = v
	}
	metadata["source"] = raw.URI
	metadata["mime_type"] = raw.MIMEType
	metadata["format"] = "markdown"

	return domain.StructuredDocument{
		Content:  stripMarkdown(source),
		Title:    extractTitle(source, raw.URI),
		Metadata: metadata,
	}, nil
}

// extractTitle returns the first H1 heading, falling back to the file name.
func extractTitle(content, uri string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}
	return plaintext.TitleFromPath(uri)
}

type rewrite struct {
	pattern *regexp.Regexp
	repl    string
}

// rewrites are applied in order; code is removed before emphasis markers
// so that literals inside fences do not leak into the prose.
var rewrites = []rewrite{
	{regexp.MustCompile("(?s)```[^`]*```"), ""},
	{regexp.MustCompile("`[^`]+`"), ""},
	{regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`), ""},
	{regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`), "$1"},
	{regexp.MustCompile(`(?m)^#{1,6}\s+`), ""},
}

var trailingRewrites = []rewrite{
	{regexp.MustCompile(`(?m)^>\s*`), ""},
	{regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`), ""},
	{regexp.MustCompile(`(?m)^\s*[-*+]\s+`), ""},
	{regexp.MustCompile(`(?m)^\s*\d+\.\s+`), ""},
	{regexp.MustCompile(`\n{3,}`), "\n\n"},
}

var emphasis = strings.NewReplacer("**", "", "__", "", "*", "", "_", " ")

// stripMarkdown removes common markdown formatting, leaving plain text.
func stripMarkdown(content string) string {
	for _, r := range rewrites {
		content = r.pattern.ReplaceAllString(content, r.repl)
	}

	content = emphasis.Replace(content)

	for _, r := range trailingRewrites {
		content = r.pattern.ReplaceAllString(content, r.repl)
	}

	return strings.TrimSpace(content)
}
