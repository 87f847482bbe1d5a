package markdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
)

func TestSupportedMIMETypes(t *testing.T) {
	assert.Equal(t, []string{"text/markdown", "text/x-markdown"}, New().SupportedMIMETypes())
}

func TestPriority(t *testing.T) {
	assert.Greater(t, New().Priority(), 5)
}

func TestNormalise_Success(t *testing.T) {
	raw := &domain.RawFile{
		URI:      "/notes/fox.md",
		MIMEType: "text/markdown",
		Content:  []byte("# Foxes\n\nThe **quick** brown fox."),
	}

	doc, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, "Foxes", doc.Title)
	assert.Equal(t, "Foxes\n\nThe quick brown fox.", doc.Content)
	assert.Equal(t, "/notes/fox.md", doc.Metadata["source"])
	assert.Equal(t, "markdown", doc.Metadata["format"])
}

func TestNormalise_NilFile(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		uri      string
		expected string
	}{
		{"first h1", "intro\n# Real Title\n# Second", "/a/b.md", "Real Title"},
		{"indented h1", "   # Spaced  ", "/a/b.md", "Spaced"},
		{"h2 ignored", "## Not a title", "/docs/release-notes.md", "release notes"},
		{"no heading", "plain body", "/docs/my_file.md", "my file"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, extractTitle(tc.content, tc.uri))
		})
	}
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"headings removed", "# Title\n## Subtitle\n### Third", "Title\nSubtitle\nThird"},
		{"bold removed", "This is **bold** text", "This is bold text"},
		{"links converted", "Click [here](https://example.com)", "Click here"},
		{"images removed", "See ![alt text](image.png) here", "See  here"},
		{"code blocks removed", "Before\n```go\ncode here\n```\nAfter", "Before\n\nAfter"},
		{"inline code removed", "Use `code` here", "Use  here"},
		{"blockquotes cleaned", "> This is a quote", "This is a quote"},
		{"list markers removed", "- Item 1\n- Item 2", "Item 1\nItem 2"},
		{"numbered list markers removed", "1. First\n2. Second", "First\nSecond"},
		{"blank runs collapsed", "a\n\n\n\n\nb", "a\n\nb"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, stripMarkdown(tc.input))
		})
	}
}

func TestNormalise_MetadataPreserved(t *testing.T) {
	raw := &domain.RawFile{
		URI:      "/path/document.md",
		MIMEType: "text/markdown",
		Content:  []byte("# Test"),
		Metadata: map[string]any{"author": "test"},
	}

	doc, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, "test", doc.Metadata["author"])
	assert.Equal(t, "text/markdown", doc.Metadata["mime_type"])
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = (*Normaliser)(nil)
}

func BenchmarkStripMarkdown(b *testing.B) {
	content := "# Title\n\nSome **bold** text with a [link](https://example.com).\n\n- a\n- b\n"
	for i := 0; i < b.N; i++ {
		_ = stripMarkdown(content)
	}
}
