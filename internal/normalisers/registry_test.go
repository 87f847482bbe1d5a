package normalisers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/recall/internal/core/domain"
)

type stubNormaliser struct {
	mimes    []string
	priority int
	title    string
}

func (s *stubNormaliser) SupportedMIMETypes() []string { return s.mimes }
func (s *stubNormaliser) Priority() int { return s.priority }
func (s *stubNormaliser) Normalise(_ context.Context, raw *domain.RawFile) (domain.StructuredDocument, error) {
	return domain.StructuredDocument{Content: string(raw.Content), Title: s.title}, nil
}

func TestRegistry_SelectsHighestPriority(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubNormaliser{mimes: []string{"text/plain"}, priority: 5, title: "low"})
	r.Register(&stubNormaliser{mimes: []string{"text/plain"}, priority: 90, title: "high"})
	r.Register(&stubNormaliser{mimes: []string{"text/plain"}, priority: 50, title: "mid"})

	doc, err := r.Normalise(context.Background(), &domain.RawFile{MIMEType: "text/plain", Content: []byte("x")})
	require.NoError(t, err)

	assert.Equal(t, "high", doc.Title)
	assert.Equal(t, "x", doc.Content)
}

func TestRegistry_UnsupportedType(t *testing.T) {
	r := NewDefaultRegistry()

	_, err := r.Normalise(context.Background(), &domain.RawFile{MIMEType: "image/png"})

	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	assert.Contains(t, err.Error(), "image/png")
	assert.False(t, r.Supports("image/png"))
}

func TestRegistry_NilFile(t *testing.T) {
	_, err := NewDefaultRegistry().Normalise(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDefaultRegistry(t *testing.T) {
	r := NewDefaultRegistry()

	assert.True(t, r.Supports("text/plain"))
	assert.True(t, r.Supports("text/markdown"))

	types := r.SupportedMIMETypes()
	assert.Contains(t, types, "text/x-go")
	assert.IsIncreasing(t, types)

	doc, err := r.Normalise(context.Background(), &domain.RawFile{
		URI:      "/notes/guide.md",
		MIMEType: "text/markdown",
		Content:  []byte("# Guide\n\n**Read** me"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Guide", doc.Title)
	assert.Equal(t, "markdown", doc.Metadata["format"])
}
