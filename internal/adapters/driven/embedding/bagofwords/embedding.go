// Package bagofwords provides a vocabulary-based embedding service.
//
// Vectors place a tf-idf style weight at each vocabulary term's index and are
// normalised to unit length. The idf factor uses a fixed corpus size of 1000
// rather than real corpus statistics, so terms repeated 999 or more times in
// one text weigh zero or less. The model is a placeholder that any
// driven.EmbeddingService can replace.
package bagofwords

import (
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/custodia-labs/recall/internal/core/ports/driven"
)

// Ensure Embedder implements the interface.
var _ driven.EmbeddingService = (*Embedder)(nil)

// ModelName is reported by ModelName.
const ModelName = "bag-of-words"

// assumedCorpusSize is the constant document count in the idf approximation.
const assumedCorpusSize = 1000.0

var tokenPattern = regexp.MustCompile(`\w+`)

// Embedder maps text onto a fixed vocabulary. It holds no mutable state and
// is safe for concurrent use.
type Embedder struct {
	vocab *Vocabulary
}

// New creates an embedder over vocab. A nil vocab uses DefaultVocabulary.
func New(vocab *Vocabulary) *Embedder {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &Embedder{vocab: vocab}
}

// Vector computes the embedding of text.
func (e *Embedder) Vector(text string) []float32 {
	vec := make([]float32, e.vocab.Len())

	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 {
		return vec
	}

	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}

	weights := make([]float64, len(vec))
	total := float64(len(tokens))
	for term, count := range counts {
		idx, ok := e.vocab.Index(term)
		if !ok {
			continue
		}
		tf := float64(count) / total
		idf := math.Log(assumedCorpusSize / float64(count+1))
		weights[idx] = tf * idf
	}

	var norm float64
	for _, w := range weights {
		norm += w * w
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i, w := range weights {
		vec[i] = float32(w / norm)
	}
	return vec
}

// Embed generates a vector embedding for the given text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.Vector(text), nil
}

// EmbedBatch generates embeddings for multiple texts.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = e.Vector(text)
	}
	return out, nil
}

// Dimensions returns the vocabulary size.
func (e *Embedder) Dimensions() int {
	return e.vocab.Len()
}

// ModelName returns the name of the embedding model.
func (e *Embedder) ModelName() string {
	return ModelName
}

// Ping always succeeds; the embedder runs in process.
func (e *Embedder) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (e *Embedder) Close() error {
	return nil
}
