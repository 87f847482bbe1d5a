package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// The built-in implementation is a vocabulary bag-of-words model; any
// higher-quality model can replace it behind this interface without
// touching the rest of the engine. Vectors from different services have
// different dimensions and score 0 against each other.
//
// Implementations may include:
//   - Bag of words over an injected vocabulary
//   - Ollama (nomic-embed-text, all-minilm)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	// The result has unit L2 norm, or is the zero vector when the
	// text carries no signal for the model.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is usable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
