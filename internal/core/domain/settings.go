package domain

import "time"

const unknownDescription = "Unknown"

// EmbeddingProvider identifies the embedding generator backing the engine.
type EmbeddingProvider string

// Available embedding providers.
const (
	// EmbeddingProviderBagOfWords is the built-in vocabulary-based embedder.
	EmbeddingProviderBagOfWords EmbeddingProvider = "bagofwords"

	// EmbeddingProviderOllama is a local Ollama instance.
	EmbeddingProviderOllama EmbeddingProvider = "ollama"
)

// IsValid returns true if the provider is recognised.
func (p EmbeddingProvider) IsValid() bool {
	switch p {
	case EmbeddingProviderBagOfWords, EmbeddingProviderOllama:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p EmbeddingProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p EmbeddingProvider) Description() string {
	switch p {
	case EmbeddingProviderBagOfWords:
		return "Bag of words (built-in vocabulary)"
	case EmbeddingProviderOllama:
		return "Ollama (local)"
	default:
		return unknownDescription
	}
}

// StorageSettings holds persistence configuration.
type StorageSettings struct {
	// DataDir is the directory holding the chunk database.
	// Empty means ~/.recall/data.
	DataDir string
}

// ChunkerSettings holds chunking configuration.
type ChunkerSettings struct {
	// Size is the target chunk size in characters.
	Size int

	// Overlap is the number of characters shared by consecutive chunks.
	Overlap int
}

// SearchSettings holds search behaviour configuration.
type SearchSettings struct {
	// Limit is the default number of results.
	Limit int

	// Threshold is the default minimum similarity.
	Threshold float64

	// Timeout bounds the scan-and-rank step. Zero disables it.
	Timeout time.Duration

	// HighComplexity is the complexity score at or above which
	// the result limit is clamped.
	HighComplexity float64

	// ComplexityLimit is the clamped result limit for complex queries.
	ComplexityLimit int
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding generator.
	Provider EmbeddingProvider

	// VocabularyFile optionally replaces the built-in vocabulary
	// with a newline-separated word list.
	VocabularyFile string

	// Model is the remote embedding model name (Ollama).
	Model string

	// BaseURL is the remote API endpoint (Ollama).
	BaseURL string
}

// AdmissionSettings holds admission control configuration.
type AdmissionSettings struct {
	// Enabled turns on the rate-based admission monitor.
	Enabled bool

	// Rate is the sustained number of admitted requests per second.
	Rate float64

	// Burst is the number of requests admitted back to back.
	Burst int

	// LongQueryWords is the word count treated as maximum complexity.
	LongQueryWords int
}

// Settings holds all engine settings.
type Settings struct {
	Storage           StorageSettings
	Chunker           ChunkerSettings
	Search            SearchSettings
	Embedding         EmbeddingSettings
	Admission         AdmissionSettings
	DefaultCollection string
}

// DefaultSettings returns settings with sensible defaults.
func DefaultSettings() Settings {
	return Settings{
		Chunker: ChunkerSettings{
			Size:    500,
			Overlap: 50,
		},
		Search: SearchSettings{
			Limit:           DefaultSearchLimit,
			Threshold:       DefaultSearchThreshold,
			HighComplexity:  0.7,
			ComplexityLimit: 3,
		},
		Embedding: EmbeddingSettings{
			Provider: EmbeddingProviderBagOfWords,
		},
		Admission: AdmissionSettings{
			Enabled:        false,
			Rate:           10,
			Burst:          20,
			LongQueryWords: 30,
		},
		DefaultCollection: DefaultCollection,
	}
}
