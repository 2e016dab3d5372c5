// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// EmbeddingService generates vector embeddings from text.
//
// Every vector returned by one service has exactly Dimensions() components.
// Implementations include:
//   - Hashing (local, deterministic feature hashing)
//   - Ollama (nomic-embed-text, all-minilm)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates one embedding per input text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 1536, 3072).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// EmbeddingValidator checks embedding settings by connecting to the provider.
type EmbeddingValidator interface {
	// ValidateEmbedding pings the configured provider.
	// Returns nil if configuration is valid or not configured.
	ValidateEmbedding(ctx context.Context, settings *domain.EmbeddingSettings) error
}
