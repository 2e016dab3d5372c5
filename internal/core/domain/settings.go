package domain

import (
	"fmt"
	"strings"
)

const unknownDescription = "Unknown"

// AIProvider identifies an embedding provider variant.
type AIProvider string

// Available embedding providers.
const (
	// AIProviderHashing is the built-in local feature-hashing embedder.
	AIProviderHashing AIProvider = "hashing"

	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderHashing, AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs without a hosted API.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderHashing || p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderHashing:
		return "Hashing (local, offline)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// StorageBackend identifies a chunk store implementation.
type StorageBackend string

// Available storage backends.
const (
	// StorageSQLite is the embedded SQLite store.
	StorageSQLite StorageBackend = "sqlite"

	// StoragePostgres is PostgreSQL with the pgvector extension.
	StoragePostgres StorageBackend = "postgres"

	// StorageMemory keeps chunks in process memory only.
	StorageMemory StorageBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageSQLite, StoragePostgres, StorageMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b StorageBackend) String() string {
	return string(b)
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint. Empty uses the provider default.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions is the embedding vector size every stored chunk must have.
	Dimensions int

	// RequestsPerMinute paces hosted API calls. Zero disables pacing.
	RequestsPerMinute int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// ChunkingSettings holds text chunker configuration.
type ChunkingSettings struct {
	// Size is the target chunk size in characters.
	Size int

	// Overlap is the overlap budget in characters.
	Overlap int

	// CarryOverlap enables carrying trailing sentences into the next chunk.
	CarryOverlap bool
}

// SearchSettings holds search defaults.
type SearchSettings struct {
	// DefaultLimit is used when a query does not specify a limit.
	DefaultLimit int

	// Threshold is the default minimum similarity score.
	Threshold float64
}

// StorageSettings holds chunk store configuration.
type StorageSettings struct {
	// Backend selects the chunk store implementation.
	Backend StorageBackend

	// DataDir is the SQLite data directory. Empty uses ~/.sercha-rag/data.
	DataDir string

	// PostgresDSN is the connection string for the postgres backend.
	PostgresDSN string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// Chunking holds text chunker settings.
	Chunking ChunkingSettings

	// Search holds search defaults.
	Search SearchSettings

	// Storage holds chunk store settings.
	Storage StorageSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The hashing provider needs no network access, so a fresh install can index
// and search immediately.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider:   AIProviderHashing,
			Model:      DefaultEmbeddingModels()[AIProviderHashing],
			Dimensions: 384,
		},
		Chunking: ChunkingSettings{
			Size:    500,
			Overlap: 50,
		},
		Search: SearchSettings{
			DefaultLimit: 10,
			Threshold:    0.7,
		},
		Storage: StorageSettings{
			Backend: StorageSQLite,
		},
	}
}

// Validate checks the settings for values the core algorithms cannot run with.
func (s AppSettings) Validate() error {
	var problems []string

	if !s.Embedding.Provider.IsValid() {
		problems = append(problems, fmt.Sprintf("unknown embedding provider %q", s.Embedding.Provider))
	} else if s.Embedding.Provider.RequiresAPIKey() && s.Embedding.APIKey == "" {
		problems = append(problems, fmt.Sprintf("API key required for %s", s.Embedding.Provider))
	}
	if s.Embedding.Dimensions <= 0 {
		problems = append(problems, "embedding dimensions must be positive")
	}
	if s.Embedding.RequestsPerMinute < 0 {
		problems = append(problems, "requests per minute must not be negative")
	}
	if s.Chunking.Size <= 0 {
		problems = append(problems, "chunk size must be positive")
	}
	if s.Chunking.Overlap < 0 {
		problems = append(problems, "chunk overlap must not be negative")
	}
	if s.Search.DefaultLimit <= 0 {
		problems = append(problems, "default search limit must be positive")
	}
	if !s.Storage.Backend.IsValid() {
		problems = append(problems, fmt.Sprintf("unknown storage backend %q", s.Storage.Backend))
	} else if s.Storage.Backend == StoragePostgres && s.Storage.PostgresDSN == "" {
		problems = append(problems, "postgres backend requires a DSN")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderHashing,
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderHashing: "fnv-hashing-v1",
		AIProviderOllama:  "nomic-embed-text",
		AIProviderOpenAI:  "text-embedding-3-small",
	}
}

// EmbeddingDimensions returns the native vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
