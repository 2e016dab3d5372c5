package domain

import "errors"

// Domain errors represent business logic failures.
// Adapters wrap infrastructure errors with one of these so callers can use errors.Is.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider or storage backend.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrDimensionMismatch indicates an embedding vector whose length differs
	// from the configured dimension. Vectors are never truncated or padded.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrProviderFailure indicates the embedding provider failed or timed out.
	ErrProviderFailure = errors.New("embedding provider failure")

	// ErrStoreFailure indicates the chunk store failed. Any open unit of work
	// has been rolled back.
	ErrStoreFailure = errors.New("chunk store failure")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)
