package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// ChunkStore persists document chunks with their embeddings and answers
// owner-scoped nearest-neighbour scans.
//
// Scans are exact: every candidate chunk of the owner is ranked by cosine
// distance. Failures are wrapped in domain.ErrStoreFailure.
type ChunkStore interface {
	// ReplaceChunks swaps every chunk of doc.ID for chunks in a single
	// transaction, upserting the document reference first. An empty chunks
	// slice removes all chunks of the document. On error nothing changes.
	ReplaceChunks(ctx context.Context, doc domain.DocumentRef, chunks []domain.Chunk) error

	// DeleteDocument removes all chunks of a document and its reference.
	// Returns false when nothing was stored for the document.
	DeleteDocument(ctx context.Context, documentID string) (bool, error)

	// GetChunks returns the chunks of a document ordered by position.
	// Returns an empty slice when the document has no chunks.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// GetChunk retrieves a chunk by ID.
	// Returns domain.ErrNotFound if the chunk does not exist.
	GetChunk(ctx context.Context, chunkID string) (*domain.Chunk, error)

	// FirstChunk returns the lowest-position chunk of a document.
	// Returns domain.ErrNotFound if the document has no chunks.
	FirstChunk(ctx context.Context, documentID string) (*domain.Chunk, error)

	// Nearest returns up to q.Limit chunks of q.OwnerID's documents ordered
	// by ascending cosine distance to q.Vector.
	Nearest(ctx context.Context, q domain.VectorQuery) ([]domain.ChunkMatch, error)

	// Close releases resources.
	Close() error
}
