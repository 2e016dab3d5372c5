package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// IndexService maintains the chunks and embeddings of documents.
type IndexService interface {
	// IndexDocument replaces all chunks of a document with freshly chunked and
	// embedded content. Returns the new chunk IDs in position order.
	// The document is either fully re-indexed or left unchanged.
	IndexDocument(ctx context.Context, documentID, title, content, ownerID string) ([]string, error)

	// DeleteDocument removes all chunks of a document.
	// Returns false when the document had nothing indexed.
	DeleteDocument(ctx context.Context, documentID string) (bool, error)

	// GetDocumentChunks returns the chunks of a document ordered by position.
	GetDocumentChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// GetChunk retrieves a single chunk.
	GetChunk(ctx context.Context, chunkID string) (*domain.Chunk, error)
}
