package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// SearchService provides semantic search capabilities to external actors.
type SearchService interface {
	// Search ranks one owner's documents by similarity to a free-text query.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)

	// FindSimilar ranks one owner's other documents by similarity to a document.
	FindSimilar(ctx context.Context, documentID, ownerID string, limit int) ([]domain.SimilarDocument, error)
}
