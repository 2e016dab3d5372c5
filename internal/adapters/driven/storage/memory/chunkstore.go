package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore is an in-memory implementation of driven.ChunkStore.
// Nearest is a brute-force scan over every chunk the owner holds.
type ChunkStore struct {
	mu        sync.RWMutex
	documents map[string]domain.DocumentRef
	chunks    map[string][]domain.Chunk
}

// NewChunkStore creates a new in-memory chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		documents: make(map[string]domain.DocumentRef),
		chunks:    make(map[string][]domain.Chunk),
	}
}

// ReplaceChunks swaps every chunk of doc.ID for chunks.
func (s *ChunkStore) ReplaceChunks(ctx context.Context, doc domain.DocumentRef, chunks []domain.Chunk) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreFailure, err)
	}

	stored := make([]domain.Chunk, len(chunks))
	seen := make(map[int]bool, len(chunks))
	for i, chunk := range chunks {
		if seen[chunk.Position] {
			return fmt.Errorf("%w: duplicate position %d", domain.ErrStoreFailure, chunk.Position)
		}
		seen[chunk.Position] = true
		chunk.DocumentID = doc.ID
		chunk.Embedding = slices.Clone(chunk.Embedding)
		stored[i] = chunk
	}
	slices.SortFunc(stored, func(a, b domain.Chunk) int {
		return cmp.Compare(a.Position, b.Position)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = doc
	s.chunks[doc.ID] = stored
	return nil
}

// DeleteDocument removes a document reference and its chunks.
// It reports true only when chunks were removed.
func (s *ChunkStore) DeleteDocument(_ context.Context, documentID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chunks := s.chunks[documentID]
	delete(s.documents, documentID)
	delete(s.chunks, documentID)

	return len(chunks) > 0, nil
}

// GetChunks retrieves all chunks for a document ordered by position.
func (s *ChunkStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunks := s.chunks[documentID]
	result := make([]domain.Chunk, len(chunks))
	copy(result, chunks)
	return result, nil
}

// GetChunk retrieves a specific chunk by ID.
func (s *ChunkStore) GetChunk(_ context.Context, chunkID string) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, chunks := range s.chunks {
		for _, chunk := range chunks {
			if chunk.ID == chunkID {
				return &chunk, nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

// FirstChunk returns the lowest-position chunk of a document.
func (s *ChunkStore) FirstChunk(_ context.Context, documentID string) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunks := s.chunks[documentID]
	if len(chunks) == 0 {
		return nil, domain.ErrNotFound
	}
	first := chunks[0]
	return &first, nil
}

// Nearest ranks the owner's chunks by cosine distance to q.Vector.
// Ties are broken by document and position.
func (s *ChunkStore) Nearest(ctx context.Context, q domain.VectorQuery) ([]domain.ChunkMatch, error) {
	if q.Limit <= 0 {
		return []domain.ChunkMatch{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreFailure, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []domain.ChunkMatch
	for docID, doc := range s.documents {
		if doc.OwnerID != q.OwnerID || docID == q.ExcludeDocumentID {
			continue
		}
		for _, chunk := range s.chunks[docID] {
			if chunk.Embedding == nil {
				continue
			}
			distance, err := domain.CosineDistance(chunk.Embedding, q.Vector)
			if err != nil {
				return nil, fmt.Errorf("%w: chunk %s: %w", domain.ErrStoreFailure, chunk.ID, err)
			}
			matches = append(matches, domain.ChunkMatch{
				Chunk:    chunk,
				Title:    doc.Title,
				Distance: distance,
			})
		}
	}

	slices.SortFunc(matches, func(a, b domain.ChunkMatch) int {
		return cmp.Or(
			cmp.Compare(a.Distance, b.Distance),
			cmp.Compare(a.Chunk.DocumentID, b.Chunk.DocumentID),
			cmp.Compare(a.Chunk.Position, b.Chunk.Position),
		)
	})

	if len(matches) > q.Limit {
		matches = matches[:q.Limit]
	}
	if matches == nil {
		matches = []domain.ChunkMatch{}
	}
	return matches, nil
}

// Close releases resources (no-op for memory store).
func (s *ChunkStore) Close() error {
	return nil
}
