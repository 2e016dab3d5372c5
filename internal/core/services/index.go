package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// titleSeparator joins the title and body before chunking.
const titleSeparator = "\n\n"

// IndexService chunks, embeds and stores documents.
type IndexService struct {
	chunker          driven.TextChunker
	embeddingService driven.EmbeddingService
	chunkStore       driven.ChunkStore
	locks            keyedMutex
	newID            func() string
}

// NewIndexService creates a new index service.
func NewIndexService(
	chunker driven.TextChunker,
	embeddingService driven.EmbeddingService,
	chunkStore driven.ChunkStore,
) *IndexService {
	return &IndexService{
		chunker:          chunker,
		embeddingService: embeddingService,
		chunkStore:       chunkStore,
		newID:            uuid.NewString,
	}
}

// IndexDocument replaces every chunk of a document.
// Embeddings are computed before the store transaction opens, so a provider
// failure never touches stored state.
func (s *IndexService) IndexDocument(
	ctx context.Context, documentID, title, content, ownerID string,
) ([]string, error) {
	logger.Section("Index Document")
	logger.Debug("Document: %s, owner: %s", documentID, ownerID)

	if strings.TrimSpace(documentID) == "" {
		return nil, fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(ownerID) == "" {
		return nil, fmt.Errorf("%w: owner id is required", domain.ErrInvalidInput)
	}

	unlock := s.locks.Lock(documentID)
	defer unlock()

	ref := domain.DocumentRef{ID: documentID, OwnerID: ownerID, Title: title}

	var pieces []string
	if strings.TrimSpace(content) != "" {
		pieces = s.chunker.Chunk(title + titleSeparator + content)
	}
	logger.Debug("Chunker produced %d chunks", len(pieces))

	if len(pieces) == 0 {
		if err := s.chunkStore.ReplaceChunks(ctx, ref, nil); err != nil {
			return nil, fmt.Errorf("clear chunks: %w", err)
		}
		logger.Info("Document %s has no content, cleared its chunks", documentID)
		return []string{}, nil
	}

	embeddings, err := s.embed(ctx, pieces)
	if err != nil {
		return nil, err
	}

	chunks := make([]domain.Chunk, len(pieces))
	ids := make([]string, len(pieces))
	for i, piece := range pieces {
		ids[i] = s.newID()
		chunks[i] = domain.Chunk{
			ID:         ids[i],
			DocumentID: documentID,
			Content:    piece,
			Position:   i,
			Embedding:  embeddings[i],
		}
	}

	if err := s.chunkStore.ReplaceChunks(ctx, ref, chunks); err != nil {
		logger.Warn("Storing chunks for %s failed: %v", documentID, err)
		return nil, fmt.Errorf("store chunks: %w", err)
	}

	logger.Info("Indexed %s: %d chunks", documentID, len(chunks))
	return ids, nil
}

// embed computes one embedding per piece and checks count and dimension.
func (s *IndexService) embed(ctx context.Context, pieces []string) ([][]float32, error) {
	if s.embeddingService == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	start := time.Now()
	embeddings, err := s.embeddingService.EmbedBatch(ctx, pieces)
	if err != nil {
		logger.Warn("Embedding failed: %v", err)
		return nil, providerErr(err)
	}
	logger.Debug("Embedded %d chunks in %s", len(pieces), time.Since(start))

	if len(embeddings) != len(pieces) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d chunks",
			domain.ErrProviderFailure, len(embeddings), len(pieces))
	}

	want := s.embeddingService.Dimensions()
	if want <= 0 {
		want = len(embeddings[0])
	}
	for i, vec := range embeddings {
		if err := domain.CheckDimension(vec, want); err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
	}

	return embeddings, nil
}

// DeleteDocument removes all chunks of a document.
func (s *IndexService) DeleteDocument(ctx context.Context, documentID string) (bool, error) {
	if strings.TrimSpace(documentID) == "" {
		return false, fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}

	unlock := s.locks.Lock(documentID)
	defer unlock()

	deleted, err := s.chunkStore.DeleteDocument(ctx, documentID)
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	logger.Debug("Delete %s: removed=%t", documentID, deleted)
	return deleted, nil
}

// GetDocumentChunks returns the chunks of a document ordered by position.
func (s *IndexService) GetDocumentChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	chunks, err := s.chunkStore.GetChunks(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("get chunks: %w", err)
	}
	if chunks == nil {
		chunks = []domain.Chunk{}
	}
	return chunks, nil
}

// GetChunk retrieves a single chunk.
func (s *IndexService) GetChunk(ctx context.Context, chunkID string) (*domain.Chunk, error) {
	return s.chunkStore.GetChunk(ctx, chunkID)
}

// providerErr makes sure an embedding failure carries a domain sentinel.
func providerErr(err error) error {
	switch {
	case errors.Is(err, domain.ErrProviderFailure),
		errors.Is(err, domain.ErrEmbeddingUnavailable),
		errors.Is(err, domain.ErrDimensionMismatch):
		return err
	default:
		return fmt.Errorf("%w: %w", domain.ErrProviderFailure, err)
	}
}
