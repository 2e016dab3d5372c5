package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// Search defaults used when settings leave them unset.
const (
	defaultSearchLimit  = 10
	defaultSimilarLimit = 5

	// maxResultLimit caps caller-supplied limits before the over-fetch.
	maxResultLimit = 1000

	// overFetchFactor widens the chunk scan so that deduplication by
	// document still leaves enough results.
	overFetchFactor = 2
)

// SearchService ranks an owner's documents by embedding similarity.
type SearchService struct {
	embeddingService driven.EmbeddingService
	chunkStore       driven.ChunkStore
	defaults         domain.SearchSettings
}

// NewSearchService creates a new search service.
// Zero-valued defaults fall back to limit 10 and threshold 0.
func NewSearchService(
	embeddingService driven.EmbeddingService,
	chunkStore driven.ChunkStore,
	defaults domain.SearchSettings,
) *SearchService {
	if defaults.DefaultLimit <= 0 {
		defaults.DefaultLimit = defaultSearchLimit
	}
	return &SearchService{
		embeddingService: embeddingService,
		chunkStore:       chunkStore,
		defaults:         defaults,
	}
}

// Search returns the owner's documents closest to query, one result per
// document, best first.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.SearchResult{}, nil
	}
	if strings.TrimSpace(opts.OwnerID) == "" {
		return nil, fmt.Errorf("%w: owner id is required", domain.ErrInvalidInput)
	}
	if s.embeddingService == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = s.defaults.DefaultLimit
	}
	limit = min(limit, maxResultLimit)
	threshold := s.defaults.Threshold
	if opts.Threshold != nil {
		threshold = *opts.Threshold
	}
	logger.Debug("Limit: %d, threshold: %.3f", limit, threshold)

	start := time.Now()
	vector, err := s.embeddingService.Embed(ctx, query)
	if err != nil {
		logger.Warn("Query embedding failed: %v", err)
		return nil, fmt.Errorf("embed query: %w", providerErr(err))
	}
	logger.Debug("Query embedding: %d dimensions in %s", len(vector), time.Since(start))

	if dims := s.embeddingService.Dimensions(); dims > 0 {
		if err := domain.CheckDimension(vector, dims); err != nil {
			return nil, fmt.Errorf("embed query: %w", err)
		}
	}

	matches, err := s.chunkStore.Nearest(ctx, domain.VectorQuery{
		Vector:  vector,
		OwnerID: opts.OwnerID,
		Limit:   limit * overFetchFactor,
	})
	if err != nil {
		logger.Warn("Vector scan failed: %v", err)
		return nil, fmt.Errorf("search: %w", err)
	}
	logger.Debug("Candidate chunks: %d", len(matches))

	results := make([]domain.SearchResult, 0, min(limit, len(matches)))
	seen := make(map[string]bool)
	for _, m := range matches {
		if seen[m.Chunk.DocumentID] {
			continue
		}
		score := m.Score()
		if score < threshold {
			continue
		}
		seen[m.Chunk.DocumentID] = true

		results = append(results, domain.SearchResult{
			DocumentID:     m.Chunk.DocumentID,
			Title:          m.Title,
			ContentPreview: domain.Preview(m.Chunk.Content),
			Score:          score,
		})
		if len(results) >= limit {
			break
		}
	}

	logger.Info("Final results: %d", len(results))
	return results, nil
}

// FindSimilar returns the owner's other documents closest to the first chunk
// of documentID. No threshold is applied.
func (s *SearchService) FindSimilar(
	ctx context.Context, documentID, ownerID string, limit int,
) ([]domain.SimilarDocument, error) {
	logger.Section("Find Similar")
	logger.Debug("Document: %s, owner: %s", documentID, ownerID)

	if strings.TrimSpace(documentID) == "" {
		return nil, fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(ownerID) == "" {
		return nil, fmt.Errorf("%w: owner id is required", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = defaultSimilarLimit
	}
	limit = min(limit, maxResultLimit)

	source, err := s.chunkStore.FirstChunk(ctx, documentID)
	if errors.Is(err, domain.ErrNotFound) {
		logger.Debug("Document %s has no chunks", documentID)
		return []domain.SimilarDocument{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load source chunk: %w", err)
	}
	if len(source.Embedding) == 0 {
		logger.Debug("Document %s has no embedding", documentID)
		return []domain.SimilarDocument{}, nil
	}

	matches, err := s.chunkStore.Nearest(ctx, domain.VectorQuery{
		Vector:            source.Embedding,
		OwnerID:           ownerID,
		ExcludeDocumentID: documentID,
		Limit:             limit * overFetchFactor,
	})
	if err != nil {
		return nil, fmt.Errorf("find similar: %w", err)
	}
	logger.Debug("Candidate chunks: %d", len(matches))

	results := make([]domain.SimilarDocument, 0, min(limit, len(matches)))
	seen := make(map[string]bool)
	for _, m := range matches {
		if seen[m.Chunk.DocumentID] {
			continue
		}
		seen[m.Chunk.DocumentID] = true

		results = append(results, domain.SimilarDocument{
			DocumentID:      m.Chunk.DocumentID,
			Title:           m.Title,
			SimilarityScore: m.Score(),
		})
		if len(results) >= limit {
			break
		}
	}

	logger.Info("Similar documents: %d", len(results))
	return results, nil
}
