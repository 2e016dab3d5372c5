package mcp

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results  []domain.SearchResult
	similar  []domain.SimilarDocument
	err      error
	lastOpts domain.SearchOptions
	lastDoc  string
}

func (m *mockSearchService) Search(
	_ context.Context,
	_ string,
	opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	m.lastOpts = opts
	return m.results, m.err
}

func (m *mockSearchService) FindSimilar(
	_ context.Context,
	documentID, _ string,
	_ int,
) ([]domain.SimilarDocument, error) {
	m.lastDoc = documentID
	return m.similar, m.err
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	chunks []domain.Chunk
	err    error
}

func (m *mockIndexService) IndexDocument(_ context.Context, _, _, _, _ string) ([]string, error) {
	return nil, m.err
}

func (m *mockIndexService) DeleteDocument(_ context.Context, _ string) (bool, error) {
	return false, m.err
}

func (m *mockIndexService) GetDocumentChunks(_ context.Context, _ string) ([]domain.Chunk, error) {
	return m.chunks, m.err
}

func (m *mockIndexService) GetChunk(_ context.Context, _ string) (*domain.Chunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.chunks) == 0 {
		return nil, domain.ErrNotFound
	}
	return &m.chunks[0], nil
}
