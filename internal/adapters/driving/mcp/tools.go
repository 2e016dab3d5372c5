package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query     string   `json:"query" jsonschema:"the search query to find documents"`
	OwnerID   string   `json:"owner_id" jsonschema:"the owner whose documents are searched"`
	Limit     int      `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
	Threshold *float64 `json:"threshold,omitempty" jsonschema:"minimum similarity score between 0 and 1"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []domain.SearchResult `json:"results"`
	Count   int                   `json:"count"`
}

// FindSimilarInput is the input schema for the find_similar tool.
type FindSimilarInput struct {
	DocumentID string `json:"document_id" jsonschema:"the document to find neighbours for"`
	OwnerID    string `json:"owner_id" jsonschema:"the owner whose documents are compared"`
	Limit      int    `json:"limit,omitempty" jsonschema:"maximum number of documents to return (default 5)"`
}

// FindSimilarOutput is the output schema for the find_similar tool.
type FindSimilarOutput struct {
	Documents []domain.SimilarDocument `json:"documents"`
	Count     int                      `json:"count"`
}

// GetDocumentChunksInput is the input schema for the get_document_chunks tool.
type GetDocumentChunksInput struct {
	DocumentID string `json:"document_id" jsonschema:"the document whose chunks are returned"`
}

// GetDocumentChunksOutput is the output schema for the get_document_chunks tool.
type GetDocumentChunksOutput struct {
	Chunks []ChunkOutput `json:"chunks"`
	Count  int           `json:"count"`
}

// ChunkOutput is a chunk without its embedding.
type ChunkOutput struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	Position   int    `json:"position"`
	Content    string `json:"content"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Semantic search across one owner's indexed documents",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "find_similar",
		Description: "Find an owner's documents similar to a given document",
	}, s.handleFindSimilar)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_document_chunks",
		Description: "List the indexed chunks of a document in position order",
	}, s.handleGetDocumentChunks)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	opts := domain.SearchOptions{
		OwnerID:   input.OwnerID,
		Limit:     input.Limit,
		Threshold: input.Threshold,
	}

	results, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	if results == nil {
		results = []domain.SearchResult{}
	}

	return nil, SearchOutput{Results: results, Count: len(results)}, nil
}

// handleFindSimilar handles the find_similar tool invocation.
func (s *Server) handleFindSimilar(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FindSimilarInput,
) (*mcp.CallToolResult, FindSimilarOutput, error) {
	docs, err := s.ports.Search.FindSimilar(ctx, input.DocumentID, input.OwnerID, input.Limit)
	if err != nil {
		return nil, FindSimilarOutput{}, err
	}
	if docs == nil {
		docs = []domain.SimilarDocument{}
	}

	return nil, FindSimilarOutput{Documents: docs, Count: len(docs)}, nil
}

// handleGetDocumentChunks handles the get_document_chunks tool invocation.
func (s *Server) handleGetDocumentChunks(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetDocumentChunksInput,
) (*mcp.CallToolResult, GetDocumentChunksOutput, error) {
	chunks, err := s.documentChunks(ctx, input.DocumentID)
	if err != nil {
		return nil, GetDocumentChunksOutput{}, err
	}

	return nil, GetDocumentChunksOutput{Chunks: chunks, Count: len(chunks)}, nil
}

// documentChunks loads a document's chunks and strips their embeddings.
func (s *Server) documentChunks(ctx context.Context, documentID string) ([]ChunkOutput, error) {
	if s.ports.Index == nil {
		return nil, ErrMissingIndexService
	}

	chunks, err := s.ports.Index.GetDocumentChunks(ctx, documentID)
	if err != nil {
		return nil, err
	}

	out := make([]ChunkOutput, len(chunks))
	for i := range chunks {
		out[i] = ChunkOutput{
			ID:         chunks[i].ID,
			DocumentID: chunks[i].DocumentID,
			Position:   chunks[i].Position,
			Content:    chunks[i].Content,
		}
	}
	return out, nil
}
