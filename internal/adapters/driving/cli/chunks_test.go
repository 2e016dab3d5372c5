package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestChunksCmd_ListsChunks(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "chunks", rustDocID)

	require.NoError(t, err)
	assert.Contains(t, out, "Chunks for document doc-rust")
	assert.Contains(t, out, "[0]")
	assert.Contains(t, out, "Total: 1 chunks")
}

func TestChunksCmd_JSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "chunks", "--json", rustDocID)

	require.NoError(t, err)
	var views []chunkView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 1)
	assert.Equal(t, rustDocID, views[0].DocumentID)
	assert.Equal(t, 384, views[0].Dimensions)
	assert.NotContains(t, out, "embedding")
}

func TestChunksCmd_UnknownDocument(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand(t, "chunks", "missing")

	require.NoError(t, err)
	assert.Contains(t, out, "No chunks found for document: missing")
}

func TestChunkCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	chunks, err := indexService.GetDocumentChunks(t.Context(), goDocID)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	out, err := runCommand(t, "chunk", chunks[0].ID)

	require.NoError(t, err)
	var view chunkView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, chunks[0].ID, view.ID)
	assert.Contains(t, view.Content, goTitle)
}

func TestChunkCmd_NotFound(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := runCommand(t, "chunk", "no-such-chunk")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "chunk not found")
}

func TestNewChunkView(t *testing.T) {
	c := domain.Chunk{ID: "c", DocumentID: "d", Position: 2, Content: "x", Embedding: []float32{1, 2, 3}}

	assert.Equal(t, chunkView{ID: "c", DocumentID: "d", Position: 2, Content: "x", Dimensions: 3}, newChunkView(&c))
}
