package postprocessors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors/chunker"
)

func TestNewTextChunker_Defaults(t *testing.T) {
	c := NewTextChunker(domain.DefaultAppSettings().Chunking)

	impl, ok := c.(*chunker.Chunker)
	require.True(t, ok)
	assert.Equal(t, 500, impl.ChunkSize())
	assert.Equal(t, 50, impl.Overlap())
}

func TestNewTextChunker_CustomSettings(t *testing.T) {
	c := NewTextChunker(domain.ChunkingSettings{Size: 20, Overlap: 10, CarryOverlap: true})

	chunks := c.Chunk("Aaaa aaaa. Bbbb bbbb. Cccc cccc.")

	assert.Equal(t, []string{"Aaaa aaaa. Bbbb bbbb.", "Bbbb bbbb. Cccc cccc."}, chunks)
}

func TestNewTextChunker_InvalidValuesFallBack(t *testing.T) {
	c := NewTextChunker(domain.ChunkingSettings{Size: 0, Overlap: -5})

	impl, ok := c.(*chunker.Chunker)
	require.True(t, ok)
	assert.Equal(t, chunker.DefaultChunkSize, impl.ChunkSize())
	assert.Equal(t, chunker.DefaultChunkOverlap, impl.Overlap())
}
