// Package postprocessors builds the text processing stages used by indexing.
package postprocessors

import (
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors/chunker"
)

// NewTextChunker creates the chunker described by settings.
// Supported settings:
//   - Size: Characters per chunk (default: 500)
//   - Overlap: Overlap budget in characters (default: 50)
//   - CarryOverlap: Repeat trailing sentences in the next chunk (default: false)
func NewTextChunker(settings domain.ChunkingSettings) driven.TextChunker {
	var opts []chunker.Option

	if settings.Size > 0 {
		opts = append(opts, chunker.WithChunkSize(settings.Size))
	}
	if settings.Overlap >= 0 {
		opts = append(opts, chunker.WithOverlap(settings.Overlap))
	}
	opts = append(opts, chunker.WithCarryOverlap(settings.CarryOverlap))

	return chunker.New(opts...)
}
