package driven

// TextChunker splits text into sentence-aligned chunks.
type TextChunker interface {
	// Chunk returns the chunks of text in document order.
	// Empty or whitespace-only text yields no chunks.
	Chunk(text string) []string
}
