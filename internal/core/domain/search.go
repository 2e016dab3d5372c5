package domain

import "unicode/utf8"

// PreviewLength is the rune budget of SearchResult.ContentPreview.
const PreviewLength = 200

// ellipsis marks a truncated preview.
const ellipsis = "..."

// SearchOptions configures a semantic search query.
type SearchOptions struct {
	// OwnerID scopes the search to one tenant. Required.
	OwnerID string

	// Limit is the maximum number of results. Zero uses the configured default.
	Limit int

	// Threshold is the minimum score a result must reach.
	// Nil uses the configured default; an explicit zero is honoured.
	Threshold *float64
}

// SearchResult represents a single document hit for a free-text query.
type SearchResult struct {
	// DocumentID is the matched document.
	DocumentID string `json:"document_id"`

	// Title is the document title.
	Title string `json:"title"`

	// ContentPreview is the best chunk's content, truncated.
	ContentPreview string `json:"content_preview"`

	// Score is the similarity (1 - cosine distance). Higher is closer.
	Score float64 `json:"score"`
}

// SimilarDocument represents a document related to a source document.
type SimilarDocument struct {
	// DocumentID is the related document.
	DocumentID string `json:"document_id"`

	// Title is the document title.
	Title string `json:"title"`

	// SimilarityScore is 1 - cosine distance to the source document's first chunk.
	SimilarityScore float64 `json:"similarity_score"`
}

// VectorQuery is a distance-ordered scan request against the chunk store.
type VectorQuery struct {
	// Vector is the query embedding.
	Vector []float32

	// OwnerID restricts the scan to one tenant's documents. Required.
	OwnerID string

	// ExcludeDocumentID drops chunks of this document when set.
	ExcludeDocumentID string

	// Limit is the maximum number of chunks returned.
	Limit int
}

// ChunkMatch is one row of a distance-ordered scan.
type ChunkMatch struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Title is the title of the chunk's document.
	Title string

	// Distance is the cosine distance to the query vector. Lower is closer.
	Distance float64
}

// Score converts the match distance into a similarity score.
func (m ChunkMatch) Score() float64 {
	return 1.0 - m.Distance
}

// Preview truncates text to PreviewLength runes, marking truncation with an ellipsis.
func Preview(text string) string {
	return Truncate(text, PreviewLength)
}

// Truncate shortens text to at most maxRunes runes including the ellipsis.
func Truncate(text string, maxRunes int) string {
	if utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	keep := maxRunes - len(ellipsis)
	if keep < 0 {
		keep = 0
	}
	runes := []rune(text)
	return string(runes[:keep]) + ellipsis
}
