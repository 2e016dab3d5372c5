package domain

import (
	"path/filepath"
	"strings"
)

// DocumentRef is the slice of a document the chunk store needs to answer
// owner-scoped scans. The document itself lives in the caller's store; the
// chunk store mirrors this reference and removes it together with the chunks.
type DocumentRef struct {
	// ID is the unique identifier of the document.
	ID string

	// OwnerID is the tenant that owns the document.
	OwnerID string

	// Title is the human-readable title, returned with search hits.
	Title string
}

// Chunk is a contiguous slice of a document's text and the atomic unit of
// embedding and retrieval.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent document.
	DocumentID string

	// Content is the text content of this chunk.
	Content string

	// Position is the zero-based chunk index within the document.
	// (DocumentID, Position) is unique.
	Position int

	// Embedding is the vector representation for semantic search.
	Embedding []float32
}

// RawFile is file content handed to a normaliser before indexing.
type RawFile struct {
	// Name is the file name or path. Its extension selects the normaliser.
	Name string

	// Content is the raw file bytes.
	Content []byte
}

// NormalisedText is the plain text a normaliser extracted from a RawFile.
type NormalisedText struct {
	// Title is taken from the document itself, else derived from the file name.
	Title string

	// Content is the readable text with formatting removed.
	Content string

	// Format names the normaliser that produced the text.
	Format string
}

// TitleFromFileName derives a readable title from a file name:
// "release-notes_v2.md" becomes "release notes v2".
func TitleFromFileName(name string) string {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ReplaceAll(base, "_", " ")
	return strings.ReplaceAll(base, "-", " ")
}
