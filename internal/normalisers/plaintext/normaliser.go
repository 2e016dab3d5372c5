// Package plaintext provides the fallback Normaliser: text is kept as is.
package plaintext

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text and source files.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{
		".txt", ".text", ".log", ".csv",
		".go", ".py", ".rs", ".java", ".c", ".h", ".cpp", ".rb", ".sh", ".sql",
		".js", ".jsx", ".ts", ".tsx", ".css",
		".json", ".yaml", ".yml", ".toml", ".xml",
	}
}

// Normalise returns the file text unchanged apart from line endings.
// Content that is not valid UTF-8 is rejected.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawFile) (*domain.NormalisedText, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if !utf8.Valid(raw.Content) {
		return nil, domain.ErrUnsupportedType
	}

	content := strings.ReplaceAll(string(raw.Content), "\r\n", "\n")

	return &domain.NormalisedText{
		Title:   domain.TitleFromFileName(raw.Name),
		Content: content,
		Format:  "plaintext",
	}, nil
}
