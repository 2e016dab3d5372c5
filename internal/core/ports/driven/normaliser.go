package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// Normaliser extracts indexable plain text from one file format.
type Normaliser interface {
	// SupportedExtensions returns the lower-case file extensions handled,
	// including the leading dot.
	SupportedExtensions() []string

	// Normalise converts raw file content to plain text.
	Normalise(ctx context.Context, raw *domain.RawFile) (*domain.NormalisedText, error)
}
