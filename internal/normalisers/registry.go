package normalisers

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/normalisers/html"
	"github.com/custodia-labs/sercha-rag/internal/normalisers/markdown"
	"github.com/custodia-labs/sercha-rag/internal/normalisers/plaintext"
)

// Registry selects a normaliser by file extension.
type Registry struct {
	mu       sync.RWMutex
	byExt    map[string]driven.Normaliser
	fallback driven.Normaliser
}

// NewRegistry creates a registry that uses fallback for unknown extensions.
func NewRegistry(fallback driven.Normaliser) *Registry {
	return &Registry{
		byExt:    make(map[string]driven.Normaliser),
		fallback: fallback,
	}
}

// Default returns a registry with the markdown and HTML normalisers and a
// plain text fallback.
func Default() *Registry {
	r := NewRegistry(plaintext.New())
	r.Register(markdown.New())
	r.Register(html.New())
	return r
}

// Register adds n for each of its extensions, replacing earlier entries.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range n.SupportedExtensions() {
		r.byExt[strings.ToLower(ext)] = n
	}
}

// Get returns the normaliser for name's extension, or the fallback.
func (r *Registry) Get(name string) driven.Normaliser {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if n, ok := r.byExt[strings.ToLower(filepath.Ext(name))]; ok {
		return n
	}
	return r.fallback
}

// Normalise extracts plain text from raw with the matching normaliser.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawFile) (*domain.NormalisedText, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: file is required", domain.ErrInvalidInput)
	}
	n := r.Get(raw.Name)
	if n == nil {
		return nil, fmt.Errorf("%w: no normaliser for %q", domain.ErrUnsupportedType, raw.Name)
	}
	return n.Normalise(ctx, raw)
}
