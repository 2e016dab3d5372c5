package ai

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// errHandleClosed is returned by Get after Close.
var errHandleClosed = errors.New("embedding handle closed")

// Factory creates an embedding service from settings.
type Factory func(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error)

// Handle holds the process-wide embedding service.
// The service is created on first use and reused for every later call;
// Close tears it down at shutdown.
type Handle struct {
	settings domain.EmbeddingSettings
	create   Factory

	once   sync.Once
	mu     sync.Mutex
	svc    driven.EmbeddingService
	err    error
	closed bool
}

// NewHandle creates a handle that builds its service with CreateEmbeddingService.
func NewHandle(settings domain.EmbeddingSettings) *Handle {
	return NewHandleWithFactory(settings, CreateEmbeddingService)
}

// NewHandleWithFactory creates a handle with a custom service factory.
func NewHandleWithFactory(settings domain.EmbeddingSettings, create Factory) *Handle {
	return &Handle{
		settings: settings,
		create:   create,
	}
}

// Get returns the shared service, creating it on the first call.
// A creation failure is remembered and returned on every call.
func (h *Handle) Get() (driven.EmbeddingService, error) {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, errHandleClosed)
	}

	h.once.Do(func() {
		svc, err := h.create(&h.settings)
		if err == nil && svc == nil {
			err = domain.ErrEmbeddingUnavailable
		}

		h.mu.Lock()
		defer h.mu.Unlock()
		if h.closed && svc != nil {
			svc.Close()
			svc, err = nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, errHandleClosed)
		}
		h.svc, h.err = svc, err
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.svc, h.err
}

// Settings returns the settings the service is built from.
func (h *Handle) Settings() domain.EmbeddingSettings {
	return h.settings
}

// Service returns an EmbeddingService that resolves the shared service on
// every call. Dimensions and ModelName answer from settings without creating it.
func (h *Handle) Service() driven.EmbeddingService {
	return &lazyService{handle: h}
}

// Close releases the shared service if it was created.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	if h.svc == nil {
		return nil
	}
	return h.svc.Close()
}

// lazyService adapts a Handle to driven.EmbeddingService.
type lazyService struct {
	handle *Handle
}

// Ensure lazyService implements the interface.
var _ driven.EmbeddingService = (*lazyService)(nil)

func (l *lazyService) Embed(ctx context.Context, text string) ([]float32, error) {
	svc, err := l.handle.Get()
	if err != nil {
		return nil, err
	}
	return svc.Embed(ctx, text)
}

func (l *lazyService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	svc, err := l.handle.Get()
	if err != nil {
		return nil, err
	}
	return svc.EmbedBatch(ctx, texts)
}

func (l *lazyService) Dimensions() int {
	if d := l.handle.settings.Dimensions; d > 0 {
		return d
	}
	svc, err := l.handle.Get()
	if err != nil {
		return 0
	}
	return svc.Dimensions()
}

func (l *lazyService) ModelName() string {
	return modelOrDefault(&l.handle.settings)
}

func (l *lazyService) Ping(ctx context.Context) error {
	svc, err := l.handle.Get()
	if err != nil {
		return err
	}
	return svc.Ping(ctx)
}

// Close is a no-op; the Handle owner closes the shared service.
func (l *lazyService) Close() error {
	return nil
}
