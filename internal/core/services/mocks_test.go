package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/embedding/hashing"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors/chunker"
)

// mockEmbedder is a configurable driven.EmbeddingService.
type mockEmbedder struct {
	mu         sync.Mutex
	dims       int
	embedFn    func(text string) []float32
	err        error
	batchCalls int
	embedCalls int
	// dropLast makes EmbedBatch return one embedding fewer than requested.
	dropLast bool
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.embedCalls++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.embedFn(text), nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batchCalls++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		out = append(out, m.embedFn(t))
	}
	if m.dropLast && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int              { return m.dims }
func (m *mockEmbedder) ModelName() string            { return "mock" }
func (m *mockEmbedder) Ping(_ context.Context) error { return m.err }
func (m *mockEmbedder) Close() error                 { return nil }

// constantEmbedder returns the same vector for every text.
func constantEmbedder(vec ...float32) *mockEmbedder {
	return &mockEmbedder{
		dims:    len(vec),
		embedFn: func(string) []float32 { return vec },
	}
}

// failingChunkStore wraps a memory store and fails selected operations.
type failingChunkStore struct {
	*memory.ChunkStore
	replaceErr error
	nearestErr error
}

func (f *failingChunkStore) ReplaceChunks(ctx context.Context, doc domain.DocumentRef, chunks []domain.Chunk) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	return f.ChunkStore.ReplaceChunks(ctx, doc, chunks)
}

func (f *failingChunkStore) Nearest(ctx context.Context, q domain.VectorQuery) ([]domain.ChunkMatch, error) {
	if f.nearestErr != nil {
		return nil, f.nearestErr
	}
	return f.ChunkStore.Nearest(ctx, q)
}

// recordingChunkStore records the limit of every Nearest call.
type recordingChunkStore struct {
	*memory.ChunkStore
	limits []int
}

func (r *recordingChunkStore) Nearest(ctx context.Context, q domain.VectorQuery) ([]domain.ChunkMatch, error) {
	r.limits = append(r.limits, q.Limit)
	return r.ChunkStore.Nearest(ctx, q)
}

// stubEmbeddingValidator records ValidateEmbedding calls.
type stubEmbeddingValidator struct {
	err      error
	calls    int
	settings *domain.EmbeddingSettings
}

func (v *stubEmbeddingValidator) ValidateEmbedding(_ context.Context, settings *domain.EmbeddingSettings) error {
	v.calls++
	v.settings = settings
	return v.err
}

// failingConfigStore rejects every Set.
type failingConfigStore struct {
	*memory.ConfigStore
	err error
}

func (f *failingConfigStore) Set(string, any) error {
	return f.err
}

// testEngine wires the real chunker, hashing embedder and memory store.
type testEngine struct {
	store    *memory.ChunkStore
	embedder driven.EmbeddingService
	index    *IndexService
	search   *SearchService
}

func newTestEngine() *testEngine {
	store := memory.NewChunkStore()
	embedder := hashing.NewEmbeddingService(hashing.Config{})
	defaults := domain.DefaultAppSettings().Search
	return &testEngine{
		store:    store,
		embedder: embedder,
		index:    NewIndexService(chunker.New(), embedder, store),
		search:   NewSearchService(embedder, store, defaults),
	}
}

func float64Ptr(f float64) *float64 {
	return &f
}
