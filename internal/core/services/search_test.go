package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// seedCorpus indexes a small multi-owner corpus.
func seedCorpus(t *testing.T, e *testEngine) {
	t.Helper()
	ctx := context.Background()

	docs := []struct {
		id, owner, title, content string
	}{
		{"rust", "alice", rustTitle, rustContent},
		{"go", "alice", "Go Concurrency", "Goroutines and channels make concurrency simple. Memory is garbage collected."},
		{"cook", "alice", "Pasta Recipe", "Boil water with salt. Cook the pasta until al dente."},
		{"bob-rust", "bob", "Rust Memory", "Rust memory safety comes from ownership and borrowing."},
		{"bob-garden", "bob", "Gardening", "Tomatoes need full sun and regular watering."},
	}
	for _, d := range docs {
		_, err := e.index.IndexDocument(ctx, d.id, d.title, d.content, d.owner)
		require.NoError(t, err)
	}
}

func TestSearchService_RustOwnershipScenario(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	ids, err := e.index.IndexDocument(ctx, "d1", rustTitle, rustContent, "U1")
	require.NoError(t, err)
	require.Len(t, ids, 1)

	results, err := e.search.Search(ctx, "memory safety", domain.SearchOptions{
		OwnerID:   "U1",
		Limit:     10,
		Threshold: float64Ptr(0.0),
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "d1", results[0].DocumentID)
	assert.Equal(t, rustTitle, results[0].Title)
	assert.Greater(t, results[0].Score, 0.0)
	assert.Equal(t, rustTitle+"\n\n"+rustContent, results[0].ContentPreview)
}

func TestSearchService_OwnerIsolation(t *testing.T) {
	e := newTestEngine()
	seedCorpus(t, e)
	ctx := context.Background()

	bobDocs := map[string]bool{"bob-rust": true, "bob-garden": true}
	for _, query := range []string{"rust memory safety", "tomatoes", "pasta", "ownership borrowing"} {
		results, err := e.search.Search(ctx, query, domain.SearchOptions{
			OwnerID:   "alice",
			Threshold: float64Ptr(0.0),
		})
		require.NoError(t, err)
		for _, r := range results {
			assert.False(t, bobDocs[r.DocumentID], "query %q leaked %s", query, r.DocumentID)
		}
	}
}

func TestSearchService_ThresholdMonotonicity(t *testing.T) {
	e := newTestEngine()
	seedCorpus(t, e)
	ctx := context.Background()

	previous := -1
	for _, threshold := range []float64{0.0, 0.05, 0.1, 0.2, 0.3, 0.5, 0.7, 0.9, 1.0} {
		results, err := e.search.Search(ctx, "memory safety in rust", domain.SearchOptions{
			OwnerID:   "alice",
			Threshold: float64Ptr(threshold),
		})
		require.NoError(t, err)
		if previous >= 0 {
			assert.LessOrEqual(t, len(results), previous, "threshold %.2f", threshold)
		}
		for _, r := range results {
			assert.GreaterOrEqual(t, r.Score, threshold)
		}
		previous = len(results)
	}
}

func TestSearchService_DedupByDocument(t *testing.T) {
	store := memory.NewChunkStore()
	ctx := context.Background()
	// Every chunk embeds to the same vector, so all chunks tie.
	embedder := constantEmbedder(1, 0)
	svc := NewSearchService(embedder, store, domain.SearchSettings{DefaultLimit: 10})

	for _, doc := range []string{"a", "b"} {
		chunks := make([]domain.Chunk, 5)
		for i := range chunks {
			chunks[i] = domain.Chunk{
				ID:        fmt.Sprintf("%s-%d", doc, i),
				Content:   fmt.Sprintf("chunk %d of %s", i, doc),
				Position:  i,
				Embedding: []float32{1, 0},
			}
		}
		require.NoError(t, store.ReplaceChunks(ctx, domain.DocumentRef{ID: doc, OwnerID: "o", Title: doc}, chunks))
	}

	results, err := svc.Search(ctx, "anything", domain.SearchOptions{OwnerID: "o", Threshold: float64Ptr(0)})
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, r := range results {
		assert.False(t, seen[r.DocumentID], "duplicate %s", r.DocumentID)
		seen[r.DocumentID] = true
	}
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].DocumentID)
	assert.Equal(t, "chunk 0 of a", results[0].ContentPreview)
}

func TestSearchService_OverFetchesTwiceTheLimit(t *testing.T) {
	store := &recordingChunkStore{ChunkStore: memory.NewChunkStore()}
	svc := NewSearchService(constantEmbedder(1), store, domain.SearchSettings{DefaultLimit: 7})
	ctx := context.Background()

	_, err := svc.Search(ctx, "q", domain.SearchOptions{OwnerID: "o", Limit: 3})
	require.NoError(t, err)
	_, err = svc.Search(ctx, "q", domain.SearchOptions{OwnerID: "o"})
	require.NoError(t, err)
	_, err = svc.FindSimilar(ctx, "missing", "o", 0)
	require.NoError(t, err)

	assert.Equal(t, []int{6, 14}, store.limits)
}

func TestSearchService_HugeLimitIsClamped(t *testing.T) {
	store := &recordingChunkStore{ChunkStore: memory.NewChunkStore()}
	ctx := context.Background()
	require.NoError(t, store.ReplaceChunks(ctx, domain.DocumentRef{ID: "d1", OwnerID: "U1", Title: "One"},
		[]domain.Chunk{{ID: "c1", DocumentID: "d1", Content: "x", Embedding: []float32{1}}}))
	require.NoError(t, store.ReplaceChunks(ctx, domain.DocumentRef{ID: "d2", OwnerID: "U1", Title: "Two"},
		[]domain.Chunk{{ID: "c2", DocumentID: "d2", Content: "y", Embedding: []float32{1}}}))
	svc := NewSearchService(constantEmbedder(1), store, domain.SearchSettings{DefaultLimit: 10})

	tests := []struct {
		name  string
		limit int
	}{
		{"max int", math.MaxInt},
		{"overflows when doubled", math.MaxInt/2 + 1},
		{"just above cap", maxResultLimit + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store.limits = nil

			results, err := svc.Search(ctx, "memory safety", domain.SearchOptions{
				OwnerID:   "U1",
				Limit:     tt.limit,
				Threshold: float64Ptr(0),
			})
			require.NoError(t, err)
			assert.Len(t, results, 2)

			similar, err := svc.FindSimilar(ctx, "d1", "U1", tt.limit)
			require.NoError(t, err)
			require.Len(t, similar, 1)
			assert.Equal(t, "d2", similar[0].DocumentID)

			want := maxResultLimit * overFetchFactor
			assert.Equal(t, []int{want, want}, store.limits)
		})
	}
}

func TestSearchService_LimitTruncates(t *testing.T) {
	store := memory.NewChunkStore()
	ctx := context.Background()
	for i := 0; i < 6; i++ {
		id := fmt.Sprintf("doc-%d", i)
		require.NoError(t, store.ReplaceChunks(ctx, domain.DocumentRef{ID: id, OwnerID: "o"},
			[]domain.Chunk{{ID: id + "-0", Content: "x", Embedding: []float32{1, float32(i)}}}))
	}
	svc := NewSearchService(constantEmbedder(1, 0), store, domain.SearchSettings{})

	results, err := svc.Search(ctx, "q", domain.SearchOptions{OwnerID: "o", Limit: 4, Threshold: float64Ptr(0)})
	require.NoError(t, err)
	require.Len(t, results, 4)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
	assert.Equal(t, "doc-0", results[0].DocumentID)
}

func TestSearchService_DefaultThresholdApplies(t *testing.T) {
	store := memory.NewChunkStore()
	ctx := context.Background()
	require.NoError(t, store.ReplaceChunks(ctx, domain.DocumentRef{ID: "near", OwnerID: "o"},
		[]domain.Chunk{{ID: "n", Content: "x", Embedding: []float32{1, 0}}}))
	require.NoError(t, store.ReplaceChunks(ctx, domain.DocumentRef{ID: "far", OwnerID: "o"},
		[]domain.Chunk{{ID: "f", Content: "x", Embedding: []float32{0, 1}}}))
	svc := NewSearchService(constantEmbedder(1, 0), store, domain.SearchSettings{DefaultLimit: 10, Threshold: 0.7})

	results, err := svc.Search(ctx, "q", domain.SearchOptions{OwnerID: "o"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "near", results[0].DocumentID)

	results, err = svc.Search(ctx, "q", domain.SearchOptions{OwnerID: "o", Threshold: float64Ptr(0)})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchService_PreviewTruncation(t *testing.T) {
	store := memory.NewChunkStore()
	ctx := context.Background()
	long := strings.Repeat("é", 250)
	require.NoError(t, store.ReplaceChunks(ctx, domain.DocumentRef{ID: "d", OwnerID: "o"},
		[]domain.Chunk{{ID: "c", Content: long, Embedding: []float32{1}}}))
	svc := NewSearchService(constantEmbedder(1), store, domain.SearchSettings{})

	results, err := svc.Search(ctx, "q", domain.SearchOptions{OwnerID: "o", Threshold: float64Ptr(0)})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, strings.Repeat("é", 197)+"...", results[0].ContentPreview)
}

func TestSearchService_EmptyQuery(t *testing.T) {
	embedder := constantEmbedder(1)
	svc := NewSearchService(embedder, memory.NewChunkStore(), domain.SearchSettings{})

	for _, q := range []string{"", "   "} {
		results, err := svc.Search(context.Background(), q, domain.SearchOptions{OwnerID: "o"})
		require.NoError(t, err)
		assert.NotNil(t, results)
		assert.Empty(t, results)
	}
	assert.Equal(t, 0, embedder.embedCalls)
}

func TestSearchService_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing owner", func(t *testing.T) {
		svc := NewSearchService(constantEmbedder(1), memory.NewChunkStore(), domain.SearchSettings{})
		_, err := svc.Search(ctx, "q", domain.SearchOptions{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("provider failure", func(t *testing.T) {
		embedder := constantEmbedder(1)
		embedder.err = errors.New("timeout")
		svc := NewSearchService(embedder, memory.NewChunkStore(), domain.SearchSettings{})
		_, err := svc.Search(ctx, "q", domain.SearchOptions{OwnerID: "o"})
		assert.ErrorIs(t, err, domain.ErrProviderFailure)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		embedder := constantEmbedder(1, 0)
		embedder.dims = 3
		svc := NewSearchService(embedder, memory.NewChunkStore(), domain.SearchSettings{})
		_, err := svc.Search(ctx, "q", domain.SearchOptions{OwnerID: "o"})
		assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	})

	t.Run("store failure", func(t *testing.T) {
		store := &failingChunkStore{ChunkStore: memory.NewChunkStore(), nearestErr: domain.ErrStoreFailure}
		svc := NewSearchService(constantEmbedder(1), store, domain.SearchSettings{})
		_, err := svc.Search(ctx, "q", domain.SearchOptions{OwnerID: "o"})
		assert.ErrorIs(t, err, domain.ErrStoreFailure)
	})

	t.Run("no embedding service", func(t *testing.T) {
		svc := NewSearchService(nil, memory.NewChunkStore(), domain.SearchSettings{})
		_, err := svc.Search(ctx, "q", domain.SearchOptions{OwnerID: "o"})
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})
}

func TestSearchService_FindSimilar(t *testing.T) {
	e := newTestEngine()
	seedCorpus(t, e)
	ctx := context.Background()

	results, err := e.search.FindSimilar(ctx, "rust", "alice", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	seen := map[string]bool{}
	for _, r := range results {
		assert.NotEqual(t, "rust", r.DocumentID)
		assert.NotContains(t, []string{"bob-rust", "bob-garden"}, r.DocumentID)
		assert.False(t, seen[r.DocumentID])
		seen[r.DocumentID] = true
	}
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].SimilarityScore, results[i].SimilarityScore)
	}
}

func TestSearchService_FindSimilar_UsesFirstChunkAndNoThreshold(t *testing.T) {
	store := memory.NewChunkStore()
	ctx := context.Background()
	require.NoError(t, store.ReplaceChunks(ctx, domain.DocumentRef{ID: "src", OwnerID: "o"}, []domain.Chunk{
		{ID: "s0", Content: "x", Position: 0, Embedding: []float32{1, 0}},
		{ID: "s1", Content: "y", Position: 1, Embedding: []float32{0, 1}},
	}))
	require.NoError(t, store.ReplaceChunks(ctx, domain.DocumentRef{ID: "same", OwnerID: "o", Title: "Same"},
		[]domain.Chunk{{ID: "a", Content: "x", Embedding: []float32{1, 0}}}))
	require.NoError(t, store.ReplaceChunks(ctx, domain.DocumentRef{ID: "orthogonal", OwnerID: "o", Title: "Orth"},
		[]domain.Chunk{{ID: "b", Content: "y", Embedding: []float32{0, 1}}}))
	svc := NewSearchService(nil, store, domain.SearchSettings{Threshold: 0.9})

	results, err := svc.FindSimilar(ctx, "src", "o", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "same", results[0].DocumentID)
	assert.Equal(t, "Same", results[0].Title)
	assert.InDelta(t, 1.0, results[0].SimilarityScore, 1e-6)
	assert.Equal(t, "orthogonal", results[1].DocumentID)
	assert.InDelta(t, 0.0, results[1].SimilarityScore, 1e-6)
}

func TestSearchService_FindSimilar_Limit(t *testing.T) {
	store := memory.NewChunkStore()
	ctx := context.Background()
	require.NoError(t, store.ReplaceChunks(ctx, domain.DocumentRef{ID: "src", OwnerID: "o"},
		[]domain.Chunk{{ID: "s", Content: "x", Embedding: []float32{1}}}))
	for i := 0; i < 8; i++ {
		id := fmt.Sprintf("d%d", i)
		require.NoError(t, store.ReplaceChunks(ctx, domain.DocumentRef{ID: id, OwnerID: "o"},
			[]domain.Chunk{{ID: id, Content: "x", Embedding: []float32{1}}}))
	}
	svc := NewSearchService(nil, store, domain.SearchSettings{})

	results, err := svc.FindSimilar(ctx, "src", "o", 0)
	require.NoError(t, err)
	assert.Len(t, results, 5)

	results, err = svc.FindSimilar(ctx, "src", "o", 3)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestSearchService_FindSimilar_NoChunks(t *testing.T) {
	e := newTestEngine()
	seedCorpus(t, e)

	results, err := e.search.FindSimilar(context.Background(), "never-indexed", "alice", 5)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestSearchService_FindSimilar_InvalidInput(t *testing.T) {
	svc := NewSearchService(nil, memory.NewChunkStore(), domain.SearchSettings{})

	_, err := svc.FindSimilar(context.Background(), "", "o", 5)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.FindSimilar(context.Background(), "doc", "", 5)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
