package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

type embeddingsRequest struct {
	Input      []string `json:"input"`
	Model      string   `json:"model"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingData struct {
	Object    string    `json:"object"`
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

// fakeAPI serves /embeddings by returning [len(input), index] in reverse order,
// and /models with an empty list.
type fakeAPI struct {
	requests atomic.Int32
	lastReq  atomic.Pointer[embeddingsRequest]
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch r.URL.Path {
	case "/embeddings":
		f.requests.Add(1)
		var req embeddingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.lastReq.Store(&req)

		data := make([]embeddingData, 0, len(req.Input))
		for i := len(req.Input) - 1; i >= 0; i-- {
			data = append(data, embeddingData{
				Object:    "embedding",
				Embedding: []float32{float32(len(req.Input[i])), float32(i)},
				Index:     i,
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  req.Model,
			"usage":  map[string]int{"prompt_tokens": 1, "total_tokens": 1},
		})
	case "/models":
		_, _ = w.Write([]byte(`{"object":"list","data":[]}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestService(t *testing.T, cfg Config) (*EmbeddingService, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	cfg.BaseURL = srv.URL
	if cfg.APIKey == "" {
		cfg.APIKey = "test-key"
	}
	svc, err := NewEmbeddingService(cfg)
	require.NoError(t, err)
	return svc, api
}

func TestNewEmbeddingService_RequiresAPIKey(t *testing.T) {
	_, err := NewEmbeddingService(Config{})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNewEmbeddingService_Dimensions(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		wantD int
	}{
		{"default model", Config{APIKey: "k"}, 1536},
		{"large model", Config{APIKey: "k", Model: "text-embedding-3-large"}, 3072},
		{"unknown model falls back", Config{APIKey: "k", Model: "custom"}, 1536},
		{"explicit override", Config{APIKey: "k", Dimensions: 256}, 256},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewEmbeddingService(tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.wantD, svc.Dimensions())
		})
	}
}

func TestEmbeddingService_ModelName(t *testing.T) {
	svc, err := NewEmbeddingService(Config{APIKey: "k"})
	require.NoError(t, err)

	assert.Equal(t, DefaultModel, svc.ModelName())
}

func TestEmbeddingService_Embed(t *testing.T) {
	svc, api := newTestService(t, Config{Dimensions: 2})

	vec, err := svc.Embed(context.Background(), "hello")

	require.NoError(t, err)
	assert.Equal(t, []float32{5, 0}, vec)
	req := api.lastReq.Load()
	require.NotNil(t, req)
	assert.Equal(t, DefaultModel, req.Model)
	assert.Equal(t, 2, req.Dimensions)
}

func TestEmbeddingService_EmbedBatch_OrdersByIndex(t *testing.T) {
	svc, _ := newTestService(t, Config{Dimensions: 2})

	vecs, err := svc.EmbedBatch(context.Background(), []string{"a", "bbb", "cc"})

	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {3, 1}, {2, 2}}, vecs)
}

func TestEmbeddingService_EmbedBatch_SplitsRequests(t *testing.T) {
	svc, api := newTestService(t, Config{Dimensions: 2, BatchSize: 2})

	vecs, err := svc.EmbedBatch(context.Background(), []string{"a", "bb", "ccc", "dddd", "eeeee"})

	require.NoError(t, err)
	require.Len(t, vecs, 5)
	for i, v := range vecs {
		assert.Equal(t, float32(i+1), v[0])
	}
	assert.Equal(t, int32(3), api.requests.Load())
}

func TestEmbeddingService_EmbedBatch_Empty(t *testing.T) {
	svc, api := newTestService(t, Config{})

	vecs, err := svc.EmbedBatch(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, vecs)
	assert.Equal(t, int32(0), api.requests.Load())
}

func TestEmbeddingService_NoDimensionsForLegacyModel(t *testing.T) {
	svc, api := newTestService(t, Config{Model: "text-embedding-ada-002"})

	_, err := svc.Embed(context.Background(), "hello")

	require.NoError(t, err)
	assert.Equal(t, 0, api.lastReq.Load().Dimensions)
}

func TestEmbeddingService_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	svc, err := NewEmbeddingService(Config{APIKey: "bad", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = svc.Embed(context.Background(), "hello")
	assert.ErrorIs(t, err, domain.ErrProviderFailure)
	assert.Contains(t, err.Error(), "Incorrect API key")

	err = svc.Ping(context.Background())
	assert.ErrorIs(t, err, domain.ErrProviderFailure)
}

func TestEmbeddingService_CountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"object":"embedding","embedding":[1],"index":0}]}`))
	}))
	defer srv.Close()

	svc, err := NewEmbeddingService(Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = svc.EmbedBatch(context.Background(), []string{"a", "b"})
	assert.ErrorIs(t, err, domain.ErrProviderFailure)
}

func TestEmbeddingService_RateLimitHonoursContext(t *testing.T) {
	svc, api := newTestService(t, Config{Dimensions: 2, RequestsPerMinute: 1})

	// The first request consumes the only token.
	_, err := svc.Embed(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = svc.Embed(ctx, "second")
	assert.ErrorIs(t, err, domain.ErrProviderFailure)
	assert.Equal(t, int32(1), api.requests.Load())
}

func TestEmbeddingService_Ping(t *testing.T) {
	svc, _ := newTestService(t, Config{})

	assert.NoError(t, svc.Ping(context.Background()))
}

func TestEmbeddingService_Close(t *testing.T) {
	svc, _ := newTestService(t, Config{})
	assert.NoError(t, svc.Close())
}
