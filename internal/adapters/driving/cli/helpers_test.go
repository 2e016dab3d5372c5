package cli

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/embedding/hashing"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors"
)

func TestMain(m *testing.M) {
	// Commands under test use injected services, never the user's config.
	servicesInit = nil
	os.Exit(m.Run())
}

// Seeded test corpus.
const (
	testOwner = "alice"

	rustDocID   = "doc-rust"
	rustTitle   = "Rust Ownership"
	rustContent = "Rust's ownership system guarantees memory safety without a garbage collector."

	goDocID   = "doc-go"
	goTitle   = "Go Concurrency"
	goContent = "Goroutines and channels make concurrent programs simple to write."
)

// setupTestServices wires real services over memory stores and the hashing
// embedder, seeds two documents for testOwner, and returns a restore func.
func setupTestServices() func() {
	oldIndex, oldSearch, oldSettings := indexService, searchService, settingsService

	defaults := domain.DefaultAppSettings()
	store := memory.NewChunkStore()
	embedder := hashing.NewEmbeddingService(hashing.Config{Dimensions: defaults.Embedding.Dimensions})

	index := services.NewIndexService(postprocessors.NewTextChunker(defaults.Chunking), embedder, store)
	indexService = index
	searchService = services.NewSearchService(embedder, store, defaults.Search)
	settingsService = services.NewSettingsService(memory.NewConfigStore(), nil)

	ctx := context.Background()
	if _, err := index.IndexDocument(ctx, rustDocID, rustTitle, rustContent, testOwner); err != nil {
		panic(err)
	}
	if _, err := index.IndexDocument(ctx, goDocID, goTitle, goContent, testOwner); err != nil {
		panic(err)
	}

	return func() {
		indexService, searchService, settingsService = oldIndex, oldSearch, oldSettings
	}
}

// runCommand executes the root command with args and returns its output.
// Flags are reset afterwards so values do not leak between tests.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		resetFlags(rootCmd)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag in the tree to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// mockSearchServiceError fails every call.
type mockSearchServiceError struct{}

func (m *mockSearchServiceError) Search(_ context.Context, _ string, _ domain.SearchOptions) ([]domain.SearchResult, error) {
	return nil, domain.ErrProviderFailure
}

func (m *mockSearchServiceError) FindSimilar(_ context.Context, _, _ string, _ int) ([]domain.SimilarDocument, error) {
	return nil, domain.ErrStoreFailure
}

var _ driving.SearchService = (*mockSearchServiceError)(nil)
