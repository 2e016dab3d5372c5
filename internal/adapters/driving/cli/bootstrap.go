package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/ai"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/config/env"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
	"github.com/custodia-labs/sercha-rag/internal/logger"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors"
)

// servicesInit wires the services before a command runs.
// withEngine is false for commands that only need settings.
// Tests set it to nil and inject services directly.
var servicesInit = initServices

// closers are released in reverse order when Execute returns.
var closers []io.Closer

func initServices(ctx context.Context, withEngine bool) error {
	if err := env.LoadDotEnv(); err != nil {
		return fmt.Errorf("loading .env: %w", err)
	}

	configStore, err := openConfigStore()
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	logger.Debug("config: %s", configStore.Path())

	settingsSvc := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settingsService = settingsSvc
	if !withEngine {
		return nil
	}

	if err := settingsSvc.Validate(); err != nil {
		return fmt.Errorf("invalid settings (run 'sercha-rag settings'): %w", err)
	}
	settings, err := settingsSvc.Get()
	if err != nil {
		return err
	}

	logger.Section("Startup")
	logger.Debug("embedding: %s/%s (%d dims)",
		settings.Embedding.Provider, settings.Embedding.Model, settings.Embedding.Dimensions)
	logger.Debug("storage: %s", settings.Storage.Backend)

	handle := ai.NewHandle(settings.Embedding)
	closers = append(closers, handle)

	store, err := storage.NewChunkStore(ctx, settings)
	if err != nil {
		return fmt.Errorf("opening chunk store: %w", err)
	}
	closers = append(closers, store)

	embedder := handle.Service()
	chunker := postprocessors.NewTextChunker(settings.Chunking)

	indexService = services.NewIndexService(chunker, embedder, store)
	searchService = services.NewSearchService(embedder, store, settings.Search)
	return nil
}

// openConfigStore opens the config file named by --config, or the default
// one, with SERCHA_RAG_* environment variables layered on top.
func openConfigStore() (driven.ConfigStore, error) {
	var (
		base *file.ConfigStore
		err  error
	)
	if cfgFile != "" {
		base, err = file.NewConfigStoreAt(cfgFile)
	} else {
		base, err = file.NewConfigStore("")
	}
	if err != nil {
		return nil, err
	}
	return env.NewConfigStore(base), nil
}

// closeServices releases everything initServices opened.
func closeServices() {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		errs = append(errs, closers[i].Close())
	}
	closers = nil
	if err := errors.Join(errs...); err != nil {
		logger.Warn("shutdown: %v", err)
	}
}
