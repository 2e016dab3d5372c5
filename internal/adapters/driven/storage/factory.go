// Package storage selects the chunk store backend from settings.
package storage

import (
	"context"
	"fmt"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// NewChunkStore opens the chunk store named by settings.Storage.Backend.
// Postgres needs the embedding dimension to size its vector column.
func NewChunkStore(ctx context.Context, settings *domain.AppSettings) (driven.ChunkStore, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: settings are required", domain.ErrInvalidInput)
	}

	switch settings.Storage.Backend {
	case domain.StorageSQLite, "":
		store, err := sqlite.NewStore(settings.Storage.DataDir)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrStoreFailure, err)
		}
		return store, nil

	case domain.StoragePostgres:
		return postgres.NewStore(ctx, postgres.Config{
			DSN:        settings.Storage.PostgresDSN,
			Dimensions: settings.Embedding.Dimensions,
		})

	case domain.StorageMemory:
		return memory.NewChunkStore(), nil

	default:
		return nil, fmt.Errorf("%w: storage backend %q", domain.ErrUnsupportedType, settings.Storage.Backend)
	}
}
