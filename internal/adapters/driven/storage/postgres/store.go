package postgres

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/postgres/migrations"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// dimensionsPlaceholder is replaced in migration scripts with the vector size.
const dimensionsPlaceholder = "{{dimensions}}"

// migrationLockID serialises concurrent migrators via pg_advisory_xact_lock.
const migrationLockID = 7251839

// Config holds PostgreSQL store configuration.
type Config struct {
	// DSN is the connection string (URL or key=value form).
	DSN string

	// Dimensions is the embedding size of the vector column.
	Dimensions int

	// MaxConns caps the pool size. Zero uses the pgxpool default.
	MaxConns int32

	// ConnectTimeout bounds the initial connection and migration.
	ConnectTimeout time.Duration
}

// Store is a PostgreSQL chunk store using the pgvector extension.
type Store struct {
	pool       *pgxpool.Pool
	dimensions int
}

// NewStore connects to PostgreSQL and applies pending migrations.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("%w: postgres DSN is required", domain.ErrInvalidInput)
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("%w: vector dimensions must be positive", domain.ErrInvalidInput)
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 30 * time.Second
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing DSN: %w", domain.ErrInvalidInput, err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, storeErr("creating pool", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, storeErr("connecting", err)
	}

	s := &Store{pool: pool, dimensions: cfg.Dimensions}

	if err := s.migrate(ctx, migrations.FS); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	if err := s.checkDimensions(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Dimensions returns the vector size the store was opened with.
func (s *Store) Dimensions() int {
	return s.dimensions
}

// migrate runs all pending migrations, recording each applied version.
func (s *Store) migrate(ctx context.Context, fsys fs.FS) error {
	if _, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS rag_schema_migrations (
			version    INTEGER PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`); err != nil {
		return storeErr("creating schema_migrations table", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if err := s.apply(ctx, version, renderMigration(string(content), s.dimensions)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// apply executes one migration unless its version is already recorded.
// The advisory lock keeps concurrent processes from applying it twice.
func (s *Store) apply(ctx context.Context, version int, script string) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", migrationLockID); err != nil {
			return storeErr("acquiring migration lock", err)
		}

		var applied bool
		if err := tx.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM rag_schema_migrations WHERE version = $1)", version,
		).Scan(&applied); err != nil {
			return storeErr("checking migration version", err)
		}
		if applied {
			return nil
		}

		if _, err := tx.Exec(ctx, script); err != nil {
			return storeErr("applying migration", err)
		}
		if _, err := tx.Exec(ctx, "INSERT INTO rag_schema_migrations (version) VALUES ($1)", version); err != nil {
			return storeErr("recording migration", err)
		}
		return nil
	})
}

// checkDimensions rejects a database created for a different vector size.
func (s *Store) checkDimensions(ctx context.Context) error {
	var stored string
	err := s.pool.QueryRow(ctx, "SELECT value FROM rag_meta WHERE key = 'dimensions'").Scan(&stored)
	if err != nil {
		return storeErr("reading stored dimensions", err)
	}
	if n, err := strconv.Atoi(stored); err != nil || n != s.dimensions {
		return fmt.Errorf("%w: database holds %s-dimensional vectors, configured %d",
			domain.ErrDimensionMismatch, stored, s.dimensions)
	}
	return nil
}

// renderMigration substitutes the vector size into a migration script.
func renderMigration(script string, dimensions int) string {
	return strings.ReplaceAll(script, dimensionsPlaceholder, strconv.Itoa(dimensions))
}

// storeErr wraps a database failure in domain.ErrStoreFailure.
func storeErr(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrStoreFailure) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrStoreFailure, op, err)
}
