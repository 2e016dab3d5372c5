// Package sqlite provides a SQLite-based implementation of driven.ChunkStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files;
// applied versions are recorded in schema_migrations.
//
// # Vector Search
//
// Embeddings are stored as little-endian float32 blobs. Nearest-chunk scans
// rank rows with vec_cosine_distance, a deterministic SQL function registered
// on the driver, so ordering and limiting happen inside SQLite.
//
// # Data Location
//
// By default, the database is stored at ~/.sercha-rag/data/chunks.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
