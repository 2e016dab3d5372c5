// Package postgres provides a PostgreSQL implementation of driven.ChunkStore
// backed by the pgvector extension.
//
// Embeddings live in a vector(N) column whose size is fixed when the schema
// is first created; opening the database with a different size fails with
// domain.ErrDimensionMismatch. Nearest-chunk scans are exact: they order by
// the <=> cosine distance operator without an approximate index.
//
// Migrations are embedded and recorded in rag_schema_migrations. Tables are
// prefixed with rag_ so the store can share a database with the caller's
// document tables.
package postgres
