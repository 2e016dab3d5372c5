package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ChunkStore = (*Store)(nil)

// chunkColumns is the column list scanned by scanChunk.
// The embedding is read in its text form and parsed by pgvector.
const chunkColumns = "id, document_id, content, position, embedding::text"

// ReplaceChunks swaps every chunk of doc.ID for chunks in one transaction.
func (s *Store) ReplaceChunks(ctx context.Context, doc domain.DocumentRef, chunks []domain.Chunk) error {
	for _, chunk := range chunks {
		if len(chunk.Embedding) > 0 {
			if err := domain.CheckDimension(chunk.Embedding, s.dimensions); err != nil {
				return fmt.Errorf("%w: chunk %d: %w", domain.ErrStoreFailure, chunk.Position, err)
			}
		}
	}

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO rag_documents (id, owner_id, title, updated_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (id) DO UPDATE SET
				owner_id = EXCLUDED.owner_id,
				title = EXCLUDED.title,
				updated_at = EXCLUDED.updated_at
		`, doc.ID, doc.OwnerID, doc.Title); err != nil {
			return storeErr("saving document", err)
		}

		if _, err := tx.Exec(ctx, "DELETE FROM rag_chunks WHERE document_id = $1", doc.ID); err != nil {
			return storeErr("deleting chunks", err)
		}

		if len(chunks) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		for _, chunk := range chunks {
			batch.Queue(`
				INSERT INTO rag_chunks (id, document_id, content, position, embedding)
				VALUES ($1, $2, $3, $4, $5)
			`, chunk.ID, doc.ID, chunk.Content, chunk.Position, vectorParam(chunk.Embedding))
		}

		results := tx.SendBatch(ctx, batch)
		for range chunks {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return storeErr("saving chunk", err)
			}
		}
		if err := results.Close(); err != nil {
			return storeErr("saving chunks", err)
		}
		return nil
	})
	if err != nil {
		return storeErr("replacing chunks", err)
	}
	return nil
}

// DeleteDocument removes a document reference and its chunks.
// It reports true only when chunks were removed.
func (s *Store) DeleteDocument(ctx context.Context, documentID string) (bool, error) {
	var removed int64

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		chunksTag, err := tx.Exec(ctx, "DELETE FROM rag_chunks WHERE document_id = $1", documentID)
		if err != nil {
			return storeErr("deleting chunks", err)
		}
		if _, err := tx.Exec(ctx, "DELETE FROM rag_documents WHERE id = $1", documentID); err != nil {
			return storeErr("deleting document", err)
		}
		removed = chunksTag.RowsAffected()
		return nil
	})
	if err != nil {
		return false, storeErr("deleting document", err)
	}

	return removed > 0, nil
}

// GetChunks retrieves all chunks for a document ordered by position.
func (s *Store) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+chunkColumns+`
		FROM rag_chunks WHERE document_id = $1
		ORDER BY position
	`, documentID)
	if err != nil {
		return nil, storeErr("querying chunks", err)
	}
	defer rows.Close()

	chunks := []domain.Chunk{}
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, storeErr("iterating chunks", err)
	}

	return chunks, nil
}

// GetChunk retrieves a specific chunk by ID.
func (s *Store) GetChunk(ctx context.Context, chunkID string) (*domain.Chunk, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+chunkColumns+`
		FROM rag_chunks WHERE id = $1
	`, chunkID)

	return scanChunk(row)
}

// FirstChunk returns the lowest-position chunk of a document.
func (s *Store) FirstChunk(ctx context.Context, documentID string) (*domain.Chunk, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+chunkColumns+`
		FROM rag_chunks WHERE document_id = $1
		ORDER BY position
		LIMIT 1
	`, documentID)

	return scanChunk(row)
}

// Nearest ranks the owner's chunks by cosine distance to q.Vector using the
// pgvector <=> operator. A zero vector yields NaN in pgvector; it is mapped to
// distance 1 to match domain.CosineDistance.
func (s *Store) Nearest(ctx context.Context, q domain.VectorQuery) ([]domain.ChunkMatch, error) {
	if q.Limit <= 0 {
		return []domain.ChunkMatch{}, nil
	}
	if err := domain.CheckDimension(q.Vector, s.dimensions); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreFailure, err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT c.id, c.document_id, c.content, c.position, c.embedding::text, d.title,
		       COALESCE(NULLIF(c.embedding <=> $1, 'NaN'::float8), 1) AS distance
		FROM rag_chunks c
		JOIN rag_documents d ON d.id = c.document_id
		WHERE d.owner_id = $2
		  AND c.embedding IS NOT NULL
		  AND c.document_id <> $3
		ORDER BY distance, c.document_id, c.position
		LIMIT $4
	`, pgvector.NewVector(q.Vector), q.OwnerID, q.ExcludeDocumentID, q.Limit)
	if err != nil {
		return nil, storeErr("querying nearest chunks", err)
	}
	defer rows.Close()

	matches := []domain.ChunkMatch{}
	for rows.Next() {
		var (
			m         domain.ChunkMatch
			embedding *string
		)
		if err := rows.Scan(&m.Chunk.ID, &m.Chunk.DocumentID, &m.Chunk.Content,
			&m.Chunk.Position, &embedding, &m.Title, &m.Distance); err != nil {
			return nil, storeErr("scanning match", err)
		}
		if m.Chunk.Embedding, err = parseVector(embedding); err != nil {
			return nil, storeErr("parsing embedding", err)
		}
		matches = append(matches, m)
	}

	if err := rows.Err(); err != nil {
		return nil, storeErr("iterating matches", err)
	}

	return matches, nil
}

// scanChunk scans one chunk row from pgx.Row or pgx.Rows.
func scanChunk(row pgx.Row) (*domain.Chunk, error) {
	var (
		chunk     domain.Chunk
		embedding *string
	)

	if err := row.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Content,
		&chunk.Position, &embedding); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storeErr("scanning chunk", err)
	}

	vec, err := parseVector(embedding)
	if err != nil {
		return nil, storeErr("parsing embedding", err)
	}
	chunk.Embedding = vec

	return &chunk, nil
}

// vectorParam converts an embedding to a query parameter. Empty becomes NULL.
func vectorParam(vec []float32) any {
	if len(vec) == 0 {
		return nil
	}
	return pgvector.NewVector(vec)
}

// parseVector parses pgvector's text form, e.g. "[1,2,3]". NULL yields nil.
func parseVector(text *string) ([]float32, error) {
	if text == nil {
		return nil, nil
	}
	var v pgvector.Vector
	if err := v.Scan(*text); err != nil {
		return nil, err
	}
	return v.Slice(), nil
}
