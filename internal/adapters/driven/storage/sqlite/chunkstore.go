package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ChunkStore = (*Store)(nil)

// chunkColumns is the column list scanned by scanChunk.
const chunkColumns = "id, document_id, content, position, embedding"

// ReplaceChunks swaps every chunk of doc.ID for chunks in one transaction.
func (s *Store) ReplaceChunks(ctx context.Context, doc domain.DocumentRef, chunks []domain.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("beginning transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO documents (id, owner_id, title, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			owner_id = excluded.owner_id,
			title = excluded.title,
			updated_at = excluded.updated_at
	`, doc.ID, doc.OwnerID, doc.Title); err != nil {
		return storeErr("saving document", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", doc.ID); err != nil {
		return storeErr("deleting chunks", err)
	}

	if len(chunks) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO chunks (id, document_id, content, position, embedding)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return storeErr("preparing statement", err)
		}
		defer stmt.Close()

		for _, chunk := range chunks {
			if _, err := stmt.ExecContext(ctx, chunk.ID, doc.ID, chunk.Content,
				chunk.Position, float32SliceToBytes(chunk.Embedding)); err != nil {
				return storeErr("saving chunk", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return storeErr("committing transaction", err)
	}
	return nil
}

// DeleteDocument removes a document reference and its chunks.
// It reports true only when chunks were removed.
// Chunks are deleted explicitly rather than through the foreign key cascade.
func (s *Store) DeleteDocument(ctx context.Context, documentID string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, storeErr("beginning transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck

	chunksRes, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID)
	if err != nil {
		return false, storeErr("deleting chunks", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", documentID); err != nil {
		return false, storeErr("deleting document", err)
	}

	if err := tx.Commit(); err != nil {
		return false, storeErr("committing transaction", err)
	}

	chunksDeleted, _ := chunksRes.RowsAffected()
	return chunksDeleted > 0, nil
}

// GetChunks retrieves all chunks for a document ordered by position.
func (s *Store) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+chunkColumns+`
		FROM chunks WHERE document_id = ?
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
	row := s.db.QueryRowContext(ctx, `
		SELECT `+chunkColumns+`
		FROM chunks WHERE id = ?
	`, chunkID)

	return scanChunk(row)
}

// FirstChunk returns the lowest-position chunk of a document.
func (s *Store) FirstChunk(ctx context.Context, documentID string) (*domain.Chunk, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+chunkColumns+`
		FROM chunks WHERE document_id = ?
		ORDER BY position
		LIMIT 1
	`, documentID)

	return scanChunk(row)
}

// Nearest ranks the owner's chunks by cosine distance to q.Vector.
// Ties are broken by document and position so results are stable.
func (s *Store) Nearest(ctx context.Context, q domain.VectorQuery) ([]domain.ChunkMatch, error) {
	if q.Limit <= 0 {
		return []domain.ChunkMatch{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.document_id, c.content, c.position, c.embedding, d.title,
		       `+cosineDistanceFunc+`(c.embedding, ?) AS distance
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE d.owner_id = ?
		  AND c.embedding IS NOT NULL
		  AND c.document_id <> ?
		ORDER BY distance, c.document_id, c.position
		LIMIT ?
	`, float32SliceToBytes(q.Vector), q.OwnerID, q.ExcludeDocumentID, q.Limit)
	if err != nil {
		return nil, storeErr("querying nearest chunks", err)
	}
	defer rows.Close()

	matches := []domain.ChunkMatch{}
	for rows.Next() {
		var (
			m             domain.ChunkMatch
			embeddingBlob []byte
		)
		if err := rows.Scan(&m.Chunk.ID, &m.Chunk.DocumentID, &m.Chunk.Content,
			&m.Chunk.Position, &embeddingBlob, &m.Title, &m.Distance); err != nil {
			return nil, storeErr("scanning match", err)
		}
		m.Chunk.Embedding = bytesToFloat32Slice(embeddingBlob)
		matches = append(matches, m)
	}

	if err := rows.Err(); err != nil {
		return nil, storeErr("iterating matches", err)
	}

	return matches, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanChunk scans one chunk row.
func scanChunk(row rowScanner) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var embeddingBlob []byte

	if err := row.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Content,
		&chunk.Position, &embeddingBlob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storeErr("scanning chunk", err)
	}

	chunk.Embedding = bytesToFloat32Slice(embeddingBlob)

	return &chunk, nil
}
