// Package sqlindex provides a SQLite-backed implementation of
// knowledge.Index. Embeddings are stored as little-endian float32 blobs and
// search is a brute-force cosine scan, which is plenty for a knowledge base
// of Q/A chunks.
package sqlindex

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	_ "modernc.org/sqlite"

	"github.com/Balaji1472/Automated-Email-Assistant/internal/knowledge"
)

const schema = `
CREATE TABLE IF NOT EXISTS knowledge_chunks (
	id        TEXT PRIMARY KEY,
	question  TEXT NOT NULL,
	answer    TEXT NOT NULL,
	text      TEXT NOT NULL,
	embedding BLOB NOT NULL
);`

// Index persists knowledge chunks and embeddings in SQLite.
type Index struct {
	db *sql.DB
}

// Open opens (or creates) the index database at path and applies the schema.
// Pass ":memory:" for an in-memory database (used by tests).
func Open(path string) (*Index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging index database: %w", err)
	}

	// Single connection avoids "database is locked" errors; ingestion is the
	// only writer and queries are short scans.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying index schema: %w", err)
	}

	return &Index{db: db}, nil
}

// Close closes the underlying database.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Upsert replaces the stored chunk set in a single transaction. Ids from a
// previous ingestion that are absent from the new set are removed, so a
// shrinking knowledge file cannot leave stale chunks behind.
func (ix *Index) Upsert(ctx context.Context, chunks []knowledge.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks and vectors length mismatch: %d != %d", len(chunks), len(vectors))
	}

	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning upsert transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM knowledge_chunks`); err != nil {
		tx.Rollback()
		return fmt.Errorf("clearing previous chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO knowledge_chunks (id, question, answer, text, embedding)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing insert statement: %w", err)
	}
	defer stmt.Close()

	for i, c := range chunks {
		if _, err := stmt.ExecContext(ctx, c.ID, c.Question, c.Answer, c.Text, encodeFloat32s(vectors[i])); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting chunk %s: %w", c.ID, err)
		}
	}

	return tx.Commit()
}

// Search performs a brute-force cosine scan over all stored chunks and
// returns the top-k, most similar first.
func (ix *Index) Search(ctx context.Context, vector []float32, k int) ([]knowledge.ScoredChunk, error) {
	if k <= 0 {
		return nil, nil
	}

	queryNorm := norm(vector)
	if queryNorm == 0 {
		return nil, nil
	}

	rows, err := ix.db.QueryContext(ctx, `SELECT id, question, answer, text, embedding FROM knowledge_chunks`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var results []knowledge.ScoredChunk
	for rows.Next() {
		var c knowledge.Chunk
		var blob []byte
		if err := rows.Scan(&c.ID, &c.Question, &c.Answer, &c.Text, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk row: %w", err)
		}
		emb, err := decodeFloat32s(blob)
		if err != nil {
			return nil, fmt.Errorf("decoding embedding for %s: %w", c.ID, err)
		}
		results = append(results, knowledge.ScoredChunk{
			Chunk: c,
			Score: cosineWithNorm(vector, emb, queryNorm),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// Count returns the number of stored chunks.
func (ix *Index) Count(ctx context.Context) (int, error) {
	var n int
	if err := ix.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM knowledge_chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// encodeFloat32s serializes a float32 slice as little-endian bytes.
func encodeFloat32s(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// decodeFloat32s deserializes little-endian bytes into a float32 slice.
func decodeFloat32s(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("byte slice length %d is not a multiple of 4", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}

// norm returns the L2 norm of a vector.
func norm(v []float32) float32 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	return float32(math.Sqrt(sum))
}

// cosineWithNorm computes cosine similarity given a precomputed query norm.
func cosineWithNorm(a, b []float32, aNorm float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var dot, bNormSq float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		bNormSq += float64(b[i]) * float64(b[i])
	}
	bNorm := math.Sqrt(bNormSq)
	if bNorm == 0 {
		return 0
	}
	return float32(dot / (float64(aNorm) * bNorm))
}
