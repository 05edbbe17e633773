// Package memindex provides an in-memory implementation of knowledge.Index
// using brute-force cosine similarity. Suitable for dev/testing and for
// deployments without an index path configured.
package memindex

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/Balaji1472/Automated-Email-Assistant/internal/knowledge"
)

// Index holds chunks and their embeddings in memory. Upsert swaps the whole
// set under the write lock, so readers never observe a partial ingestion.
type Index struct {
	mu      sync.RWMutex
	chunks  []knowledge.Chunk
	vectors [][]float32
}

// New initializes an empty in-memory Index.
func New() *Index {
	return &Index{}
}

// Upsert replaces the stored chunks and vectors wholesale.
func (ix *Index) Upsert(_ context.Context, chunks []knowledge.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}

	cs := make([]knowledge.Chunk, len(chunks))
	copy(cs, chunks)
	vs := make([][]float32, len(vectors))
	copy(vs, vectors)

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.chunks = cs
	ix.vectors = vs
	return nil
}

// Search returns the top-k chunks by cosine similarity, most similar first.
func (ix *Index) Search(_ context.Context, vector []float32, k int) ([]knowledge.ScoredChunk, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if k <= 0 || len(ix.chunks) == 0 {
		return nil, nil
	}

	results := make([]knowledge.ScoredChunk, len(ix.chunks))
	for i := range ix.chunks {
		results[i] = knowledge.ScoredChunk{
			Chunk: ix.chunks[i],
			Score: Cosine(vector, ix.vectors[i]),
		}
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
func (ix *Index) Count(_ context.Context) (int, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.chunks), nil
}

// Cosine computes the cosine similarity of two vectors. Mismatched or
// zero-norm vectors score 0.
func Cosine(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
