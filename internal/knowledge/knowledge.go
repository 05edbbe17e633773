// Package knowledge provides the knowledge base pipeline: parsing Q/A text
// into chunks, indexing chunk embeddings, and retrieving the most relevant
// chunks for a query.
package knowledge

import (
	"context"
	"strings"
)

// Chunk is one parsed question/answer unit from the knowledge source.
// Text is the embedding input (question and answer joined by a space).
// Chunks are created in bulk at ingestion and immutable thereafter.
type Chunk struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Text     string `json:"text"`
}

// ScoredChunk is a Chunk with a cosine similarity score attached.
type ScoredChunk struct {
	Chunk
	Score float32 `json:"score"`
}

// State describes the outcome of a retrieval. The no-knowledge and no-match
// states are deliberately distinct: the first indicates a setup problem (the
// index was never populated), the second a coverage gap.
type State string

const (
	// StateOK means at least one chunk was retrieved.
	StateOK State = "ok"

	// StateNoKnowledge means the index is empty or was never populated.
	StateNoKnowledge State = "no_knowledge"

	// StateNoMatch means the index is populated but the query matched nothing.
	StateNoMatch State = "no_match"

	// StateError means the retrieval itself failed (embedding or index error).
	StateError State = "error"
)

// Retrieved is the result of a knowledge base query, ordered most relevant
// first.
type Retrieved struct {
	State  State
	Chunks []ScoredChunk
}

// Render formats the retrieval for inclusion in a prompt: Q:/A: blocks
// separated by blank lines, or a literal statement for the non-OK states.
func (r *Retrieved) Render() string {
	switch r.State {
	case StateNoKnowledge:
		return "No knowledge base available."
	case StateNoMatch:
		return "No relevant information found in knowledge base."
	case StateError:
		return "Error retrieving knowledge base information."
	}

	blocks := make([]string, len(r.Chunks))
	for i, c := range r.Chunks {
		blocks[i] = "Q: " + c.Question + "\nA: " + c.Answer
	}
	return strings.Join(blocks, "\n\n")
}

// Index stores chunk embeddings and answers similarity queries. It is a
// single-writer, many-reader resource: Upsert replaces the stored chunk set
// wholesale (chunk ids are reused positionally across re-ingestions, so
// re-running Upsert with the same source overwrites rather than duplicates),
// and Search never observes a partially written set.
type Index interface {
	// Upsert replaces the stored chunks and their embedding vectors.
	// len(chunks) must equal len(vectors).
	Upsert(ctx context.Context, chunks []Chunk, vectors [][]float32) error

	// Search returns up to k chunks ranked by cosine similarity to the
	// query vector, most similar first.
	Search(ctx context.Context, vector []float32, k int) ([]ScoredChunk, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)
}
