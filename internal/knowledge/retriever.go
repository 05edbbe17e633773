package knowledge

import (
	"context"
	"fmt"

	"github.com/Balaji1472/Automated-Email-Assistant/internal/llm"
)

// DefaultTopK is the number of chunks retrieved per query when the caller
// does not ask for a specific count.
const DefaultTopK = 3

// Retriever combines an embedder and an index to answer knowledge queries.
type Retriever struct {
	embedder llm.Embedder
	index    Index
}

// NewRetriever creates a Retriever backed by the given embedder and index.
func NewRetriever(embedder llm.Embedder, index Index) *Retriever {
	return &Retriever{embedder: embedder, index: index}
}

// Retrieve embeds the query and returns the top-k most similar chunks. An
// empty or never-populated index yields StateNoKnowledge without calling the
// embedder; a populated index with zero hits yields StateNoMatch.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) (*Retrieved, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	n, err := r.index.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting index: %w", err)
	}
	if n == 0 {
		return &Retrieved{State: StateNoKnowledge}, nil
	}

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	chunks, err := r.index.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}
	if len(chunks) == 0 {
		return &Retrieved{State: StateNoMatch}, nil
	}

	return &Retrieved{State: StateOK, Chunks: chunks}, nil
}
