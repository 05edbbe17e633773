package knowledge

import (
	"context"
	"fmt"
	"os"

	"github.com/linnemanlabs/go-core/log"
	"golang.org/x/sync/errgroup"

	"github.com/Balaji1472/Automated-Email-Assistant/internal/llm"
)

// embedConcurrency bounds concurrent embedding calls during ingestion.
const embedConcurrency = 4

// Ingestor loads a knowledge file into an index.
type Ingestor struct {
	embedder llm.Embedder
	index    Index
	logger   log.Logger
}

// NewIngestor creates an Ingestor with the given dependencies.
func NewIngestor(embedder llm.Embedder, index Index, logger log.Logger) *Ingestor {
	if logger == nil {
		logger = log.Nop()
	}
	return &Ingestor{
		embedder: embedder,
		index:    index,
		logger:   logger,
	}
}

// IngestFile parses the knowledge file at path, embeds each chunk's text and
// replaces the index contents. A missing file is logged and leaves the index
// untouched; it is not an error, queries simply report no knowledge. Running
// IngestFile twice with the same file yields the same index contents.
func (in *Ingestor) IngestFile(ctx context.Context, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			in.logger.Warn(ctx, "knowledge file not found, index left empty", "path", path)
			return nil
		}
		return fmt.Errorf("reading knowledge file: %w", err)
	}

	chunks := SplitKnowledge(string(content))
	if len(chunks) == 0 {
		in.logger.Warn(ctx, "no knowledge chunks found", "path", path)
		return nil
	}

	vectors, err := in.embedChunks(ctx, chunks)
	if err != nil {
		return fmt.Errorf("embedding knowledge chunks: %w", err)
	}

	if err := in.index.Upsert(ctx, chunks, vectors); err != nil {
		return fmt.Errorf("storing knowledge chunks: %w", err)
	}

	in.logger.Info(ctx, "knowledge base loaded", "path", path, "chunks", len(chunks))
	return nil
}

func (in *Ingestor) embedChunks(ctx context.Context, chunks []Chunk) ([][]float32, error) {
	vectors := make([][]float32, len(chunks))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)

	for i, c := range chunks {
		g.Go(func() error {
			vec, err := in.embedder.Embed(gCtx, c.Text)
			if err != nil {
				return fmt.Errorf("chunk %s: %w", c.ID, err)
			}
			vectors[i] = vec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}
