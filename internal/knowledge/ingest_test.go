package knowledge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/linnemanlabs/go-core/log"
)

func writeKnowledgeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "knowledge_base.txt")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write knowledge file: %v", err)
	}
	return path
}

func TestIngestFile_PopulatesIndex(t *testing.T) {
	t.Parallel()

	path := writeKnowledgeFile(t, "Q: First?\nA: One.\nQ: Second?\nA: Two.")
	ix := &fakeIndex{}
	emb := &fakeEmbedder{}
	in := NewIngestor(emb, ix, log.Nop())

	if err := in.IngestFile(context.Background(), path); err != nil {
		t.Fatalf("IngestFile: %v", err)
	}

	if len(ix.chunks) != 2 {
		t.Fatalf("indexed chunks = %d, want 2", len(ix.chunks))
	}
	if len(ix.vectors) != 2 {
		t.Fatalf("indexed vectors = %d, want 2", len(ix.vectors))
	}
	// Vector i must be derived from chunk i's text, order preserved
	// despite concurrent embedding.
	for i, c := range ix.chunks {
		if got := ix.vectors[i][0]; got != float32(len(c.Text)) {
			t.Errorf("vectors[%d][0] = %v, want %v (text %q)", i, got, len(c.Text), c.Text)
		}
	}
	if emb.callCount() != 2 {
		t.Errorf("embedder calls = %d, want 2", emb.callCount())
	}
}

func TestIngestFile_MissingFileIsNotAnError(t *testing.T) {
	t.Parallel()

	ix := &fakeIndex{}
	in := NewIngestor(&fakeEmbedder{}, ix, log.Nop())

	path := filepath.Join(t.TempDir(), "nonexistent.txt")
	if err := in.IngestFile(context.Background(), path); err != nil {
		t.Fatalf("IngestFile on missing file: %v", err)
	}
	if len(ix.chunks) != 0 {
		t.Errorf("index should stay empty, has %d chunks", len(ix.chunks))
	}
}

func TestIngestFile_NoChunksLeavesIndexUntouched(t *testing.T) {
	t.Parallel()

	path := writeKnowledgeFile(t, "no question answer pairs here\njust prose text")
	ix := &fakeIndex{chunks: []Chunk{{ID: "kb_chunk_0"}}}
	in := NewIngestor(&fakeEmbedder{}, ix, log.Nop())

	if err := in.IngestFile(context.Background(), path); err != nil {
		t.Fatalf("IngestFile: %v", err)
	}
	if len(ix.chunks) != 1 {
		t.Errorf("existing index contents replaced, chunks = %d, want 1", len(ix.chunks))
	}
}

func TestIngestFile_EmbedFailureAborts(t *testing.T) {
	t.Parallel()

	path := writeKnowledgeFile(t, "Q: First?\nA: One.")
	ix := &fakeIndex{}
	in := NewIngestor(&fakeEmbedder{err: errors.New("quota exceeded")}, ix, log.Nop())

	err := in.IngestFile(context.Background(), path)
	if err == nil {
		t.Fatal("expected error from failing embedder")
	}
	if len(ix.chunks) != 0 {
		t.Errorf("index updated despite embed failure, chunks = %d", len(ix.chunks))
	}
}

func TestIngestFile_UpsertFailure(t *testing.T) {
	t.Parallel()

	path := writeKnowledgeFile(t, "Q: First?\nA: One.")
	ix := &fakeIndex{upsertE: errors.New("disk full")}
	in := NewIngestor(&fakeEmbedder{}, ix, log.Nop())

	if err := in.IngestFile(context.Background(), path); err == nil {
		t.Fatal("expected error from failing index")
	}
}

func TestIngestFile_ReIngestReplaces(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "knowledge_base.txt")
	if err := os.WriteFile(path, []byte("Q: A?\nA: One.\nQ: B?\nA: Two.\nQ: C?\nA: Three."), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	ix := &fakeIndex{}
	in := NewIngestor(&fakeEmbedder{}, ix, log.Nop())
	ctx := context.Background()

	if err := in.IngestFile(ctx, path); err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	if len(ix.chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(ix.chunks))
	}

	// Shrink the file, re-ingest must replace not append.
	if err := os.WriteFile(path, []byte("Q: Only?\nA: Pair."), 0o600); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if err := in.IngestFile(ctx, path); err != nil {
		t.Fatalf("second ingest: %v", err)
	}
	if len(ix.chunks) != 1 {
		t.Fatalf("chunks after re-ingest = %d, want 1", len(ix.chunks))
	}
	if ix.chunks[0].Question != "Only?" {
		t.Errorf("chunk question = %q, want %q", ix.chunks[0].Question, "Only?")
	}
}
