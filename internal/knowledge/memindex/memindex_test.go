package memindex

import (
	"context"
	"math"
	"testing"

	"github.com/Balaji1472/Automated-Email-Assistant/internal/knowledge"
)

func TestUpsertAndSearch(t *testing.T) {
	t.Parallel()

	ix := New()
	ctx := context.Background()

	chunks := []knowledge.Chunk{
		{ID: "kb_chunk_0", Question: "Reset password?", Answer: "Use the link."},
		{ID: "kb_chunk_1", Question: "Export data?", Answer: "Open settings."},
		{ID: "kb_chunk_2", Question: "Contact support?", Answer: "Email us."},
	}
	vectors := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
	if err := ix.Upsert(ctx, chunks, vectors); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := ix.Search(ctx, []float32{0, 1, 0.1}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("results = %d, want 2", len(got))
	}
	if got[0].ID != "kb_chunk_1" {
		t.Errorf("top result = %q, want kb_chunk_1", got[0].ID)
	}
	if got[0].Score <= got[1].Score {
		t.Errorf("results not ordered by score: %v then %v", got[0].Score, got[1].Score)
	}
}

func TestSearch_EmptyIndex(t *testing.T) {
	t.Parallel()

	ix := New()
	got, err := ix.Search(context.Background(), []float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got != nil {
		t.Errorf("results = %v, want nil", got)
	}

	n, err := ix.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 0 {
		t.Errorf("Count = %d, want 0", n)
	}
}

func TestSearch_KLargerThanIndex(t *testing.T) {
	t.Parallel()

	ix := New()
	ctx := context.Background()
	err := ix.Upsert(ctx,
		[]knowledge.Chunk{{ID: "kb_chunk_0"}},
		[][]float32{{1, 0}},
	)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := ix.Search(ctx, []float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("results = %d, want 1", len(got))
	}
}

func TestUpsert_ReplacesWholesale(t *testing.T) {
	t.Parallel()

	ix := New()
	ctx := context.Background()

	err := ix.Upsert(ctx,
		[]knowledge.Chunk{{ID: "kb_chunk_0"}, {ID: "kb_chunk_1"}, {ID: "kb_chunk_2"}},
		[][]float32{{1}, {1}, {1}},
	)
	if err != nil {
		t.Fatalf("first Upsert: %v", err)
	}

	err = ix.Upsert(ctx,
		[]knowledge.Chunk{{ID: "kb_chunk_0", Question: "New?"}},
		[][]float32{{1}},
	)
	if err != nil {
		t.Fatalf("second Upsert: %v", err)
	}

	n, err := ix.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Fatalf("Count after replace = %d, want 1", n)
	}

	got, err := ix.Search(ctx, []float32{1}, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].Question != "New?" {
		t.Errorf("search returned stale contents: %+v", got)
	}
}

func TestUpsert_LengthMismatch(t *testing.T) {
	t.Parallel()

	ix := New()
	err := ix.Upsert(context.Background(),
		[]knowledge.Chunk{{ID: "kb_chunk_0"}},
		[][]float32{{1}, {2}},
	)
	if err == nil {
		t.Fatal("expected error for mismatched lengths")
	}
}

func TestCosine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"length mismatch", []float32{1, 0}, []float32{1, 0, 0}, 0},
		{"scaled is identical", []float32{1, 2}, []float32{10, 20}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Cosine(tt.a, tt.b)
			if math.Abs(float64(got-tt.want)) > 1e-6 {
				t.Errorf("Cosine(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
