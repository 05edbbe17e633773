package triage

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Balaji1472/Automated-Email-Assistant/internal/knowledge"
)

func TestMetricsHooks(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	h := m.Hooks()

	h.OnClassify(SentimentNegative, PriorityUrgent, false)
	h.OnClassify(SentimentPositive, PriorityNotUrgent, true)
	h.OnCompose(true)
	h.OnCompose(false)
	h.OnRetrieve(knowledge.StateOK)
	h.OnRetrieve(knowledge.StateNoMatch)
	h.OnBatch("complete", 1.5, 2, 1, 1)
	h.OnBatch("failed", 0.1, 0, 0, 0)

	if got := testutil.ToFloat64(m.MessagesTotal.WithLabelValues("Negative", "Urgent")); got != 1 {
		t.Errorf("messages{Negative,Urgent} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ClassifierFallbacks); got != 1 {
		t.Errorf("classifier fallbacks = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ComposerFallbacks); got != 1 {
		t.Errorf("composer fallbacks = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.RetrievalsTotal.WithLabelValues("ok")); got != 1 {
		t.Errorf("retrievals{ok} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.BatchesTotal.WithLabelValues("complete")); got != 1 {
		t.Errorf("batches{complete} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.BatchesTotal.WithLabelValues("failed")); got != 1 {
		t.Errorf("batches{failed} = %v, want 1", got)
	}
}

func TestNewMetrics_RegistersOnce(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	NewMetrics(reg)

	defer func() {
		if recover() == nil {
			t.Fatal("expected duplicate registration to panic")
		}
	}()
	NewMetrics(reg)
}
