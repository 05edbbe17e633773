package triage

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Balaji1472/Automated-Email-Assistant/internal/knowledge"
)

// Hooks are optional observation points invoked by the pipeline stages. All
// fields may be nil.
type Hooks struct {
	OnClassify func(sentiment Sentiment, priority Priority, fallback bool)
	OnCompose  func(fallback bool)
	OnRetrieve func(state knowledge.State)
	OnBatch    func(outcome string, duration float64, total, urgent, negative int)
}

// Metrics holds Prometheus metrics for the triage pipeline.
type Metrics struct {
	BatchesTotal        *prometheus.CounterVec
	BatchDuration       prometheus.Histogram
	BatchSize           prometheus.Histogram
	MessagesTotal       *prometheus.CounterVec
	ClassifierFallbacks prometheus.Counter
	ComposerFallbacks   prometheus.Counter
	RetrievalsTotal     *prometheus.CounterVec
}

// NewMetrics registers and returns pipeline metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BatchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_batches_total",
			Help: "Total batch runs by outcome.",
		}, []string{"outcome"}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "assistant_batch_duration_seconds",
			Help:    "Duration of batch runs in seconds.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1s .. ~512s
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "assistant_batch_size",
			Help:    "Successfully processed messages per batch.",
			Buckets: prometheus.LinearBuckets(0, 2, 11), // 0 .. 20
		}),
		MessagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_messages_total",
			Help: "Processed messages by sentiment and priority.",
		}, []string{"sentiment", "priority"}),
		ClassifierFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "assistant_classifier_fallbacks_total",
			Help: "Classifications served by the deterministic fallback.",
		}),
		ComposerFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "assistant_composer_fallbacks_total",
			Help: "Reply drafts served by the canned template.",
		}),
		RetrievalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_retrievals_total",
			Help: "Knowledge retrievals by result state.",
		}, []string{"state"}),
	}

	reg.MustRegister(
		m.BatchesTotal,
		m.BatchDuration,
		m.BatchSize,
		m.MessagesTotal,
		m.ClassifierFallbacks,
		m.ComposerFallbacks,
		m.RetrievalsTotal,
	)

	return m
}

// Hooks returns a Hooks that increments the corresponding metrics.
func (m *Metrics) Hooks() Hooks {
	return Hooks{
		OnClassify: func(sentiment Sentiment, priority Priority, fallback bool) {
			m.MessagesTotal.WithLabelValues(string(sentiment), string(priority)).Inc()
			if fallback {
				m.ClassifierFallbacks.Inc()
			}
		},
		OnCompose: func(fallback bool) {
			if fallback {
				m.ComposerFallbacks.Inc()
			}
		},
		OnRetrieve: func(state knowledge.State) {
			m.RetrievalsTotal.WithLabelValues(string(state)).Inc()
		},
		OnBatch: func(outcome string, duration float64, total, _, _ int) {
			m.BatchesTotal.WithLabelValues(outcome).Inc()
			m.BatchDuration.Observe(duration)
			m.BatchSize.Observe(float64(total))
		},
	}
}
