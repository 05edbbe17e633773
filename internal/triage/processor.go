package triage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"golang.org/x/sync/errgroup"

	"github.com/Balaji1472/Automated-Email-Assistant/internal/knowledge"
)

// ErrAllFailed is returned when every message of a non-empty batch failed.
// A partially failed batch is not an error: failed messages are logged and
// skipped.
var ErrAllFailed = errors.New("all messages failed processing")

// Retriever looks up knowledge relevant to a query string.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) (*knowledge.Retrieved, error)
}

// Processor runs the classify → retrieve → compose pipeline over a batch of
// messages with a bounded worker pool. The knowledge index is the only shared
// state and is read-only during a batch, so messages are independent.
type Processor struct {
	classifier *Classifier
	retriever  Retriever
	composer   *Composer
	logger     log.Logger
	hooks      Hooks

	workers        int
	topK           int
	messageTimeout time.Duration
}

// ProcessorOptions tune the batch pipeline. Zero values fall back to
// defaults: 4 workers, knowledge.DefaultTopK, no per-message timeout.
type ProcessorOptions struct {
	Workers        int
	TopK           int
	MessageTimeout time.Duration
}

// NewProcessor creates a Processor with the given pipeline stages.
func NewProcessor(classifier *Classifier, retriever Retriever, composer *Composer, logger log.Logger, hooks Hooks, opts ProcessorOptions) *Processor {
	if logger == nil {
		logger = log.Nop()
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.TopK <= 0 {
		opts.TopK = knowledge.DefaultTopK
	}
	return &Processor{
		classifier:     classifier,
		retriever:      retriever,
		composer:       composer,
		logger:         logger,
		hooks:          hooks,
		workers:        opts.Workers,
		topK:           opts.TopK,
		messageTimeout: opts.MessageTimeout,
	}
}

// Process runs the pipeline over msgs and returns the aggregated batch. A
// failing message is logged and skipped; if every message of a non-empty
// batch fails, Process returns ErrAllFailed. Records are sorted by the
// composite stable key: Urgent first, then Negative sentiment first, ties in
// input order.
func (p *Processor) Process(ctx context.Context, msgs []Message) (*Batch, error) {
	start := time.Now()
	batch := &Batch{CreatedAt: start}

	results := make([]*Record, len(msgs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, msg := range msgs {
		g.Go(func() error {
			rec, err := p.processOne(gCtx, msg)
			if err != nil {
				p.logger.Error(gCtx, err, "message processing failed, skipping", "message_id", msg.ID)
				return nil
			}
			results[i] = rec
			return nil
		})
	}
	// workers only return nil; the group is used for bounding and ctx plumbing
	_ = g.Wait()

	for _, rec := range results {
		if rec != nil {
			batch.Records = append(batch.Records, *rec)
		}
	}

	if len(msgs) > 0 && len(batch.Records) == 0 {
		if p.hooks.OnBatch != nil {
			p.hooks.OnBatch("failed", time.Since(start).Seconds(), 0, 0, 0)
		}
		return nil, ErrAllFailed
	}

	// Urgent first, then Negative first; stable so equal-key records keep
	// their input order.
	sort.SliceStable(batch.Records, func(i, j int) bool {
		ri, rj := batch.Records[i], batch.Records[j]
		if (ri.Priority == PriorityUrgent) != (rj.Priority == PriorityUrgent) {
			return ri.Priority == PriorityUrgent
		}
		if (ri.Sentiment == SentimentNegative) != (rj.Sentiment == SentimentNegative) {
			return ri.Sentiment == SentimentNegative
		}
		return false
	})

	batch.Total = len(batch.Records)
	for _, r := range batch.Records {
		if r.Priority == PriorityUrgent {
			batch.UrgentCount++
		}
		if r.Sentiment == SentimentNegative {
			batch.NegativeCount++
		}
	}

	batch.CompletedAt = time.Now()
	batch.Duration = batch.CompletedAt.Sub(start).Seconds()

	if p.hooks.OnBatch != nil {
		p.hooks.OnBatch("complete", batch.Duration, batch.Total, batch.UrgentCount, batch.NegativeCount)
	}
	return batch, nil
}

// processOne runs a single message through the pipeline. A per-message
// timeout expires the context, which routes the classifier and composer onto
// their fallback paths rather than failing the message. The returned error is
// reserved for genuine processing failures (batch cancellation, panics).
func (p *Processor) processOne(ctx context.Context, msg Message) (rec *Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec = nil
			err = fmt.Errorf("panic processing message: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if p.messageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.messageTimeout)
		defer cancel()
	}

	analysis := p.classifier.Analyze(ctx, msg.Body)

	retrieved, rerr := p.retriever.Retrieve(ctx, analysis.Summary, p.topK)
	if rerr != nil {
		// Retrieval failure degrades the draft, it does not skip the message.
		p.logger.Warn(ctx, "knowledge retrieval failed", "message_id", msg.ID, "error", rerr.Error())
		retrieved = &knowledge.Retrieved{State: knowledge.StateError}
	}
	if p.hooks.OnRetrieve != nil {
		p.hooks.OnRetrieve(retrieved.State)
	}

	draft := p.composer.Compose(ctx, analysis, retrieved, msg.Body)

	return &Record{
		Message:       msg,
		Analysis:      analysis,
		DraftResponse: draft,
	}, nil
}
