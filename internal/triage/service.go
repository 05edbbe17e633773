package triage

import (
	"context"
	"errors"
	"fmt"

	"github.com/linnemanlabs/go-core/log"
	"github.com/oklog/ulid/v2"
)

// ErrMailboxDisabled is returned when a mailbox operation is requested but no
// mail credentials are configured.
var ErrMailboxDisabled = errors.New("mailbox not configured")

// Mailbox is the mail transport boundary: the service fetches inbound
// support messages from it and hands finished replies back for sending.
type Mailbox interface {
	// FetchUnread returns up to limit unread support messages, oldest first.
	FetchUnread(ctx context.Context, limit int) ([]Message, error)

	// Counts returns the unread and read support message counts.
	Counts(ctx context.Context) (unread, read int, err error)

	// Send delivers a reply to recipient. Implementations prepend "Re: " to
	// the subject.
	Send(ctx context.Context, recipient, subject, body string) error
}

// Notifier is told about completed batches that contain urgent messages.
type Notifier interface {
	Send(ctx context.Context, batch *Batch) error
}

// Service is the business boundary for batch operations. It owns the fetch →
// process → persist → notify lifecycle; the HTTP layer talks only to it.
type Service struct {
	processor  *Processor
	store      Store
	mailbox    Mailbox
	notifier   Notifier
	logger     log.Logger
	fetchLimit int
}

// NewService creates a Service. mailbox and notifier may be nil; the
// corresponding operations are then disabled or skipped.
func NewService(processor *Processor, store Store, mailbox Mailbox, notifier Notifier, logger log.Logger, fetchLimit int) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	if fetchLimit <= 0 {
		fetchLimit = 20
	}
	return &Service{
		processor:  processor,
		store:      store,
		mailbox:    mailbox,
		notifier:   notifier,
		logger:     logger,
		fetchLimit: fetchLimit,
	}
}

// ProcessMailbox fetches unread support messages and processes them as one
// batch. An empty mailbox yields an empty batch, not an error.
func (s *Service) ProcessMailbox(ctx context.Context) (*Batch, error) {
	if s.mailbox == nil {
		return nil, ErrMailboxDisabled
	}

	msgs, err := s.mailbox.FetchUnread(ctx, s.fetchLimit)
	if err != nil {
		return nil, fmt.Errorf("fetching mailbox: %w", err)
	}
	s.logger.Info(ctx, "fetched support messages", "count", len(msgs))

	return s.ProcessMessages(ctx, msgs)
}

// ProcessMessages processes the given messages as one batch, persists the
// result and notifies if the batch contains urgent messages.
func (s *Service) ProcessMessages(ctx context.Context, msgs []Message) (*Batch, error) {
	batch, err := s.processor.Process(ctx, msgs)
	if err != nil {
		return nil, err
	}

	batch.ID = ulid.Make().String()

	if err := s.store.Put(ctx, batch); err != nil {
		// The batch result is still valid; persistence is best effort.
		s.logger.Error(ctx, err, "failed to persist batch", "batch_id", batch.ID)
	}

	if s.notifier != nil && batch.UrgentCount > 0 {
		if err := s.notifier.Send(ctx, batch); err != nil {
			s.logger.Error(ctx, err, "batch notification failed", "batch_id", batch.ID)
		}
	}

	s.logger.Info(ctx, "batch processed",
		"batch_id", batch.ID,
		"total", batch.Total,
		"urgent", batch.UrgentCount,
		"negative", batch.NegativeCount,
		"duration", batch.Duration,
	)
	return batch, nil
}

// Get retrieves a stored batch by ID.
func (s *Service) Get(ctx context.Context, id string) (*Batch, bool, error) {
	return s.store.Get(ctx, id)
}

// Latest retrieves the most recently stored batch.
func (s *Service) Latest(ctx context.Context) (*Batch, bool, error) {
	return s.store.Latest(ctx)
}

// MailboxCounts returns the unread and read support message counts.
func (s *Service) MailboxCounts(ctx context.Context) (unread, read int, err error) {
	if s.mailbox == nil {
		return 0, 0, ErrMailboxDisabled
	}
	return s.mailbox.Counts(ctx)
}

// SendReply delivers a drafted reply to the given recipient.
func (s *Service) SendReply(ctx context.Context, recipient, subject, body string) error {
	if s.mailbox == nil {
		return ErrMailboxDisabled
	}
	if err := s.mailbox.Send(ctx, recipient, subject, body); err != nil {
		return fmt.Errorf("sending reply: %w", err)
	}
	s.logger.Info(ctx, "reply sent", "recipient", recipient)
	return nil
}
