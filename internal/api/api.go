// Package api exposes the batch processing surface over HTTP. It maps the
// triage service onto JSON endpoints; all business rules live in the service.
package api

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/Balaji1472/Automated-Email-Assistant/internal/triage"
)

// BatchService defines the business operations the API needs.
type BatchService interface {
	ProcessMailbox(ctx context.Context) (*triage.Batch, error)
	ProcessMessages(ctx context.Context, msgs []triage.Message) (*triage.Batch, error)
	Get(ctx context.Context, id string) (*triage.Batch, bool, error)
	Latest(ctx context.Context) (*triage.Batch, bool, error)
	MailboxCounts(ctx context.Context) (unread, read int, err error)
	SendReply(ctx context.Context, recipient, subject, body string) error
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger log.Logger
	svc    BatchService
}

// New creates a new API handler.
func New(logger log.Logger, svc BatchService) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if svc == nil {
		panic(xerrors.New("batch service is required"))
	}
	return &API{
		logger: logger,
		svc:    svc,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/process", a.handleProcess)
		r.Get("/batches/latest", a.handleLatestBatch)
		r.Get("/batches/{id}", a.handleGetBatch)
		r.Get("/mailbox/stats", a.handleMailboxStats)
		r.Post("/send", a.handleSend)
	})
}
