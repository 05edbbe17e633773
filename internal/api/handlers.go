package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-chi/chi/v5"

	"github.com/Balaji1472/Automated-Email-Assistant/internal/triage"
)

// processRequest optionally supplies messages inline instead of fetching the
// mailbox. Used by the dashboard preview and by tests.
type processRequest struct {
	Messages []triage.Message `json:"messages"`
}

func (a *API) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
			return
		}
	}

	var (
		batch *triage.Batch
		err   error
	)
	if len(req.Messages) > 0 {
		batch, err = a.svc.ProcessMessages(r.Context(), req.Messages)
	} else {
		batch, err = a.svc.ProcessMailbox(r.Context())
	}

	switch {
	case errors.Is(err, triage.ErrMailboxDisabled):
		http.Error(w, `{"error":"mailbox not configured"}`, http.StatusServiceUnavailable)
		return
	case errors.Is(err, triage.ErrAllFailed):
		a.logger.Error(r.Context(), err, "batch failed entirely")
		http.Error(w, `{"error":"failed to process any messages"}`, http.StatusInternalServerError)
		return
	case err != nil:
		a.logger.Error(r.Context(), err, "batch processing failed")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.String("assistant.batch.id", batch.ID),
		attribute.Int("assistant.batch.total", batch.Total),
		attribute.Int("assistant.batch.urgent", batch.UrgentCount),
	)

	writeJSON(w, batch)
}

func (a *API) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("assistant.batch.id", id))

	batch, ok, err := a.svc.Get(r.Context(), id)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to get batch", "id", id)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}

	writeJSON(w, batch)
}

func (a *API) handleLatestBatch(w http.ResponseWriter, r *http.Request) {
	batch, ok, err := a.svc.Latest(r.Context())
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to get latest batch")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}

	writeJSON(w, batch)
}

func (a *API) handleMailboxStats(w http.ResponseWriter, r *http.Request) {
	unread, read, err := a.svc.MailboxCounts(r.Context())
	if errors.Is(err, triage.ErrMailboxDisabled) {
		http.Error(w, `{"error":"mailbox not configured"}`, http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to get mailbox stats")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]int{
		"unread_count": unread,
		"read_count":   read,
		"total_count":  unread + read,
	})
}

// sendRequest delivers a drafted reply back to the customer.
type sendRequest struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

func (a *API) handleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
		return
	}
	if req.Recipient == "" || req.Body == "" {
		http.Error(w, `{"error":"recipient and body are required"}`, http.StatusBadRequest)
		return
	}

	err := a.svc.SendReply(r.Context(), req.Recipient, req.Subject, req.Body)
	if errors.Is(err, triage.ErrMailboxDisabled) {
		http.Error(w, `{"error":"mailbox not configured"}`, http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to send reply", "recipient", req.Recipient)
		http.Error(w, `{"error":"failed to send"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]string{"status": "sent"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
