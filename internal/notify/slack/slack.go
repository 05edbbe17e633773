// Package slack sends batch notifications to Slack via incoming webhooks.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Balaji1472/Automated-Email-Assistant/internal/triage"
)

const (
	maxUrgentItems = 5
	maxSummaryLen  = 200
	httpTimeout    = 10 * time.Second
)

// Notifier sends batch results to a Slack webhook.
type Notifier struct {
	webhookURL string
	client     *http.Client
}

// New creates a new Slack notifier. If webhookURL is empty, Send is a no-op.
func New(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: httpTimeout},
	}
}

// Send posts a batch summary to the configured Slack webhook.
// If no webhook URL is configured, it returns nil immediately.
func (n *Notifier) Send(ctx context.Context, batch *triage.Batch) error {
	if n.webhookURL == "" {
		return nil
	}

	msg := buildMessage(batch)

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("slack: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req) //nolint:gosec // G704: webhookURL is from trusted config, not user input
	if err != nil {
		return fmt.Errorf("slack: post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack: webhook returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func buildMessage(b *triage.Batch) map[string]any {
	return map[string]any{
		"blocks": []map[string]any{
			headerBlock(b),
			{"type": "divider"},
			fieldsBlock(b),
			{"type": "divider"},
			urgentBlock(b),
			{"type": "divider"},
			contextBlock(b),
		},
	}
}

func headerBlock(b *triage.Batch) map[string]any {
	text := fmt.Sprintf("\U0001f6a8 %d Urgent Support Email(s)", b.UrgentCount)

	return map[string]any{
		"type": "header",
		"text": map[string]any{
			"type": "plain_text",
			"text": text,
		},
	}
}

func fieldsBlock(b *triage.Batch) map[string]any {
	fields := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Processed:* %d", b.Total),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Urgent:* %d", b.UrgentCount),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Negative:* %d", b.NegativeCount),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Duration:* %.1fs", b.Duration),
		},
	}

	return map[string]any{
		"type":   "section",
		"fields": fields,
	}
}

func urgentBlock(b *triage.Batch) map[string]any {
	var sb bytes.Buffer
	listed := 0
	for _, r := range b.Records {
		if r.Priority != triage.PriorityUrgent {
			continue
		}
		if listed == maxUrgentItems {
			fmt.Fprintf(&sb, "\n_and %d more_", b.UrgentCount-maxUrgentItems)
			break
		}
		fmt.Fprintf(&sb, "\n• *%s*: %s", r.Sender, truncate(r.Summary, maxSummaryLen))
		listed++
	}

	text := sb.String()
	if text == "" {
		text = "\n_No urgent emails in this batch._"
	}

	return map[string]any{
		"type": "section",
		"text": map[string]any{
			"type": "mrkdwn",
			"text": "*Urgent emails*" + text,
		},
	}
}

func contextBlock(b *triage.Batch) map[string]any {
	ts := b.CompletedAt
	if ts.IsZero() {
		ts = b.CreatedAt
	}

	elements := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("assistant • batch %s • %s", b.ID, ts.UTC().Format("2006-01-02 15:04 UTC")),
		},
	}

	return map[string]any{
		"type":     "context",
		"elements": elements,
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}
