package triage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/linnemanlabs/go-core/log"

	"github.com/Balaji1472/Automated-Email-Assistant/internal/llm"
)

// urgencyKeywords mark a message Urgent. The same list drives the model
// prompt, the fallback classifier and the priority repair path; they must not
// drift apart.
var urgencyKeywords = []string{
	"urgent", "critical", "asap", "emergency", "down", "not working",
	"broken", "issue", "problem", "help needed", "cannot access",
}

// negativeKeywords are checked before positiveKeywords: negative wins on
// overlap.
var negativeKeywords = []string{
	"problem", "issue", "broken", "not working", "error", "failed", "wrong",
}

var positiveKeywords = []string{
	"thank", "great", "excellent", "good", "satisfied", "happy",
}

// defaultSummary substitutes for a missing or empty model summary.
const defaultSummary = "Customer inquiry requiring assistance"

// Classifier turns a message body into a structured Analysis. The generative
// service is treated as adversarial: its output is sanitized, parsed and
// repaired field by field, and any failure falls back to the deterministic
// keyword classifier. Analyze never fails.
type Classifier struct {
	provider llm.Provider
	logger   log.Logger
	hooks    Hooks
}

// NewClassifier creates a Classifier with the given provider.
func NewClassifier(provider llm.Provider, logger log.Logger, hooks Hooks) *Classifier {
	if logger == nil {
		logger = log.Nop()
	}
	return &Classifier{
		provider: provider,
		logger:   logger,
		hooks:    hooks,
	}
}

// Analyze classifies a message body. The returned Analysis always satisfies
// the model invariants: sentiment and priority are members of their enums,
// the summary is non-empty and extracted info is non-nil.
func (c *Classifier) Analyze(ctx context.Context, body string) Analysis {
	raw, err := c.provider.Generate(ctx, buildAnalysisPrompt(body))
	if err != nil {
		c.logger.Warn(ctx, "generation failed, using fallback analysis", "error", err.Error())
		return c.fallback(body)
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(sanitizeModelJSON(raw)), &fields); err != nil {
		c.logger.Warn(ctx, "model output is not valid JSON, using fallback analysis",
			"error", err.Error(), "raw_len", len(raw))
		return c.fallback(body)
	}

	a := repairAnalysis(fields, body)
	if c.hooks.OnClassify != nil {
		c.hooks.OnClassify(a.Sentiment, a.Priority, false)
	}
	return a
}

func (c *Classifier) fallback(body string) Analysis {
	a := FallbackAnalysis(body)
	if c.hooks.OnClassify != nil {
		c.hooks.OnClassify(a.Sentiment, a.Priority, true)
	}
	return a
}

// FallbackAnalysis is the deterministic keyword classifier. It is a pure
// function of the body text: used both when the generative call cannot be
// trusted at all and (via derivePriority) when only the priority field needs
// repair.
func FallbackAnalysis(body string) Analysis {
	priority := derivePriority(body)

	lower := strings.ToLower(body)
	sentiment := SentimentNeutral
	switch {
	case containsAny(lower, negativeKeywords):
		sentiment = SentimentNegative
	case containsAny(lower, positiveKeywords):
		sentiment = SentimentPositive
	}

	return Analysis{
		Sentiment:     sentiment,
		Priority:      priority,
		Summary:       fmt.Sprintf("Customer email requiring %s attention", strings.ToLower(string(priority))),
		ExtractedInfo: map[string]any{},
	}
}

// derivePriority checks the body against the urgency keyword list.
func derivePriority(body string) Priority {
	if containsAny(strings.ToLower(body), urgencyKeywords) {
		return PriorityUrgent
	}
	return PriorityNotUrgent
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// repairAnalysis coerces a parsed model object into a valid Analysis. Each
// field is validated independently so a partially malformed response salvages
// what it can.
func repairAnalysis(fields map[string]any, body string) Analysis {
	var a Analysis

	switch s, _ := fields["sentiment"].(string); Sentiment(s) {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		a.Sentiment = Sentiment(s)
	default:
		a.Sentiment = SentimentNeutral
	}

	switch p, _ := fields["priority"].(string); Priority(p) {
	case PriorityUrgent, PriorityNotUrgent:
		a.Priority = Priority(p)
	default:
		a.Priority = derivePriority(body)
	}

	if s, ok := fields["summary"].(string); ok && s != "" {
		a.Summary = s
	} else {
		a.Summary = defaultSummary
	}

	if info, ok := fields["extracted_info"].(map[string]any); ok {
		a.ExtractedInfo = info
	} else {
		a.ExtractedInfo = map[string]any{}
	}

	return a
}

// sanitizeModelJSON strips code-fence markers (with or without a language
// tag) and, if the remainder is still not bare JSON, extracts the outermost
// {...} span with a greedy brace match.
func sanitizeModelJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	s = strings.TrimSpace(s)

	if i := strings.Index(s, "{"); i >= 0 {
		if j := strings.LastIndex(s, "}"); j > i {
			s = s[i : j+1]
		}
	}
	return s
}

func buildAnalysisPrompt(body string) string {
	return fmt.Sprintf(`Analyze the following customer email and provide a JSON response with these exact keys:

1. "sentiment": Must be exactly one of: "Positive", "Negative", or "Neutral"
2. "priority": Must be exactly one of: "Urgent" or "Not Urgent"
   - Use "Urgent" if the email contains words like: %s
   - Otherwise use "Not Urgent"
3. "summary": A clear, concise one-sentence summary of what the customer is asking for or reporting
4. "extracted_info": A JSON object containing any important details like order numbers, product names, contact info, etc. Use empty object {} if none found.

Email to analyze:
%s

Respond with ONLY a valid JSON object in this exact format:
{
    "sentiment": "Positive|Negative|Neutral",
    "priority": "Urgent|Not Urgent",
    "summary": "Brief summary here",
    "extracted_info": {}
}`, strings.Join(urgencyKeywords, ", "), body)
}
