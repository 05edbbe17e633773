package triage

import "time"

// Sentiment is the tone of a support message.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
)

// Priority is the urgency of a support message.
type Priority string

const (
	PriorityUrgent    Priority = "Urgent"
	PriorityNotUrgent Priority = "Not Urgent"
)

// Message is one inbound support message. Only Body is inspected by the
// classifier; the remaining fields pass through to the processed record.
type Message struct {
	ID      string `json:"id"`
	Sender  string `json:"sender"`
	Subject string `json:"subject"`
	Date    string `json:"date"`
	Body    string `json:"body"`
}

// Analysis is the structured classification of a message body. Sentiment and
// Priority are always one of the enumerated values; the classifier repairs
// anything else before returning.
type Analysis struct {
	Sentiment     Sentiment      `json:"sentiment"`
	Priority      Priority       `json:"priority"`
	Summary       string         `json:"summary"`
	ExtractedInfo map[string]any `json:"extracted_info"`
}

// Record is one fully processed message: the original message, its analysis
// and the drafted reply.
type Record struct {
	Message
	Analysis
	DraftResponse string `json:"draft_response"`
}

// Batch is the result of processing a set of messages. Records are sorted
// urgent-first, then negative-first, stable within ties. Counts cover
// successfully processed records only.
type Batch struct {
	ID            string    `json:"id"`
	Records       []Record  `json:"emails"`
	Total         int       `json:"total_count"`
	UrgentCount   int       `json:"urgent_count"`
	NegativeCount int       `json:"negative_sentiment_count"`
	CreatedAt     time.Time `json:"created_at"`
	CompletedAt   time.Time `json:"completed_at,omitempty"`
	Duration      float64   `json:"duration_seconds,omitempty"`
}
