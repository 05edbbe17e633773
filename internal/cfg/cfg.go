package cfg

import (
	"errors"
	"flag"
	"fmt"
)

// Config adds assistant-specific configuration fields to the
// common cfg.Registerable and cfg.Validatable interfaces
type Config struct {
	DrainSeconds          int
	ShutdownBudgetSeconds int
	APIPort               int
	APIToken              string
	KnowledgeFile         string
	WatchKnowledge        bool
	IndexPath             string
	LLMProvider           string
	GeminiAPIKey          string
	GeminiModel           string
	GeminiEmbedModel      string
	OpenAIAPIKey          string
	OpenAIModel           string
	OpenAIEmbedModel      string
	TopK                  int
	BatchWorkers          int
	MessageTimeoutSeconds int
	FetchLimit            int
	DatabaseURL           string
	IMAPAddr              string
	SMTPHost              string
	SMTPPort              int
	MailAddress           string
	MailPassword          string
	SlackWebhookURL       string
}

// RegisterFlags binds Config fields to the given FlagSet with defaults inline
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.DrainSeconds, "drain-seconds", 60, "seconds to wait for in-flight requests to drain before shutdown (1..300)")
	fs.IntVar(&c.ShutdownBudgetSeconds, "shutdown-budget-seconds", 90, "total seconds for component shutdown after drain (1..300)")
	fs.IntVar(&c.APIPort, "http-port", 8080, "API listen TCP port (1..65535)")
	fs.StringVar(&c.APIToken, "api-token", "", "bearer token protecting the API (empty = no auth)")
	fs.StringVar(&c.KnowledgeFile, "knowledge-file", "knowledge_base.txt", "path to the Q&A knowledge base file")
	fs.BoolVar(&c.WatchKnowledge, "watch-knowledge", true, "re-ingest the knowledge base when the file changes")
	fs.StringVar(&c.IndexPath, "index-path", "", "SQLite vector index path (empty = in-memory index)")
	fs.StringVar(&c.LLMProvider, "llm-provider", "gemini", "LLM provider to use (gemini or openai)")
	fs.StringVar(&c.GeminiAPIKey, "gemini-api-key", "", "API key for the Gemini provider")
	fs.StringVar(&c.GeminiModel, "gemini-model", "gemini-2.0-flash", "Gemini model for classification and drafting")
	fs.StringVar(&c.GeminiEmbedModel, "gemini-embed-model", "text-embedding-004", "Gemini model for embeddings")
	fs.StringVar(&c.OpenAIAPIKey, "openai-api-key", "", "API key for the OpenAI provider")
	fs.StringVar(&c.OpenAIModel, "openai-model", "gpt-4o-mini", "OpenAI model for classification and drafting")
	fs.StringVar(&c.OpenAIEmbedModel, "openai-embed-model", "text-embedding-3-small", "OpenAI model for embeddings")
	fs.IntVar(&c.TopK, "top-k", 3, "number of knowledge chunks retrieved per message (1..20)")
	fs.IntVar(&c.BatchWorkers, "batch-workers", 4, "concurrent messages processed per batch (1..32)")
	fs.IntVar(&c.MessageTimeoutSeconds, "message-timeout-seconds", 120, "per-message processing timeout in seconds (1..600)")
	fs.IntVar(&c.FetchLimit, "fetch-limit", 20, "maximum unread emails fetched per batch (1..100)")
	fs.StringVar(&c.DatabaseURL, "database-url", "", "PostgreSQL connection URL (empty = in-memory store)")
	fs.StringVar(&c.IMAPAddr, "imap-addr", "imap.gmail.com:993", "IMAP server address with port")
	fs.StringVar(&c.SMTPHost, "smtp-host", "smtp.gmail.com", "SMTP server host")
	fs.IntVar(&c.SMTPPort, "smtp-port", 465, "SMTP server port (1..65535)")
	fs.StringVar(&c.MailAddress, "mail-address", "", "mailbox address for fetching and sending (empty = mailbox disabled)")
	fs.StringVar(&c.MailPassword, "mail-password", "", "mailbox app password")
	fs.StringVar(&c.SlackWebhookURL, "slack-webhook-url", "", "Slack webhook URL for urgent batch notifications")
}

// Validate checks all configuration fields for correctness.
// It returns an error if any field is invalid, or nil if all fields are valid.
func (c *Config) Validate() error {
	var errs []error

	// Drain and shutdown budgets
	if c.DrainSeconds <= 0 || c.DrainSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid DRAIN_SECONDS %d (must be 1..300)", c.DrainSeconds))
	}
	if c.ShutdownBudgetSeconds <= 0 || c.ShutdownBudgetSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid SHUTDOWN_BUDGET_SECONDS %d (must be 1..300)", c.ShutdownBudgetSeconds))
	}

	// Shutdown budget must be greater than drain time
	if c.ShutdownBudgetSeconds <= c.DrainSeconds {
		errs = append(errs, fmt.Errorf("SHUTDOWN_BUDGET_SECONDS %d must be greater than DRAIN_SECONDS %d", c.ShutdownBudgetSeconds, c.DrainSeconds))
	}

	// API port must be valid TCP port number
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP_PORT %d (must be 1..65535)", c.APIPort))
	}

	if c.KnowledgeFile == "" {
		errs = append(errs, errors.New("KNOWLEDGE_FILE is required"))
	}

	switch c.LLMProvider {
	case "gemini":
		if c.GeminiAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required when LLM_PROVIDER is gemini"))
		}
		if c.GeminiModel == "" {
			errs = append(errs, errors.New("GEMINI_MODEL is required when LLM_PROVIDER is gemini"))
		}
		if c.GeminiEmbedModel == "" {
			errs = append(errs, errors.New("GEMINI_EMBED_MODEL is required when LLM_PROVIDER is gemini"))
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required when LLM_PROVIDER is openai"))
		}
		if c.OpenAIModel == "" {
			errs = append(errs, errors.New("OPENAI_MODEL is required when LLM_PROVIDER is openai"))
		}
		if c.OpenAIEmbedModel == "" {
			errs = append(errs, errors.New("OPENAI_EMBED_MODEL is required when LLM_PROVIDER is openai"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid LLM_PROVIDER %q (must be gemini or openai)", c.LLMProvider))
	}

	if c.TopK <= 0 || c.TopK > 20 {
		errs = append(errs, fmt.Errorf("invalid TOP_K %d (must be 1..20)", c.TopK))
	}
	if c.BatchWorkers <= 0 || c.BatchWorkers > 32 {
		errs = append(errs, fmt.Errorf("invalid BATCH_WORKERS %d (must be 1..32)", c.BatchWorkers))
	}
	if c.MessageTimeoutSeconds <= 0 || c.MessageTimeoutSeconds > 600 {
		errs = append(errs, fmt.Errorf("invalid MESSAGE_TIMEOUT_SECONDS %d (must be 1..600)", c.MessageTimeoutSeconds))
	}
	if c.FetchLimit <= 0 || c.FetchLimit > 100 {
		errs = append(errs, fmt.Errorf("invalid FETCH_LIMIT %d (must be 1..100)", c.FetchLimit))
	}

	if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid SMTP_PORT %d (must be 1..65535)", c.SMTPPort))
	}

	// Fetching and sending both need credentials when the mailbox is enabled
	if c.MailAddress != "" && c.MailPassword == "" {
		errs = append(errs, errors.New("MAIL_PASSWORD is required when MAIL_ADDRESS is set"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
