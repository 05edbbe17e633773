package cfg

import (
	"flag"
	"math"
	"strings"
	"testing"
)

// validBase returns a Config with all required fields set to valid values.
func validBase() Config {
	return Config{
		DrainSeconds:          60,
		ShutdownBudgetSeconds: 90,
		APIPort:               8080,
		KnowledgeFile:         "knowledge_base.txt",
		LLMProvider:           "gemini",
		GeminiAPIKey:          "test-key",
		GeminiModel:           "gemini-2.0-flash",
		GeminiEmbedModel:      "text-embedding-004",
		TopK:                  3,
		BatchWorkers:          4,
		MessageTimeoutSeconds: 120,
		FetchLimit:            20,
		SMTPPort:              465,
	}
}

func TestRegisterFlags_Defaults(t *testing.T) {
	t.Parallel()

	var c Config
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c.RegisterFlags(fs)

	if err := fs.Parse(nil); err != nil {
		t.Fatalf("parse empty args: %v", err)
	}

	if c.DrainSeconds != 60 {
		t.Errorf("DrainSeconds = %d, want 60", c.DrainSeconds)
	}
	if c.ShutdownBudgetSeconds != 90 {
		t.Errorf("ShutdownBudgetSeconds = %d, want 90", c.ShutdownBudgetSeconds)
	}
	if c.APIPort != 8080 {
		t.Errorf("APIPort = %d, want 8080", c.APIPort)
	}
	if c.KnowledgeFile != "knowledge_base.txt" {
		t.Errorf("KnowledgeFile = %q, want %q", c.KnowledgeFile, "knowledge_base.txt")
	}
	if c.LLMProvider != "gemini" {
		t.Errorf("LLMProvider = %q, want gemini", c.LLMProvider)
	}
	if c.TopK != 3 {
		t.Errorf("TopK = %d, want 3", c.TopK)
	}
	if c.FetchLimit != 20 {
		t.Errorf("FetchLimit = %d, want 20", c.FetchLimit)
	}
	if c.IMAPAddr != "imap.gmail.com:993" {
		t.Errorf("IMAPAddr = %q, want imap.gmail.com:993", c.IMAPAddr)
	}
	if c.SMTPPort != 465 {
		t.Errorf("SMTPPort = %d, want 465", c.SMTPPort)
	}
	if !c.WatchKnowledge {
		t.Error("WatchKnowledge default should be true")
	}
}

func TestRegisterFlags_Override(t *testing.T) {
	t.Parallel()

	var c Config
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c.RegisterFlags(fs)

	args := []string{
		"-drain-seconds", "30",
		"-shutdown-budget-seconds", "120",
		"-http-port", "9090",
		"-knowledge-file", "/data/kb.txt",
		"-llm-provider", "openai",
		"-openai-api-key", "sk-override",
		"-openai-model", "gpt-4o",
		"-top-k", "5",
		"-batch-workers", "8",
	}
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse args: %v", err)
	}

	if c.DrainSeconds != 30 {
		t.Errorf("DrainSeconds = %d, want 30", c.DrainSeconds)
	}
	if c.ShutdownBudgetSeconds != 120 {
		t.Errorf("ShutdownBudgetSeconds = %d, want 120", c.ShutdownBudgetSeconds)
	}
	if c.APIPort != 9090 {
		t.Errorf("APIPort = %d, want 9090", c.APIPort)
	}
	if c.KnowledgeFile != "/data/kb.txt" {
		t.Errorf("KnowledgeFile = %q, want /data/kb.txt", c.KnowledgeFile)
	}
	if c.LLMProvider != "openai" {
		t.Errorf("LLMProvider = %q, want openai", c.LLMProvider)
	}
	if c.OpenAIAPIKey != "sk-override" {
		t.Errorf("OpenAIAPIKey = %q, want sk-override", c.OpenAIAPIKey)
	}
	if c.OpenAIModel != "gpt-4o" {
		t.Errorf("OpenAIModel = %q, want gpt-4o", c.OpenAIModel)
	}
	if c.TopK != 5 {
		t.Errorf("TopK = %d, want 5", c.TopK)
	}
	if c.BatchWorkers != 8 {
		t.Errorf("BatchWorkers = %d, want 8", c.BatchWorkers)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mutate    func(*Config)
		wantErr   bool
		errSubstr []string // substrings that must appear in error message
	}{
		{
			name:    "valid base",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name: "valid openai provider",
			mutate: func(c *Config) {
				c.LLMProvider = "openai"
				c.OpenAIAPIKey = "sk-test"
				c.OpenAIModel = "gpt-4o-mini"
				c.OpenAIEmbedModel = "text-embedding-3-small"
			},
			wantErr: false,
		},
		{
			name: "mailbox enabled with credentials",
			mutate: func(c *Config) {
				c.MailAddress = "support@example.com"
				c.MailPassword = "app-password"
			},
			wantErr: false,
		},
		// DrainSeconds boundaries
		{
			name:      "drain zero",
			mutate:    func(c *Config) { c.DrainSeconds = 0 },
			wantErr:   true,
			errSubstr: []string{"DRAIN_SECONDS"},
		},
		{
			name:      "drain above max",
			mutate:    func(c *Config) { c.DrainSeconds = 301; c.ShutdownBudgetSeconds = 302 },
			wantErr:   true,
			errSubstr: []string{"DRAIN_SECONDS", "SHUTDOWN_BUDGET_SECONDS"},
		},
		// Cross-field: budget vs drain
		{
			name:      "budget equals drain",
			mutate:    func(c *Config) { c.ShutdownBudgetSeconds = c.DrainSeconds },
			wantErr:   true,
			errSubstr: []string{"must be greater than"},
		},
		{
			name:      "budget less than drain",
			mutate:    func(c *Config) { c.ShutdownBudgetSeconds = 30 },
			wantErr:   true,
			errSubstr: []string{"must be greater than"},
		},
		// APIPort boundaries
		{
			name:      "port zero",
			mutate:    func(c *Config) { c.APIPort = 0 },
			wantErr:   true,
			errSubstr: []string{"HTTP_PORT"},
		},
		{
			name:      "port above max",
			mutate:    func(c *Config) { c.APIPort = 65536 },
			wantErr:   true,
			errSubstr: []string{"HTTP_PORT"},
		},
		// Required fields
		{
			name:      "empty knowledge file",
			mutate:    func(c *Config) { c.KnowledgeFile = "" },
			wantErr:   true,
			errSubstr: []string{"KNOWLEDGE_FILE"},
		},
		{
			name:      "unknown provider",
			mutate:    func(c *Config) { c.LLMProvider = "anthropic" },
			wantErr:   true,
			errSubstr: []string{"LLM_PROVIDER"},
		},
		{
			name:      "gemini without key",
			mutate:    func(c *Config) { c.GeminiAPIKey = "" },
			wantErr:   true,
			errSubstr: []string{"GEMINI_API_KEY"},
		},
		{
			name:      "gemini without embed model",
			mutate:    func(c *Config) { c.GeminiEmbedModel = "" },
			wantErr:   true,
			errSubstr: []string{"GEMINI_EMBED_MODEL"},
		},
		{
			name: "openai without key",
			mutate: func(c *Config) {
				c.LLMProvider = "openai"
				c.OpenAIModel = "gpt-4o-mini"
				c.OpenAIEmbedModel = "text-embedding-3-small"
			},
			wantErr:   true,
			errSubstr: []string{"OPENAI_API_KEY"},
		},
		// Numeric ranges
		{
			name:      "top-k zero",
			mutate:    func(c *Config) { c.TopK = 0 },
			wantErr:   true,
			errSubstr: []string{"TOP_K"},
		},
		{
			name:      "top-k above max",
			mutate:    func(c *Config) { c.TopK = 21 },
			wantErr:   true,
			errSubstr: []string{"TOP_K"},
		},
		{
			name:      "workers zero",
			mutate:    func(c *Config) { c.BatchWorkers = 0 },
			wantErr:   true,
			errSubstr: []string{"BATCH_WORKERS"},
		},
		{
			name:      "timeout above max",
			mutate:    func(c *Config) { c.MessageTimeoutSeconds = 601 },
			wantErr:   true,
			errSubstr: []string{"MESSAGE_TIMEOUT_SECONDS"},
		},
		{
			name:      "fetch limit zero",
			mutate:    func(c *Config) { c.FetchLimit = 0 },
			wantErr:   true,
			errSubstr: []string{"FETCH_LIMIT"},
		},
		{
			name:      "smtp port negative",
			mutate:    func(c *Config) { c.SMTPPort = -1 },
			wantErr:   true,
			errSubstr: []string{"SMTP_PORT"},
		},
		// Cross-field: mailbox credentials
		{
			name:      "mail address without password",
			mutate:    func(c *Config) { c.MailAddress = "support@example.com" },
			wantErr:   true,
			errSubstr: []string{"MAIL_PASSWORD"},
		},
		// Error accumulation
		{
			name: "multiple fields invalid",
			mutate: func(c *Config) {
				c.DrainSeconds = 0
				c.APIPort = 0
				c.TopK = 0
				c.GeminiAPIKey = ""
			},
			wantErr:   true,
			errSubstr: []string{"DRAIN_SECONDS", "HTTP_PORT", "TOP_K", "GEMINI_API_KEY"},
		},
		{
			name: "extreme negative values",
			mutate: func(c *Config) {
				c.DrainSeconds = math.MinInt32
				c.ShutdownBudgetSeconds = math.MinInt32
				c.APIPort = math.MinInt32
			},
			wantErr:   true,
			errSubstr: []string{"DRAIN_SECONDS", "SHUTDOWN_BUDGET_SECONDS", "HTTP_PORT"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := validBase()
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				errMsg := err.Error()
				for _, sub := range tt.errSubstr {
					if !strings.Contains(errMsg, sub) {
						t.Errorf("error %q does not contain %q", errMsg, sub)
					}
				}
			}
		})
	}
}

func FuzzValidate(f *testing.F) {
	seeds := []struct {
		drain, budget, port, topK int
		provider, key             string
	}{
		{60, 90, 8080, 3, "gemini", "test-key"},
		{1, 2, 1, 1, "gemini", "k"},
		{299, 300, 65535, 20, "gemini", "k"},
		{0, 0, 0, 0, "", ""},
		{-1, -1, -1, -1, "openai", ""},
		{300, 300, 65535, 21, "gemini", "k"},
		{150, 100, 8080, 3, "other", "k"},
		{math.MinInt32, math.MinInt32, math.MinInt32, math.MinInt32, "", ""},
		{math.MaxInt32, math.MaxInt32, math.MaxInt32, math.MaxInt32, "gemini", "k"},
	}
	for _, s := range seeds {
		f.Add(s.drain, s.budget, s.port, s.topK, s.provider, s.key)
	}

	f.Fuzz(func(t *testing.T, drain, budget, port, topK int, provider, key string) {
		c := validBase()
		c.DrainSeconds = drain
		c.ShutdownBudgetSeconds = budget
		c.APIPort = port
		c.TopK = topK
		c.LLMProvider = provider
		c.GeminiAPIKey = key
		c.OpenAIAPIKey = key

		err := c.Validate()

		drainOK := drain >= 1 && drain <= 300
		budgetOK := budget >= 1 && budget <= 300
		portOK := port >= 1 && port <= 65535
		crossOK := budget > drain
		topKOK := topK >= 1 && topK <= 20
		providerOK := (provider == "gemini" || provider == "openai") && key != ""

		allValid := drainOK && budgetOK && portOK && crossOK && topKOK && providerOK

		if allValid && err != nil {
			t.Errorf("expected no error for valid config %+v, got: %v", c, err)
		}
		if !allValid && err == nil {
			t.Errorf("expected error for invalid config %+v, got nil", c)
		}
	})
}
