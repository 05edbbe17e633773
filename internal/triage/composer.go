package triage

import (
	"context"
	"fmt"
	"strings"

	"github.com/linnemanlabs/go-core/log"

	"github.com/Balaji1472/Automated-Email-Assistant/internal/knowledge"
	"github.com/Balaji1472/Automated-Email-Assistant/internal/llm"
)

// signature is the fixed closing block of every drafted reply.
const signature = "Best regards,\nAlex\nCustomer Support Team"

// cannedResponse is returned whenever the generative call fails. A draft is
// never empty.
const cannedResponse = `Dear Customer,

Thank you for contacting us. We have received your email and are reviewing your request.

We will get back to you with a detailed response within 24 hours. If this is an urgent matter, please don't hesitate to call our support line.

` + signature

// Composer drafts a reply from an analysis, the retrieved knowledge and the
// original message body. Compose never fails: a generation error yields the
// canned template.
type Composer struct {
	provider llm.Provider
	logger   log.Logger
	hooks    Hooks
}

// NewComposer creates a Composer with the given provider.
func NewComposer(provider llm.Provider, logger log.Logger, hooks Hooks) *Composer {
	if logger == nil {
		logger = log.Nop()
	}
	return &Composer{
		provider: provider,
		logger:   logger,
		hooks:    hooks,
	}
}

// Compose generates the reply draft. The returned text is always non-empty.
func (c *Composer) Compose(ctx context.Context, a Analysis, retrieved *knowledge.Retrieved, body string) string {
	text, err := c.provider.Generate(ctx, buildResponsePrompt(a, retrieved, body))
	if err != nil {
		c.logger.Warn(ctx, "generation failed, using canned response", "error", err.Error())
		if c.hooks.OnCompose != nil {
			c.hooks.OnCompose(true)
		}
		return cannedResponse
	}

	text = strings.TrimSpace(text)
	if text == "" {
		if c.hooks.OnCompose != nil {
			c.hooks.OnCompose(true)
		}
		return cannedResponse
	}

	if c.hooks.OnCompose != nil {
		c.hooks.OnCompose(false)
	}
	return text
}

func buildResponsePrompt(a Analysis, retrieved *knowledge.Retrieved, body string) string {
	return fmt.Sprintf(`You are Alex, a professional Customer Support Assistant. Write a helpful email response based on the analysis below.

Customer Email Analysis:
- Sentiment: %s
- Priority: %s
- Summary: %s

Relevant Knowledge Base Information:
%s

Original Customer Email:
%s

Instructions:
1. Start with a professional greeting
2. If sentiment is Negative, acknowledge their concern empathetically
3. If priority is Urgent, acknowledge the urgency
4. Use the knowledge base information to address their specific question
5. If knowledge base doesn't have the answer, say you're investigating and will follow up
6. Maintain a helpful, professional tone
7. End with: "Best regards,\nAlex\nCustomer Support Team"

Write the email response:`, a.Sentiment, a.Priority, a.Summary, retrieved.Render(), body)
}
