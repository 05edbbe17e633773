// Package mail implements the triage.Mailbox boundary: fetching unread
// support mail over IMAP and sending replies over SMTP. The core never
// touches the wire protocols directly; it sees only triage.Message values.
package mail

import (
	"fmt"

	"github.com/linnemanlabs/go-core/log"
)

// supportSubjects are the subject keywords that mark a message as a support
// request. Only unread messages matching one of them are fetched.
var supportSubjects = []string{"Support", "Query", "Request", "Help"}

// Config holds the mail account settings.
type Config struct {
	IMAPAddr string // host:port, e.g. imap.gmail.com:993
	SMTPHost string
	SMTPPort int
	Address  string // account address, also the reply sender
	Password string
}

// Mailbox fetches and sends support mail for a single account. Connections
// are short-lived: each operation dials, runs and logs out.
type Mailbox struct {
	cfg    Config
	logger log.Logger
}

// New creates a Mailbox for the given account.
func New(cfg Config, logger log.Logger) *Mailbox {
	if logger == nil {
		logger = log.Nop()
	}
	return &Mailbox{cfg: cfg, logger: logger}
}

func (m *Mailbox) String() string {
	return fmt.Sprintf("mailbox(%s)", m.cfg.Address)
}
