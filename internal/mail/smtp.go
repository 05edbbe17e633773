package mail

import (
	"context"
	"fmt"
	netmail "net/mail"

	gomail "github.com/wneessen/go-mail"
)

// Send delivers a reply to recipient with the subject prefixed "Re: ". The
// recipient may be a display-name address ("Jane <jane@example.com>"); only
// the bare address is used on the wire.
func (m *Mailbox) Send(ctx context.Context, recipient, subject, body string) error {
	addr, err := netmail.ParseAddress(recipient)
	if err != nil {
		return fmt.Errorf("parse recipient %q: %w", recipient, err)
	}

	msg := gomail.NewMsg()
	if err := msg.From(m.cfg.Address); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(addr.Address); err != nil {
		return fmt.Errorf("set to: %w", err)
	}
	msg.Subject("Re: " + subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	client, err := gomail.NewClient(m.cfg.SMTPHost,
		gomail.WithPort(m.cfg.SMTPPort),
		gomail.WithSSL(),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.cfg.Address),
		gomail.WithPassword(m.cfg.Password),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
