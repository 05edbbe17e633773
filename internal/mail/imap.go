package mail

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	_ "github.com/emersion/go-message/charset"
	gomessage "github.com/emersion/go-message/mail"

	"github.com/Balaji1472/Automated-Email-Assistant/internal/triage"
)

// FetchUnread returns up to limit unread support messages, oldest first. A
// message that cannot be parsed is logged and skipped; it does not fail the
// fetch.
func (m *Mailbox) FetchUnread(ctx context.Context, limit int) ([]triage.Message, error) {
	c, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer c.Logout()

	criteria := supportCriteria()
	criteria.NotFlag = []imap.Flag{imap.FlagSeen}

	data, err := c.Search(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("imap search: %w", err)
	}

	seqNums := data.AllSeqNums()
	if len(seqNums) == 0 {
		return nil, nil
	}
	if len(seqNums) > limit {
		seqNums = seqNums[len(seqNums)-limit:]
	}

	var seqSet imap.SeqSet
	seqSet.AddNum(seqNums...)

	fetchOptions := &imap.FetchOptions{
		UID:         true,
		Envelope:    true,
		BodySection: []*imap.FetchItemBodySection{{}},
	}
	fetched, err := c.Fetch(seqSet, fetchOptions).Collect()
	if err != nil {
		return nil, fmt.Errorf("imap fetch: %w", err)
	}

	msgs := make([]triage.Message, 0, len(fetched))
	for _, buf := range fetched {
		msg, err := toMessage(buf)
		if err != nil {
			m.logger.Warn(ctx, "skipping unparsable message", "uid", uint32(buf.UID), "error", err.Error())
			continue
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// Counts returns the unread and read support message counts.
func (m *Mailbox) Counts(ctx context.Context) (unread, read int, err error) {
	c, err := m.connect()
	if err != nil {
		return 0, 0, err
	}
	defer c.Logout()

	unseen := supportCriteria()
	unseen.NotFlag = []imap.Flag{imap.FlagSeen}
	unseenData, err := c.Search(unseen, nil).Wait()
	if err != nil {
		return 0, 0, fmt.Errorf("imap search unseen: %w", err)
	}
	unread = len(unseenData.AllSeqNums())

	allData, err := c.Search(supportCriteria(), nil).Wait()
	if err != nil {
		return 0, 0, fmt.Errorf("imap search all: %w", err)
	}
	total := len(allData.AllSeqNums())

	return unread, total - unread, nil
}

func (m *Mailbox) connect() (*imapclient.Client, error) {
	c, err := imapclient.DialTLS(m.cfg.IMAPAddr, nil)
	if err != nil {
		return nil, fmt.Errorf("imap dial %s: %w", m.cfg.IMAPAddr, err)
	}
	if err := c.Login(m.cfg.Address, m.cfg.Password).Wait(); err != nil {
		c.Close()
		return nil, fmt.Errorf("imap login: %w", err)
	}
	if _, err := c.Select("INBOX", nil).Wait(); err != nil {
		c.Close()
		return nil, fmt.Errorf("imap select inbox: %w", err)
	}
	return c, nil
}

// supportCriteria builds the OR chain over the support subject keywords.
func supportCriteria() *imap.SearchCriteria {
	crit := subjectCriteria(supportSubjects[0])
	for _, word := range supportSubjects[1:] {
		crit = imap.SearchCriteria{
			Or: [][2]imap.SearchCriteria{{crit, subjectCriteria(word)}},
		}
	}
	return &crit
}

func subjectCriteria(word string) imap.SearchCriteria {
	return imap.SearchCriteria{
		Header: []imap.SearchCriteriaHeaderField{{Key: "Subject", Value: word}},
	}
}

func toMessage(buf *imapclient.FetchMessageBuffer) (triage.Message, error) {
	raw := buf.FindBodySection(&imap.FetchItemBodySection{})
	if raw == nil {
		return triage.Message{}, fmt.Errorf("no body section")
	}

	body, err := extractPlainText(raw)
	if err != nil {
		return triage.Message{}, err
	}

	msg := triage.Message{
		ID:      strconv.FormatUint(uint64(buf.UID), 10),
		Sender:  "Unknown Sender",
		Subject: "No Subject",
		Date:    "Unknown Date",
		Body:    body,
	}

	if env := buf.Envelope; env != nil {
		if len(env.From) > 0 {
			msg.Sender = formatAddress(env.From[0])
		}
		if env.Subject != "" {
			msg.Subject = env.Subject
		}
		if !env.Date.IsZero() {
			msg.Date = env.Date.Format("2006-01-02 15:04")
		}
	}
	return msg, nil
}

func formatAddress(a imap.Address) string {
	if a.Name != "" {
		return fmt.Sprintf("%s <%s>", a.Name, a.Addr())
	}
	return a.Addr()
}

// extractPlainText returns the first inline text/plain part of a MIME
// message, or the whole decoded body for non-multipart messages.
func extractPlainText(raw []byte) (string, error) {
	mr, err := gomessage.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("parse message: %w", err)
	}

	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read part: %w", err)
		}
		h, ok := p.Header.(*gomessage.InlineHeader)
		if !ok {
			continue
		}
		ct, _, err := h.ContentType()
		if err != nil || ct != "text/plain" {
			continue
		}
		b, err := io.ReadAll(p.Body)
		if err != nil {
			return "", fmt.Errorf("read body: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	return "", fmt.Errorf("no text/plain part")
}
