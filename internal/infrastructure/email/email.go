package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"

	"tropharbour-backend/pkg/logger"
)

// Message is a plain text email.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Sender delivers a message, either immediately or by queueing it.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type smtpSender struct {
	addr string
	from string
	auth smtp.Auth
}

// NewSMTPSender delivers over SMTP. Credentials are optional for local
// catch-all servers.
func NewSMTPSender(host string, port int, username, password, from string) Sender {
	s := &smtpSender{
		addr: host + ":" + strconv.Itoa(port),
		from: from,
	}
	if username != "" {
		s.auth = smtp.PlainAuth("", username, password, host)
	}
	return s
}

func (s *smtpSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		s.from, msg.To, msg.Subject, msg.Body))

	if err := smtp.SendMail(s.addr, s.auth, envelopeAddress(s.from), []string{msg.To}, raw); err != nil {
		logger.Warn("Failed to send email", map[string]interface{}{
			"error":     err.Error(),
			"to":        msg.To,
			"smtp_addr": s.addr,
		})
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// envelopeAddress strips a display name: "Name <a@b>" → "a@b".
func envelopeAddress(from string) string {
	start := strings.LastIndex(from, "<")
	if start < 0 {
		return from
	}
	return strings.TrimSuffix(from[start+1:], ">")
}
