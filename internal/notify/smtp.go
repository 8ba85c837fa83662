package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPSink emails escalation alerts to a fixed operator address.
type SMTPSink struct {
	addr string // host:port
	from string
	to   []string
	auth smtp.Auth
}

// NewSMTPSink creates an email alert sink. username may be empty for
// unauthenticated relays.
func NewSMTPSink(host string, port int, username, password, from string, to []string) *SMTPSink {
	s := &SMTPSink{
		addr: fmt.Sprintf("%s:%d", host, port),
		from: from,
		to:   to,
	}
	if username != "" {
		s.auth = smtp.PlainAuth("", username, password, host)
	}
	return s
}

// Alert sends one plain-text email.
func (s *SMTPSink) Alert(_ context.Context, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + s.from,
		"To: " + strings.Join(s.to, ", "),
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	if err := smtp.SendMail(s.addr, s.auth, s.from, s.to, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}
	return nil
}
