package notify

import (
	"fmt"
	"net/smtp"
)

// Sender delivers a message to a recipient. Implementations are best-effort
// from the caller's perspective; the status workflow never rolls back on a
// failed send.
type Sender interface {
	Send(toEmail, subject, body string) error
}

// EmailSender sends plain-text mail over SMTP
type EmailSender struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// NewEmailSender creates an SMTP-backed sender
func NewEmailSender(host, port, username, password, from string) *EmailSender {
	return &EmailSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

// Send delivers a single plain-text message
func (s *EmailSender) Send(toEmail, subject, body string) error {
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		s.from, toEmail, subject, body))

	addr := fmt.Sprintf("%s:%s", s.host, s.port)

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	if err := smtp.SendMail(addr, auth, s.from, []string{toEmail}, msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}
	return nil
}
