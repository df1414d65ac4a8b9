package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/gofiber/fiber/v2/log"

	"github.com/RenewalHub/RenewalHub/internal/pkg/env"
)

// SMTPMailer sends emails via SMTP
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	sender   string
}

func NewSMTPMailer() *SMTPMailer {
	sender := env.GetEnv("SMTP_SENDER", "")
	if sender == "" {
		sender = fmt.Sprintf("no-reply@%s", "localhost")
		log.Warnf("[Mail] SMTP_SENDER not set, using default sender: %s", sender)
	}
	return &SMTPMailer{
		host:     env.GetEnv("SMTP_HOST", ""),
		port:     env.GetEnv("SMTP_PORT", "587"),
		username: env.GetEnv("SMTP_USERNAME", ""),
		password: env.GetEnv("SMTP_PASSWORD", ""),
		sender:   sender,
	}
}

func (m *SMTPMailer) Send(_ context.Context, to []string, subject, htmlBody, textBody string) error {
	var auth smtp.Auth
	if m.username != "" && m.password != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	addr := fmt.Sprintf("%s:%s", m.host, m.port)
	msg := buildMessage(m.sender, to, subject, htmlBody, textBody)

	if err := smtp.SendMail(addr, auth, m.sender, to, msg); err != nil {
		log.Errorf("[Mail] SMTP send error: %v", err)
		return fmt.Errorf("smtp send to %d recipient(s): %w", len(to), err)
	}
	log.Infof("[Mail] Email sent to %d recipient(s) via %s", len(to), addr)
	return nil
}

// buildMessage assembles a multipart/alternative payload so clients that
// reject HTML still get the plain-text rendering.
func buildMessage(sender string, to []string, subject, htmlBody, textBody string) []byte {
	const boundary = "=_renewalhub_alt"

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", sender)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(textBody)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(htmlBody)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}
