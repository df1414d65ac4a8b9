package mail

import (
	"context"

	"github.com/gofiber/fiber/v2/log"

	"github.com/RenewalHub/RenewalHub/internal/pkg/env"
)

// Mailer is the outbound transport boundary. Implementations send one message
// to a batch of recipients; batching and retry policy live in the Dispatcher.
type Mailer interface {
	Send(ctx context.Context, to []string, subject, htmlBody, textBody string) error
}

// NewMailerFromEnv selects the transport by configuration presence: a real
// SMTP sender when SMTP_HOST is set, otherwise the logging-only simulation.
func NewMailerFromEnv() Mailer {
	if env.GetEnv("SMTP_HOST", "") == "" {
		log.Info("[Mail] SMTP_HOST not configured, using simulated sends")
		return &LogMailer{}
	}
	return NewSMTPMailer()
}

// LogMailer is the no-credentials fallback: it logs the intended send and
// reports success so the whole pipeline stays operable without a provider.
type LogMailer struct{}

func (m *LogMailer) Send(_ context.Context, to []string, subject, _, _ string) error {
	log.Infof("[Mail] SIMULATED send to %d recipient(s), subject %q: %v", len(to), subject, to)
	return nil
}
