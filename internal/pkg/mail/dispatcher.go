package mail

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/RenewalHub/RenewalHub/internal/pkg/env"
)

const (
	DefaultBatchSize  = 50
	DefaultBatchDelay = 400 * time.Millisecond
)

// ErrNoRecipients marks a dispatch whose recipient list was empty after
// cleaning. Callers must not count it as a delivery attempt.
var ErrNoRecipients = errors.New("mail: no valid recipients")

// Dispatcher delivers one rendered message to a recipient list.
type Dispatcher interface {
	Dispatch(ctx context.Context, to []string, subject, htmlBody string) error
}

// BatchDispatcher cleans and de-duplicates recipients, derives a plain-text
// body, and sends in provider-limit-sized batches with an inter-batch delay.
// Rate-limit failures are retried per batch via the retry policy.
type BatchDispatcher struct {
	mailer     Mailer
	batchSize  int
	batchDelay time.Duration
	retry      RetryPolicy
}

func NewBatchDispatcher(mailer Mailer) *BatchDispatcher {
	return &BatchDispatcher{
		mailer:     mailer,
		batchSize:  env.GetEnvInt("MAIL_BATCH_SIZE", DefaultBatchSize),
		batchDelay: time.Duration(env.GetEnvInt("MAIL_BATCH_DELAY_MS", int(DefaultBatchDelay/time.Millisecond))) * time.Millisecond,
		retry:      DefaultRetryPolicy(),
	}
}

func (d *BatchDispatcher) Dispatch(ctx context.Context, to []string, subject, htmlBody string) error {
	recipients := CleanRecipients(to)
	if len(recipients) == 0 {
		return ErrNoRecipients
	}

	textBody := StripHTML(htmlBody)

	batchSize := d.batchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	for start := 0; start < len(recipients); start += batchSize {
		end := start + batchSize
		if end > len(recipients) {
			end = len(recipients)
		}
		batch := recipients[start:end]

		if start > 0 && d.batchDelay > 0 {
			select {
			case <-time.After(d.batchDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := d.retry.Do(ctx, func() error {
			return d.mailer.Send(ctx, batch, subject, htmlBody, textBody)
		})
		if err != nil {
			log.Errorf("[Mail] dispatch failed for batch of %d: %v", len(batch), err)
			return err
		}
	}
	return nil
}

// CleanRecipients trims entries, drops blanks, and removes case-insensitive
// duplicates while keeping the first spelling and the original order.
func CleanRecipients(to []string) []string {
	seen := make(map[string]struct{}, len(to))
	out := make([]string, 0, len(to))
	for _, raw := range to {
		addr := strings.TrimSpace(raw)
		if addr == "" {
			continue
		}
		key := strings.ToLower(addr)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, addr)
	}
	return out
}

var (
	brRe    = regexp.MustCompile(`(?i)<br\s*/?>`)
	blockRe = regexp.MustCompile(`(?i)</(p|div|tr|li|h[1-6]|table)>`)
	tagRe   = regexp.MustCompile(`<[^>]*>`)
	wsRe    = regexp.MustCompile(`[ \t]+`)
)

// StripHTML derives a plain-text body from an HTML one for clients that
// reject HTML parts.
func StripHTML(html string) string {
	text := brRe.ReplaceAllString(html, "\n")
	text = blockRe.ReplaceAllString(text, "\n")
	text = tagRe.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	text = strings.ReplaceAll(text, "&amp;", "&")
	text = strings.ReplaceAll(text, "&lt;", "<")
	text = strings.ReplaceAll(text, "&gt;", ">")
	text = wsRe.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, "\n")
}
