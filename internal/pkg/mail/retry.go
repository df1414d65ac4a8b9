package mail

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/RenewalHub/RenewalHub/internal/pkg/env"
)

const (
	DefaultMaxAttempts = 5
	DefaultBaseDelay   = 500 * time.Millisecond
	DefaultMaxDelay    = 30 * time.Second
)

// RetryPolicy retries a send with exponential backoff, but only for
// rate-limit-class errors. Permanent failures (bad payload, auth) must
// surface immediately.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Sleep       func(time.Duration) // injectable for tests
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: env.GetEnvInt("MAIL_RETRY_MAX_ATTEMPTS", DefaultMaxAttempts),
		BaseDelay:   DefaultBaseDelay,
		MaxDelay:    DefaultMaxDelay,
		Sleep:       time.Sleep,
	}
}

func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err = ctx.Err(); err != nil {
			return err
		}
		if err = fn(); err == nil {
			return nil
		}
		if !IsRateLimitError(err) {
			return err
		}
		if attempt == maxAttempts-1 {
			break
		}
		delay := p.backoff(attempt)
		log.Warnf("[Mail] rate limited (attempt %d/%d), backing off %s: %v", attempt+1, maxAttempts, delay, err)
		sleep(delay)
	}
	return err
}

// backoff is base*2^attempt with +/-50% jitter, capped at MaxDelay.
func (p RetryPolicy) backoff(attempt int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = DefaultBaseDelay
	}
	maxDelay := p.MaxDelay
	if maxDelay <= 0 {
		maxDelay = DefaultMaxDelay
	}

	delay := base << uint(attempt)
	if delay > maxDelay || delay <= 0 {
		delay = maxDelay
	}
	jitter := time.Duration(rand.Int63n(int64(delay))) - delay/2
	delay += jitter / 2
	if delay < base {
		delay = base
	}
	return delay
}

// IsRateLimitError classifies transient throttling by message pattern, the
// only signal most providers give us for HTTP 429-style rejections.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "too many requests") ||
		strings.Contains(msg, "rate limit")
}
