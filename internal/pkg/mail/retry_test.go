package mail

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy(maxAttempts int) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: maxAttempts,
		BaseDelay:   time.Millisecond,
		MaxDelay:    10 * time.Millisecond,
		Sleep:       func(time.Duration) {},
	}
}

func TestRetryEventuallySucceeds(t *testing.T) {
	calls := 0
	err := testPolicy(5).Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("421 too many requests, slow down")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryCeiling(t *testing.T) {
	calls := 0
	err := testPolicy(5).Do(context.Background(), func() error {
		calls++
		return errors.New("rate limit exceeded")
	})
	assert.Error(t, err)
	assert.Equal(t, 5, calls)
}

func TestPermanentErrorNotRetried(t *testing.T) {
	calls := 0
	err := testPolicy(5).Do(context.Background(), func() error {
		calls++
		return errors.New("535 authentication failed")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := testPolicy(5).Do(ctx, func() error {
		calls++
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestIsRateLimitError(t *testing.T) {
	assert.True(t, IsRateLimitError(errors.New("HTTP 429")))
	assert.True(t, IsRateLimitError(errors.New("Too Many Requests")))
	assert.True(t, IsRateLimitError(errors.New("provider rate limit hit")))
	assert.False(t, IsRateLimitError(errors.New("bad payload")))
	assert.False(t, IsRateLimitError(nil))
}
