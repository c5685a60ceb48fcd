package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := DefaultPolicy.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesTransientErrors(t *testing.T) {
	policy := Policy{MaxAttempts: 3, Backoff: time.Millisecond}

	calls := 0
	err := policy.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return Transient(errors.New("connection reset"))
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnNonRetryableError(t *testing.T) {
	policy := Policy{MaxAttempts: 5, Backoff: time.Millisecond}
	domainErr := errors.New("session already closed")

	calls := 0
	err := policy.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return domainErr
	})

	assert.ErrorIs(t, err, domainErr)
	assert.Equal(t, 1, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	policy := Policy{MaxAttempts: 3, Backoff: time.Millisecond}
	transient := errors.New("timeout")

	calls := 0
	err := policy.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return Transient(transient)
	})

	assert.Error(t, err)
	assert.ErrorIs(t, err, transient)
	assert.Equal(t, 3, calls)
}

func TestDoRespectsContextCancellation(t *testing.T) {
	policy := Policy{MaxAttempts: 10, Backoff: 50 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := policy.Do(ctx, func(ctx context.Context) error {
		return Transient(errors.New("timeout"))
	})

	assert.ErrorIs(t, err, context.Canceled)
	// The failure that triggered the retry is not lost to the cancellation.
	assert.ErrorContains(t, err, "timeout")
}

func TestIsRetryable(t *testing.T) {
	base := errors.New("io failure")

	assert.False(t, IsRetryable(base))
	assert.True(t, IsRetryable(Transient(base)))
	assert.False(t, IsRetryable(nil))

	// Transient survives one level of wrapping.
	wrapped := Transient(base)
	assert.True(t, errors.Is(wrapped, base))
}
