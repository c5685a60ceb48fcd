package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy describes how idempotent storage operations are retried. It is
// applied at the persistence-gateway boundary only; operations that are not
// idempotent (for example a fresh check-in insert) must not be wrapped.
type Policy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// DefaultPolicy retries transient storage failures three times with a
// doubling backoff starting at 100ms.
var DefaultPolicy = Policy{MaxAttempts: 3, Backoff: 100 * time.Millisecond}

// Do runs fn until it succeeds, the attempts are exhausted, or the context
// is cancelled. The last error is returned; cancellation during backoff
// carries the last attempt's failure in its message.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	backoff := p.Backoff
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w (last error: %v)", ctx.Err(), err)
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}

// retryable marks an error as safe to retry.
type retryable struct {
	err error
}

func (r retryable) Error() string { return r.err.Error() }
func (r retryable) Unwrap() error { return r.err }

// Transient wraps a transient storage error so Do will retry it. Domain
// errors (not found, invalid state, conflict) are returned unwrapped and
// fail fast.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return retryable{err: err}
}

// IsRetryable reports whether err was marked with Transient.
func IsRetryable(err error) bool {
	for err != nil {
		if _, ok := err.(retryable); ok {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
