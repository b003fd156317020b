package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError wraps an error to indicate it should trigger a retry.
// Wrap transient failures (network timeouts, 5xx responses) with this type
// so that [Retry] knows to attempt the operation again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Backoff describes a retry schedule. The delay doubles after each failed
// attempt and is capped at MaxDelay when MaxDelay is positive.
type Backoff struct {
	Attempts int
	Delay    time.Duration
	MaxDelay time.Duration
}

// DefaultBackoff is 3 attempts starting at 500ms.
var DefaultBackoff = Backoff{Attempts: 3, Delay: 500 * time.Millisecond, MaxDelay: 4 * time.Second}

// Retry executes fn according to b. Non-retryable errors are returned
// immediately. Returns the last error if all attempts fail, or ctx.Err() if
// cancelled while waiting.
func Retry(ctx context.Context, b Backoff, fn func() error) error {
	attempts := max(b.Attempts, 1)
	delay := b.Delay
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
				if b.MaxDelay > 0 && delay > b.MaxDelay {
					delay = b.MaxDelay
				}
			}
		}
	}
	return lastErr
}

// IsRetryable reports whether err is marked with [RetryableError].
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}
