package rowsource

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks a transient backend failure, such as a reset
// connection or a replica failover, that a [Backoff] may try again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err as a RetryableError. Retryable(nil) is nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err is wrapped with RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Backoff retries backend reads with exponential delays.
type Backoff struct {
	Attempts int           // total calls, at least 1
	Delay    time.Duration // wait after the first failure
	MaxDelay time.Duration // cap on the doubled wait; 0 means uncapped
}

// Do calls fn until it succeeds, fails with an error not wrapped by
// [Retryable], or runs out of attempts. The last error is returned, or
// ctx.Err() if ctx ends during a wait.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	wait := b.Delay
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || !IsRetryable(err) || attempt >= b.Attempts {
			return err
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		wait *= 2
		if b.MaxDelay > 0 && wait > b.MaxDelay {
			wait = b.MaxDelay
		}
	}
}
