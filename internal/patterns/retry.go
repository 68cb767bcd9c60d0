package patterns

import (
	"context"
	"time"
)

// RetryPolicy bounds how often and how patiently a call is repeated.
type RetryPolicy struct {
	// Attempts is the total number of tries, including the first.
	Attempts   int
	Backoff    time.Duration
	MaxBackoff time.Duration
	// Retryable decides whether an error is worth another attempt.
	Retryable func(error) bool
	// OnRetry runs before each repeated attempt.
	OnRetry func(attempt int, err error)
}

// Retry calls fn until it succeeds, returns a non-retryable error, the
// attempts run out or ctx is done. The wait doubles after every failure.
func Retry(ctx context.Context, p RetryPolicy, fn func() error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	wait := p.Backoff

	var err error
	for attempt := 1; ; attempt++ {
		err = fn()
		if err == nil || attempt >= attempts || (p.Retryable != nil && !p.Retryable(err)) {
			return err
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt+1, err)
		}

		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return err
			}
			wait *= 2
			if p.MaxBackoff > 0 && wait > p.MaxBackoff {
				wait = p.MaxBackoff
			}
		} else if ctx.Err() != nil {
			return err
		}
	}
}
