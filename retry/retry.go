// Package retry wraps calls against the external collaborators with the
// pipeline's exponential-backoff schedule: up to 4 attempts with delays of
// 0s, 1s, 2s and 4s before each attempt.
package retry

import (
	"context"
	"errors"
	"time"

	"postforge/config"
	"postforge/errs"
)

// DefaultDelays is the delay before each attempt, first attempt included.
var DefaultDelays = []time.Duration{0, time.Second, 2 * time.Second, 4 * time.Second}

type Retrier struct {
	delays []time.Duration
}

func New() *Retrier {
	return &Retrier{delays: DefaultDelays}
}

// NewWithDelays builds a retrier with a custom schedule. Tests use this to
// avoid real sleeps.
func NewWithDelays(delays []time.Duration) *Retrier {
	if len(delays) == 0 {
		delays = []time.Duration{0}
	}
	return &Retrier{delays: delays}
}

// Do runs fn until it succeeds, returns a non-retryable failure, the
// schedule is exhausted, or ctx is done. Retries count against the caller's
// deadline; Do never extends it.
func (r *Retrier) Do(ctx context.Context, op string, fn func(context.Context) error) error {
	var lastErr error
	for attempt, delay := range r.delays {
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
			return lastErr
		}
		if !errs.IsRetryable(lastErr) {
			return lastErr
		}

		config.WarnWithFields("retryable failure", config.Fields{
			"op":      op,
			"attempt": attempt + 1,
			"error":   lastErr.Error(),
		})
	}
	return lastErr
}
