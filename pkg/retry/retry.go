// Package retry provides a bounded retry loop with a pluggable backoff and
// sleeper so callers can be tested without waiting on a wall clock.
package retry

import (
	"context"
	"errors"
	"time"
)

// ErrExhausted is returned when every attempt ran without the operation
// reporting completion and without an error.
var ErrExhausted = errors.New("retry: attempts exhausted")

// Backoff returns how long to wait before the given attempt (0-based).
// A zero or negative duration means no wait.
type Backoff func(attempt int) time.Duration

// Linear waits attempt*step before each attempt: 0, step, 2*step, ...
func Linear(step time.Duration) Backoff {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * step
	}
}

// Constant waits d before every attempt except the first.
func Constant(d time.Duration) Backoff {
	return func(attempt int) time.Duration {
		if attempt == 0 {
			return 0
		}
		return d
	}
}

// Fixed waits d before every attempt, including the first. This is the
// shape of an interval timer: the first tick fires one period after start.
func Fixed(d time.Duration) Backoff {
	return func(int) time.Duration {
		return d
	}
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// ContextSleep is the real-time Sleeper.
func ContextSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Func is one attempt. It reports done=true once the result is usable.
// A non-nil error is remembered and the loop continues; it is returned only
// if no later attempt succeeds.
type Func func(ctx context.Context, attempt int) (done bool, err error)

// Policy bundles the loop parameters.
type Policy struct {
	MaxAttempts int
	Backoff     Backoff
	Sleep       Sleeper
}

// Do runs fn up to p.MaxAttempts times, sleeping p.Backoff(attempt) before
// each attempt, and stops as soon as fn reports done. It returns the number
// of attempts made. Context cancellation stops the loop immediately.
func Do(ctx context.Context, p Policy, fn Func) (int, error) {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.Backoff == nil {
		p.Backoff = Constant(0)
	}
	if p.Sleep == nil {
		p.Sleep = ContextSleep
	}

	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if wait := p.Backoff(attempt); wait > 0 {
			if err := p.Sleep(ctx, wait); err != nil {
				return attempt, err
			}
		}
		if err := ctx.Err(); err != nil {
			return attempt, err
		}

		done, err := fn(ctx, attempt)
		if done {
			return attempt + 1, nil
		}
		if err != nil {
			lastErr = err
		}
	}

	if lastErr != nil {
		return p.MaxAttempts, lastErr
	}
	return p.MaxAttempts, ErrExhausted
}
