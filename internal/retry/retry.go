// Package retry holds the fixed-interval retry policy shared by session
// detection and message dispatch.
package retry

import (
	"context"
	"errors"
	"time"
)

// Policy runs an operation up to Attempts times, sleeping Backoff between
// attempts. There is no exponential growth: pacing against the chat client
// is deliberately flat.
type Policy struct {
	Attempts int
	Backoff  time.Duration
}

type stopError struct{ err error }

func (s *stopError) Error() string { return s.err.Error() }
func (s *stopError) Unwrap() error { return s.err }

// Stop wraps err so Do gives up immediately instead of burning the
// remaining attempts.
func Stop(err error) error {
	if err == nil {
		return nil
	}
	return &stopError{err: err}
}

// Do invokes fn with the 1-based attempt number until it returns nil, a
// Stop-wrapped error, or the attempt budget is exhausted. The sleep between
// attempts honors ctx cancellation.
func (p Policy) Do(ctx context.Context, fn func(attempt int) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var last error
	for i := 1; i <= attempts; i++ {
		err := fn(i)
		if err == nil {
			return nil
		}
		var stop *stopError
		if errors.As(err, &stop) {
			return stop.err
		}
		last = err
		if i == attempts {
			break
		}
		if err := sleep(ctx, p.Backoff); err != nil {
			return err
		}
	}
	return last
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	tmr := time.NewTimer(d)
	defer tmr.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-tmr.C:
		return nil
	}
}

// Sleep exposes the ctx-aware pause for callers that pace without retrying.
func Sleep(ctx context.Context, d time.Duration) error { return sleep(ctx, d) }
