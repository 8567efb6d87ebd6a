// Package retry provides bounded retries with exponential backoff for
// provider round-trips.
package retry

import (
	"context"
	"time"
)

const (
	// DefaultAttempts bounds how often a provider call is tried in total.
	DefaultAttempts = 3
	// DefaultBackoff is the delay before the first retry; it doubles after
	// each failed attempt.
	DefaultBackoff = 500 * time.Millisecond
)

// Do runs fn up to attempts times, sleeping backoff, 2*backoff, ... between
// attempts. It returns nil on the first success, the last error once
// attempts are exhausted, or the context error if ctx ends while waiting.
func Do(ctx context.Context, attempts int, backoff time.Duration, fn func() error) error {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	if backoff <= 0 {
		backoff = DefaultBackoff
	}
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff << i):
		}
	}
	return err
}
