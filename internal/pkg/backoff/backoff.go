// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package backoff provides exponential backoff with jitter for retrying operations.
package backoff

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"
)

// DefaultPolicy makes a single attempt.
var DefaultPolicy = NewPolicy(1)

// NewPolicy returns a policy with the given number of attempts and the default delays.
func NewPolicy(maxAttempts int) Policy {
	return Policy{
		MaxAttempts:  maxAttempts,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     4 * time.Second,
	}
}

// Policy configures Retry.
type Policy struct {
	// MaxAttempts is the total number of calls, including the first.
	// Values below 1 are treated as 1.
	MaxAttempts int
	// InitialDelay is the delay before the second attempt.
	InitialDelay time.Duration
	// MaxDelay caps the delay between attempts.
	MaxDelay time.Duration
}

// Permanent marks err as not retryable.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// RetryableStatus returns true for HTTP status codes that indicate a transient
// failure: 429 and all 5xx codes.
func RetryableStatus(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= 500
}

// Retry calls f repeatedly until it succeeds, returns a Permanent error, the
// context is done, or the policy's attempts are exhausted. Between attempts, it
// waits with exponential backoff and jitter.
//
// Permanent errors are returned unwrapped.
func Retry[T any](
	ctx context.Context,
	policy Policy,
	f func(ctx context.Context, attempt int) (T, error),
) (T, error) {
	var zero T
	maxAttempts := max(policy.MaxAttempts, 1)
	delay := policy.InitialDelay
	for attempt := range maxAttempts {
		result, err := f(ctx, attempt)
		if err == nil {
			return result, nil
		}
		if permanent := (*permanentError)(nil); errors.As(err, &permanent) {
			return zero, permanent.err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}
		// Don't wait after the last attempt.
		if attempt == maxAttempts-1 {
			if maxAttempts == 1 {
				return zero, err
			}
			return zero, fmt.Errorf("failed after %d attempts: %w", maxAttempts, err)
		}
		// Wait with jitter: random duration between delay/2 and delay.
		jitteredDelay := delay/2 + time.Duration(rand.Int64N(int64(delay/2+1)))
		timer := time.NewTimer(jitteredDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
		// Exponential backoff, capped at MaxDelay.
		delay = min(delay*2, policy.MaxDelay)
	}
	return zero, fmt.Errorf("failed after %d attempts", maxAttempts)
}

// *** PRIVATE ***

type permanentError struct {
	err error
}

func (p *permanentError) Error() string {
	return p.err.Error()
}

func (p *permanentError) Unwrap() error {
	return p.err
}
