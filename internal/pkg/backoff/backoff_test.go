// Copyright 2026 Peter Edge
//
// All rights reserved.

package backoff

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testPolicy = Policy{
	MaxAttempts:  3,
	InitialDelay: time.Millisecond,
	MaxDelay:     2 * time.Millisecond,
}

func TestRetrySucceedsAfterTransientErrors(t *testing.T) {
	t.Parallel()
	var attempts []int
	result, err := Retry(context.Background(), testPolicy, func(_ context.Context, attempt int) (string, error) {
		attempts = append(attempts, attempt)
		if attempt < 2 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})
	require.NoError(t, err)
	require.Equal(t, "ok", result)
	require.Equal(t, []int{0, 1, 2}, attempts)
}

func TestRetryExhausted(t *testing.T) {
	t.Parallel()
	transientErr := errors.New("transient")
	calls := 0
	_, err := Retry(context.Background(), testPolicy, func(context.Context, int) (int, error) {
		calls++
		return 0, transientErr
	})
	require.ErrorIs(t, err, transientErr)
	require.ErrorContains(t, err, "failed after 3 attempts")
	require.Equal(t, 3, calls)
}

func TestRetryPermanent(t *testing.T) {
	t.Parallel()
	permanentErr := errors.New("not found")
	calls := 0
	_, err := Retry(context.Background(), testPolicy, func(context.Context, int) (int, error) {
		calls++
		return 0, Permanent(permanentErr)
	})
	require.Equal(t, permanentErr, err)
	require.Equal(t, 1, calls)
}

func TestRetrySingleAttempt(t *testing.T) {
	t.Parallel()
	transientErr := errors.New("transient")
	_, err := Retry(context.Background(), Policy{}, func(context.Context, int) (int, error) {
		return 0, transientErr
	})
	require.Equal(t, transientErr, err)
}

func TestRetryCanceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Retry(ctx, testPolicy, func(context.Context, int) (int, error) {
		calls++
		cancel()
		return 0, errors.New("transient")
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}

func TestDefaultPolicy(t *testing.T) {
	t.Parallel()
	calls := 0
	_, err := Retry(context.Background(), DefaultPolicy, func(context.Context, int) (int, error) {
		calls++
		return 0, errors.New("transient")
	})
	require.Error(t, err)
	require.Equal(t, 1, calls)
}

func TestRetryableStatus(t *testing.T) {
	t.Parallel()
	require.True(t, RetryableStatus(http.StatusTooManyRequests))
	require.True(t, RetryableStatus(http.StatusBadGateway))
	require.False(t, RetryableStatus(http.StatusNotFound))
	require.False(t, RetryableStatus(http.StatusOK))
}
