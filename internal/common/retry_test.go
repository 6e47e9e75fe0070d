package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetrySucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return &RetryableError{Err: errors.New("transient"), Retryable: true}
		}
		return nil
	}, RetryOptions{MaxAttempts: 5, InitialDelay: time.Millisecond})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWithRetryStopsOnNonRetryable(t *testing.T) {
	attempts := 0
	permanent := errors.New("bad credentials")
	err := WithRetry(context.Background(), func() error {
		attempts++
		return &RetryableError{Err: permanent, Retryable: false}
	}, RetryOptions{MaxAttempts: 5, InitialDelay: time.Millisecond})

	require.Error(t, err)
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, attempts)
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), func() error {
		attempts++
		return &RetryableError{Err: errors.New("still down"), Retryable: true}
	}, RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMaxRetries)
	assert.Equal(t, 3, attempts)
}

func TestWithRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := WithRetry(ctx, func() error {
		attempts++
		cancel()
		return &RetryableError{Err: errors.New("transient"), Retryable: true}
	}, RetryOptions{MaxAttempts: 5, InitialDelay: 50 * time.Millisecond})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}
