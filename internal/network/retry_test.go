package network_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nebulaai/nebula/internal/network"
)

func TestRetry_SuccessFirstAttempt(t *testing.T) {
	attempts := 0
	result, err := network.Retry(context.Background(), func() (string, error) {
		attempts++
		return "success", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "success", result)
	assert.Equal(t, 1, attempts)
}

func TestRetry_SuccessAfterRetry(t *testing.T) {
	cfg := network.RetryConfig{
		MaxAttempts: 4,
		BaseDelay:   time.Millisecond,
		MaxDelay:    4 * time.Millisecond,
	}

	attempts := 0
	result, err := network.RetryWithConfig(context.Background(), cfg, func() (string, error) {
		attempts++
		if attempts < 3 {
			return "", network.ErrRetryable
		}
		return "success", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "success", result)
	assert.Equal(t, 3, attempts)
}

var errNonRetryable = errors.New("non-retryable error")

func TestRetry_NonRetryableError(t *testing.T) {
	attempts := 0

	_, err := network.Retry(context.Background(), func() (string, error) {
		attempts++
		return "", errNonRetryable
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts) // Should not retry
}

func TestRetry_MaxAttempts(t *testing.T) {
	cfg := network.RetryConfig{
		MaxAttempts: 4,
		BaseDelay:   time.Millisecond,
		MaxDelay:    4 * time.Millisecond,
	}

	attempts := 0
	_, err := network.RetryWithConfig(context.Background(), cfg, func() (string, error) {
		attempts++
		return "", network.ErrRetryable
	})

	require.Error(t, err)
	assert.Equal(t, 4, attempts) // 1 initial + 3 retries
}

func TestRetry_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := network.Retry(ctx, func() (string, error) {
		attempts++
		return "", network.ErrRetryable
	})

	require.Error(t, err)
	assert.Less(t, attempts, 4) // Should have been canceled before all attempts
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, network.IsRetryable(network.ErrRetryable))
	assert.True(t, network.IsRetryable(network.ErrTimeout))
	assert.True(t, network.IsRetryable(network.ErrRateLimited))
	assert.True(t, network.IsRetryable(context.DeadlineExceeded))

	assert.False(t, network.IsRetryable(errNonRetryable))
	assert.False(t, network.IsRetryable(nil))
}

func TestWrapRetryable(t *testing.T) {
	assert.NoError(t, network.WrapRetryable(nil))

	err := network.WrapRetryable(errNonRetryable)
	assert.True(t, network.IsRetryable(err))
	assert.True(t, errors.Is(err, errNonRetryable))
}
