package network_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nebulaai/nebula/internal/network"
)

func TestRateLimiter_AllowWithinBurst(t *testing.T) {
	limiter := network.NewRateLimiter(1, 3)

	assert.True(t, limiter.Allow("eth_getBalance"))
	assert.True(t, limiter.Allow("eth_getBalance"))
	assert.True(t, limiter.Allow("eth_getBalance"))
	assert.False(t, limiter.Allow("eth_getBalance"))
}

func TestRateLimiter_PerMethodBuckets(t *testing.T) {
	limiter := network.NewRateLimiter(1, 1)

	assert.True(t, limiter.Allow("eth_getBalance"))
	assert.False(t, limiter.Allow("eth_getBalance"))

	// A different method has its own bucket
	assert.True(t, limiter.Allow("eth_chainId"))
}

func TestRateLimiter_WaitHonorsContext(t *testing.T) {
	limiter := network.NewRateLimiter(0.001, 1)
	require.NoError(t, limiter.Wait(context.Background(), "eth_accounts"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := limiter.Wait(ctx, "eth_accounts")
	require.Error(t, err)
}

func TestDefaultRateLimiter(t *testing.T) {
	limiter := network.DefaultRateLimiter()
	for i := 0; i < 10; i++ {
		assert.True(t, limiter.Allow("eth_call"))
	}
}
