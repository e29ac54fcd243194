package token_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nebulaai/nebula/internal/token"
)

func TestDistribution(t *testing.T) {
	dist := token.Distribution()
	require.Len(t, dist, 5)

	assert.Equal(t, "GPU Lenders", dist[0].Name)
	assert.Equal(t, int64(400_000_000), dist[0].Tokens)

	var total int64
	for _, a := range dist {
		total += a.Tokens
	}
	assert.Equal(t, token.Market().TotalSupply, total, "allocations must cover the full supply")
}

func TestMarket(t *testing.T) {
	m := token.Market()
	assert.Equal(t, int64(1_000_000_000), m.TotalSupply)
	assert.Equal(t, int64(350_000_000), m.CirculatingSupply)
	assert.Equal(t, 0.085, m.PriceUSD)
}

func TestStakedPercent(t *testing.T) {
	m := token.Market()
	assert.InDelta(t, 35.71, m.StakedPercent(), 0.01)

	var zero token.MarketStats
	assert.Zero(t, zero.StakedPercent())
}

func TestAllocationPercent(t *testing.T) {
	m := token.Market()
	dist := token.Distribution()
	assert.InDelta(t, 40.0, m.AllocationPercent(dist[0]), 1e-9)
	assert.InDelta(t, 5.0, m.AllocationPercent(dist[4]), 1e-9)
}
