package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nebulaai/nebula/internal/cache"
)

func TestSetGet(t *testing.T) {
	c := cache.New()

	c.Set(cache.Entry{
		ChainID: "0x1",
		Address: "0xabc",
		Balance: "1000000000000000000",
		Symbol:  "ETH",
	})

	entry, ok, age := c.Get("0x1", "0xabc")
	require.True(t, ok)
	assert.Equal(t, "1000000000000000000", entry.Balance)
	assert.Equal(t, "ETH", entry.Symbol)
	assert.Less(t, age, time.Second)
}

func TestGet_Miss(t *testing.T) {
	c := cache.New()

	entry, ok, _ := c.Get("0x1", "0xmissing")
	assert.False(t, ok)
	assert.Nil(t, entry)
}

func TestGet_PerChainIsolation(t *testing.T) {
	c := cache.New()

	c.Set(cache.Entry{ChainID: "0x1", Address: "0xabc", Balance: "1"})
	c.Set(cache.Entry{ChainID: "0x89", Address: "0xabc", Balance: "2"})

	e1, ok, _ := c.Get("0x1", "0xabc")
	require.True(t, ok)
	e2, ok2, _ := c.Get("0x89", "0xabc")
	require.True(t, ok2)

	assert.Equal(t, "1", e1.Balance)
	assert.Equal(t, "2", e2.Balance)
}

func TestIsStale(t *testing.T) {
	c := cache.New()

	// Missing entries are stale
	assert.True(t, c.IsStale("0x1", "0xabc"))

	c.Set(cache.Entry{ChainID: "0x1", Address: "0xabc", Balance: "1"})
	assert.False(t, c.IsStale("0x1", "0xabc"))

	c.Set(cache.Entry{
		ChainID:   "0x1",
		Address:   "0xold",
		Balance:   "1",
		UpdatedAt: time.Now().Add(-10 * time.Minute),
	})
	assert.True(t, c.IsStale("0x1", "0xold"))
	assert.False(t, c.IsStaleWithDuration("0x1", "0xold", time.Hour))
}

func TestDeleteClearSize(t *testing.T) {
	c := cache.New()

	c.Set(cache.Entry{ChainID: "0x1", Address: "0xa", Balance: "1"})
	c.Set(cache.Entry{ChainID: "0x1", Address: "0xb", Balance: "2"})
	assert.Equal(t, 2, c.Size())

	c.Delete("0x1", "0xa")
	assert.Equal(t, 1, c.Size())

	c.Clear()
	assert.Equal(t, 0, c.Size())
}

func TestPrune(t *testing.T) {
	c := cache.New()

	c.Set(cache.Entry{ChainID: "0x1", Address: "0xfresh", Balance: "1"})
	c.Set(cache.Entry{
		ChainID:   "0x1",
		Address:   "0xstale",
		Balance:   "2",
		UpdatedAt: time.Now().Add(-time.Hour),
	})

	removed := c.Prune(30 * time.Minute)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, c.Size())

	_, ok, _ := c.Get("0x1", "0xfresh")
	assert.True(t, ok)
}
