// Package cache provides last-known balance caching for wallet sessions.
// Session snapshots always carry the live value; the cache lets the CLI show
// a balance with its age without another provider round-trip.
package cache

import (
	"sync"
	"time"

	"github.com/nebulaai/nebula/internal/metrics"
)

// DefaultStaleness is the default duration after which cache entries are considered stale.
const DefaultStaleness = 5 * time.Minute

// Entry represents a single cached balance.
type Entry struct {
	ChainID   string    `json:"chain_id"`
	Address   string    `json:"address"`
	Balance   string    `json:"balance"` // wei, decimal string
	Symbol    string    `json:"symbol"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BalanceCache stores last-known balances keyed by (chain, address).
type BalanceCache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// New creates an empty balance cache.
func New() *BalanceCache {
	return &BalanceCache{
		entries: make(map[string]Entry),
	}
}

// Key generates a cache key for a chain and address.
func Key(chainID, address string) string {
	return chainID + ":" + address
}

// Get retrieves a cached balance entry.
// Returns the entry, whether it exists, and its age.
func (c *BalanceCache) Get(chainID, address string) (*Entry, bool, time.Duration) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[Key(chainID, address)]
	if !ok {
		metrics.Global.RecordCacheMiss()
		return nil, false, 0
	}

	metrics.Global.RecordCacheHit()
	return &entry, true, time.Since(entry.UpdatedAt)
}

// Set stores a balance entry, stamping UpdatedAt if unset.
func (c *BalanceCache) Set(entry Entry) {
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = time.Now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[Key(entry.ChainID, entry.Address)] = entry
}

// IsStale checks if a cache entry is stale (or missing).
func (c *BalanceCache) IsStale(chainID, address string) bool {
	return c.IsStaleWithDuration(chainID, address, DefaultStaleness)
}

// IsStaleWithDuration checks staleness against a custom duration.
func (c *BalanceCache) IsStaleWithDuration(chainID, address string, staleness time.Duration) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[Key(chainID, address)]
	if !ok {
		return true
	}
	return time.Since(entry.UpdatedAt) > staleness
}

// Delete removes a cache entry.
func (c *BalanceCache) Delete(chainID, address string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, Key(chainID, address))
}

// Clear removes all cache entries.
func (c *BalanceCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Entry)
}

// Size returns the number of cache entries.
func (c *BalanceCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Prune removes entries older than maxAge and returns the count removed.
func (c *BalanceCache) Prune(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.entries {
		if time.Since(entry.UpdatedAt) > maxAge {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}
