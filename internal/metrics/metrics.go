// Package metrics provides application-level metrics collection.
// This is a lightweight metrics foundation using atomic counters.
// For production observability, consider integrating with Prometheus or similar.
package metrics

import (
	"sync/atomic"
	"time"
)

// Metrics holds application metrics using atomic counters for thread safety.
type Metrics struct {
	// Provider call metrics
	providerCallsTotal  atomic.Int64
	providerErrorsTotal atomic.Int64
	providerLatencyNano atomic.Int64

	// Session operation metrics
	sessionOpsTotal  atomic.Int64
	sessionOpsErrors atomic.Int64

	// Stale reads discarded by the session tag check
	staleReadsDiscarded atomic.Int64

	// Balance cache metrics
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
}

// Global is the global metrics instance.
// Use this for recording metrics throughout the application.
//
//nolint:gochecknoglobals // Intentional global for metrics access
var Global = &Metrics{}

// RecordProviderCall records a provider call with its duration and outcome.
func (m *Metrics) RecordProviderCall(method string, duration time.Duration, err error) {
	_ = method // reserved for per-method breakdown
	m.providerCallsTotal.Add(1)
	m.providerLatencyNano.Add(duration.Nanoseconds())

	if err != nil {
		m.providerErrorsTotal.Add(1)
	}
}

// RecordSessionOp records a session operation (connect, refresh, switch...).
func (m *Metrics) RecordSessionOp(err error) {
	m.sessionOpsTotal.Add(1)
	if err != nil {
		m.sessionOpsErrors.Add(1)
	}
}

// RecordStaleReadDiscarded records an in-flight read dropped because the
// session moved on before it resolved.
func (m *Metrics) RecordStaleReadDiscarded() {
	m.staleReadsDiscarded.Add(1)
}

// RecordCacheHit records a balance cache hit.
func (m *Metrics) RecordCacheHit() {
	m.cacheHits.Add(1)
}

// RecordCacheMiss records a balance cache miss.
func (m *Metrics) RecordCacheMiss() {
	m.cacheMisses.Add(1)
}

// Snapshot is a point-in-time copy of all metrics.
type Snapshot struct {
	ProviderCallsTotal  int64
	ProviderErrorsTotal int64
	ProviderLatencyNano int64
	SessionOpsTotal     int64
	SessionOpsErrors    int64
	StaleReadsDiscarded int64
	CacheHits           int64
	CacheMisses         int64
}

// GetSnapshot returns the current metric values.
func (m *Metrics) GetSnapshot() Snapshot {
	return Snapshot{
		ProviderCallsTotal:  m.providerCallsTotal.Load(),
		ProviderErrorsTotal: m.providerErrorsTotal.Load(),
		ProviderLatencyNano: m.providerLatencyNano.Load(),
		SessionOpsTotal:     m.sessionOpsTotal.Load(),
		SessionOpsErrors:    m.sessionOpsErrors.Load(),
		StaleReadsDiscarded: m.staleReadsDiscarded.Load(),
		CacheHits:           m.cacheHits.Load(),
		CacheMisses:         m.cacheMisses.Load(),
	}
}

// Reset zeroes all counters. Intended for tests.
func (m *Metrics) Reset() {
	m.providerCallsTotal.Store(0)
	m.providerErrorsTotal.Store(0)
	m.providerLatencyNano.Store(0)
	m.sessionOpsTotal.Store(0)
	m.sessionOpsErrors.Store(0)
	m.staleReadsDiscarded.Store(0)
	m.cacheHits.Store(0)
	m.cacheMisses.Store(0)
}

// AverageProviderLatency returns the mean provider call latency.
func (m *Metrics) AverageProviderLatency() time.Duration {
	calls := m.providerCallsTotal.Load()
	if calls == 0 {
		return 0
	}
	return time.Duration(m.providerLatencyNano.Load() / calls)
}
