package metrics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nebulaai/nebula/internal/metrics"
)

func TestRecordProviderCall(t *testing.T) {
	m := &metrics.Metrics{}

	m.RecordProviderCall("eth_getBalance", 10*time.Millisecond, nil)
	m.RecordProviderCall("eth_chainId", 20*time.Millisecond, errors.New("boom"))

	snap := m.GetSnapshot()
	assert.Equal(t, int64(2), snap.ProviderCallsTotal)
	assert.Equal(t, int64(1), snap.ProviderErrorsTotal)
	assert.Equal(t, (30 * time.Millisecond).Nanoseconds(), snap.ProviderLatencyNano)
	assert.Equal(t, 15*time.Millisecond, m.AverageProviderLatency())
}

func TestRecordSessionOp(t *testing.T) {
	m := &metrics.Metrics{}

	m.RecordSessionOp(nil)
	m.RecordSessionOp(errors.New("boom"))

	snap := m.GetSnapshot()
	assert.Equal(t, int64(2), snap.SessionOpsTotal)
	assert.Equal(t, int64(1), snap.SessionOpsErrors)
}

func TestRecordStaleReadDiscarded(t *testing.T) {
	m := &metrics.Metrics{}
	m.RecordStaleReadDiscarded()
	assert.Equal(t, int64(1), m.GetSnapshot().StaleReadsDiscarded)
}

func TestCacheCounters(t *testing.T) {
	m := &metrics.Metrics{}
	m.RecordCacheHit()
	m.RecordCacheHit()
	m.RecordCacheMiss()

	snap := m.GetSnapshot()
	assert.Equal(t, int64(2), snap.CacheHits)
	assert.Equal(t, int64(1), snap.CacheMisses)
}

func TestReset(t *testing.T) {
	m := &metrics.Metrics{}
	m.RecordProviderCall("eth_accounts", time.Millisecond, nil)
	m.RecordCacheHit()

	m.Reset()
	assert.Equal(t, metrics.Snapshot{}, m.GetSnapshot())
}

func TestAverageProviderLatency_NoCalls(t *testing.T) {
	m := &metrics.Metrics{}
	assert.Equal(t, time.Duration(0), m.AverageProviderLatency())
}
