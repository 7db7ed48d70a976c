package providers

import (
	"minelens/internal/structures"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func useTestRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg
	t.Cleanup(func() {
		prometheus.DefaultRegisterer = prometheus.NewRegistry()
		prometheus.DefaultGatherer = prometheus.DefaultRegisterer.(prometheus.Gatherer)
	})
}

func TestNoopMetrics_WhenDisabled(t *testing.T) {
	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: false},
	}
	m := NewMetricsProvider(conf)
	_, ok := m.(*noopMetrics)
	assert.True(t, ok, "should return noopMetrics when disabled")

	// Ensure no-op methods don't panic
	m.IncRequestsTotal("/test", 200)
	m.ObserveRequestDuration("/test", time.Millisecond)
	m.IncCacheHits()
	m.IncCacheMisses()
	m.ObservePersistenceDuration(time.Millisecond)
	m.ObserveCall("getProgramAccounts", false, time.Millisecond)
	m.IncMalformedSkipped("MinerPosition")
	m.IncRecomputeRuns("written")
	m.SetWeightedTotal(10)
	m.SetNetworkEffectiveHp(10)
}

func TestMetricsProvider_WhenEnabled(t *testing.T) {
	useTestRegistry(t)

	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: true},
	}
	m := NewMetricsProvider(conf)
	_, ok := m.(*MetricsProvider)
	assert.True(t, ok, "should return MetricsProvider when enabled")
}

func TestMetricsProvider_IncrementCounters(t *testing.T) {
	useTestRegistry(t)

	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: true},
	}
	m := NewMetricsProvider(conf)

	m.IncRequestsTotal("/hp/network", 200)
	m.IncRequestsTotal("/hp/network", 404)
	m.ObserveRequestDuration("/hp/network", 5*time.Millisecond)
	m.IncCacheHits()
	m.IncCacheMisses()
	m.ObservePersistenceDuration(100 * time.Millisecond)
	m.ObserveCall("getAccountInfo", true, 3*time.Millisecond)
	m.IncMalformedSkipped("UserProfile")
	m.IncMalformedSkipped("UserProfile")
	m.IncRecomputeRuns("dry_run")
	m.SetWeightedTotal(1_312_500)
	m.SetNetworkEffectiveHp(1054)

	p := m.(*MetricsProvider)
	assert.Equal(t, 1.0, promtest.ToFloat64(p.requestsTotal.WithLabelValues("/hp/network", "2xx")))
	assert.Equal(t, 1.0, promtest.ToFloat64(p.requestsTotal.WithLabelValues("/hp/network", "4xx")))
	assert.Equal(t, 1.0, promtest.ToFloat64(p.cacheHits))
	assert.Equal(t, 2.0, promtest.ToFloat64(p.malformedSkipped.WithLabelValues("UserProfile")))
	assert.Equal(t, 1.0, promtest.ToFloat64(p.recomputeRuns.WithLabelValues("dry_run")))
	assert.Equal(t, 1_312_500.0, promtest.ToFloat64(p.weightedTotal))
	assert.Equal(t, 1054.0, promtest.ToFloat64(p.networkEffectiveHp))
}

func TestHttpStatusBucket(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{100, "1xx"},
		{200, "2xx"},
		{201, "2xx"},
		{301, "3xx"},
		{400, "4xx"},
		{404, "4xx"},
		{500, "5xx"},
		{503, "5xx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, httpStatusBucket(tt.code))
	}
}
