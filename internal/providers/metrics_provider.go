package providers

import (
	"minelens/internal/structures"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
	ObserveCall(method string, ok bool, latency time.Duration)
	IncMalformedSkipped(kind string)
	IncRecomputeRuns(status string)
	SetWeightedTotal(value uint64)
	SetNetworkEffectiveHp(value uint64)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	persistenceDuration prometheus.Histogram
	ledgerCallDuration  *prometheus.HistogramVec
	malformedSkipped    *prometheus.CounterVec
	recomputeRuns       *prometheus.CounterVec
	weightedTotal       prometheus.Gauge
	networkEffectiveHp  prometheus.Gauge
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

// ObserveCall records one upstream ledger call attempt.
func (m *MetricsProvider) ObserveCall(method string, ok bool, latency time.Duration) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.ledgerCallDuration.WithLabelValues(method, outcome).Observe(latency.Seconds())
}

func (m *MetricsProvider) IncMalformedSkipped(kind string) {
	m.malformedSkipped.WithLabelValues(kind).Inc()
}

func (m *MetricsProvider) IncRecomputeRuns(status string) {
	m.recomputeRuns.WithLabelValues(status).Inc()
}

func (m *MetricsProvider) SetWeightedTotal(value uint64) {
	m.weightedTotal.Set(float64(value))
}

func (m *MetricsProvider) SetNetworkEffectiveHp(value uint64) {
	m.networkEffectiveHp.Set(float64(value))
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "minelens_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "minelens_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "minelens_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "minelens_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "minelens_persistence_duration_seconds",
			Help:    "Duration of telemetry snapshot persistence in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		ledgerCallDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "minelens_ledger_call_duration_seconds",
			Help:    "Duration of ledger JSON-RPC calls in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "outcome"}),

		malformedSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "minelens_malformed_accounts_skipped_total",
			Help: "Accounts skipped during scans because they failed to decode",
		}, []string{"kind"}),

		recomputeRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "minelens_recompute_runs_total",
			Help: "Weighted-stake recomputation runs by outcome",
		}, []string{"status"}),

		weightedTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "minelens_staking_weighted_total",
			Help: "Last computed sum of weighted stake",
		}),

		networkEffectiveHp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "minelens_network_effective_hp",
			Help: "Last computed network effective hashpower",
		}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) ObserveCall(_ string, _ bool, _ time.Duration)    {}
func (n *noopMetrics) IncMalformedSkipped(_ string)                     {}
func (n *noopMetrics) IncRecomputeRuns(_ string)                        {}
func (n *noopMetrics) SetWeightedTotal(_ uint64)                        {}
func (n *noopMetrics) SetNetworkEffectiveHp(_ uint64)                   {}
