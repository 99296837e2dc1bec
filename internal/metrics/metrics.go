package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder receives the resolution side effects. The engine only depends on this interface.
type Recorder interface {
	IncrementHit(namespace string)
	IncrementMiss(namespace string)
	IncrementCall(provider string)
	IncrementProviderError(provider string)
	ObserveProviderLatency(provider string, seconds float64)
}

// Metrics keeps process-wide counters twice: as Prometheus collectors for scraping
// and as atomic totals for the JSON summary endpoint.
type Metrics struct {
	CacheLookups   *prometheus.CounterVec
	ProviderCalls  *prometheus.CounterVec
	APIErrors      *prometheus.CounterVec
	RequestSeconds *prometheus.HistogramVec

	hits   atomic.Int64
	misses atomic.Int64
	calls  atomic.Int64
}

// Snapshot is the JSON shape of the summary metrics endpoint.
type Snapshot struct {
	CacheHits    int64   `json:"cache_hits"`
	CacheMisses  int64   `json:"cache_misses"`
	CacheHitRate float64 `json:"cache_hit_rate"`
	APICallCount int64   `json:"api_call_count"`
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		CacheLookups: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "hermes_cache_lookups_total",
			Help: "Total number of cache lookups by namespace and result.",
		}, []string{"namespace", "result"}),
		ProviderCalls: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "hermes_provider_calls_total",
			Help: "Total number of calls made to the upstream provider.",
		}, []string{"provider"}),
		APIErrors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "hermes_provider_api_errors_total",
			Help: "Total number of errors received from the upstream provider API.",
		}, []string{"provider"}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hermes_provider_request_duration_seconds",
			Help:    "Duration of requests to the upstream provider API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
	}
}

func (m *Metrics) IncrementHit(namespace string) {
	m.hits.Add(1)
	m.CacheLookups.WithLabelValues(namespace, "hit").Inc()
}

func (m *Metrics) IncrementMiss(namespace string) {
	m.misses.Add(1)
	m.CacheLookups.WithLabelValues(namespace, "miss").Inc()
}

func (m *Metrics) IncrementCall(provider string) {
	m.calls.Add(1)
	m.ProviderCalls.WithLabelValues(provider).Inc()
}

func (m *Metrics) IncrementProviderError(provider string) {
	m.APIErrors.WithLabelValues(provider).Inc()
}

func (m *Metrics) ObserveProviderLatency(provider string, seconds float64) {
	m.RequestSeconds.WithLabelValues(provider).Observe(seconds)
}

// Snapshot reads the atomic totals. The hit rate is zero before the first lookup.
func (m *Metrics) Snapshot() Snapshot {
	hits := m.hits.Load()
	misses := m.misses.Load()

	var rate float64
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total)
	}

	return Snapshot{
		CacheHits:    hits,
		CacheMisses:  misses,
		CacheHitRate: rate,
		APICallCount: m.calls.Load(),
	}
}
