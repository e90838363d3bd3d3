package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache result labels
const (
	ResultHit     = "hit"
	ResultMiss    = "miss"
	ResultExpired = "expired"
)

// Metrics holds the service's Prometheus collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	CacheRequestsTotal *prometheus.CounterVec
	CacheEvictedTotal  *prometheus.CounterVec

	UpstreamRequestsTotal   *prometheus.CounterVec
	UpstreamRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status_code"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),

		CacheRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fx_cache_requests_total",
				Help: "Total number of rate cache lookups by table and result",
			},
			[]string{"table", "result"},
		),

		CacheEvictedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fx_cache_evicted_total",
				Help: "Total number of expired cache entries removed",
			},
			[]string{"table"},
		),

		UpstreamRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fx_upstream_requests_total",
				Help: "Total number of requests sent to the rate provider",
			},
			[]string{"operation", "outcome"},
		),

		UpstreamRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fx_upstream_request_duration_seconds",
				Help:    "Rate provider request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// ObserveHTTP records one served request
func (m *Metrics) ObserveHTTP(path, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(path, method).Observe(elapsed.Seconds())
}

// CacheLookup records a lookup against one cache table
func (m *Metrics) CacheLookup(table, result string) {
	if m == nil {
		return
	}
	m.CacheRequestsTotal.WithLabelValues(table, result).Inc()
}

// CacheEvicted records entries removed from a table by expiry
func (m *Metrics) CacheEvicted(table string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.CacheEvictedTotal.WithLabelValues(table).Add(float64(n))
}

// ObserveUpstream records one provider call; outcome is "ok" or "error"
func (m *Metrics) ObserveUpstream(operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamRequestsTotal.WithLabelValues(operation, outcome).Inc()
	m.UpstreamRequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}
