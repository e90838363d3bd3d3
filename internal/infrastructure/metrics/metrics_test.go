package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	t.Run("Records on a private registry", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		m := NewMetrics(reg)

		m.CacheLookup("point", ResultHit)
		m.CacheLookup("point", ResultHit)
		m.CacheLookup("range", ResultMiss)
		m.CacheEvicted("range", 3)
		m.CacheEvicted("range", 0)
		m.ObserveUpstream("point", "ok", 20*time.Millisecond)
		m.ObserveHTTP("/health", "GET", 200, time.Millisecond)

		assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheRequestsTotal.WithLabelValues("point", ResultHit)))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheRequestsTotal.WithLabelValues("range", ResultMiss)))
		assert.Equal(t, 3.0, testutil.ToFloat64(m.CacheEvictedTotal.WithLabelValues("range")))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamRequestsTotal.WithLabelValues("point", "ok")))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("/health", "GET", "200")))
	})

	t.Run("Two instances on separate registries", func(t *testing.T) {
		assert.NotPanics(t, func() {
			NewMetrics(prometheus.NewRegistry())
			NewMetrics(prometheus.NewRegistry())
		})
	})

	t.Run("Nil metrics is a no-op", func(t *testing.T) {
		var m *Metrics

		assert.NotPanics(t, func() {
			m.CacheLookup("point", ResultHit)
			m.CacheEvicted("range", 1)
			m.ObserveUpstream("point", "error", time.Second)
			m.ObserveHTTP("/", "GET", 500, time.Second)
		})
	})
}
