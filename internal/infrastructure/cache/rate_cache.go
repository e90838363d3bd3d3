package cache

import (
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/damon-houk/eurfx-rate-service/internal/domain/entity"
	"github.com/damon-houk/eurfx-rate-service/internal/infrastructure/metrics"
)

// DefaultRangeTTL is how long a cached range of series stays valid
const DefaultRangeTTL = 10 * time.Hour

// Table names used as metric labels
const (
	TablePoint = "point"
	TableDate  = "date"
	TableRange = "range"
)

// rangeEntry is stored by pointer so an expired entry can be removed with CompareAndDelete
// without racing a concurrent PutRange for the same key
type rangeEntry struct {
	series    []entity.Series
	expiresAt time.Time
}

// RateCache provides thread-safe in-memory point, per-date and range tables.
// Point and per-date entries never expire; range entries expire after the range TTL.
type RateCache struct {
	points sync.Map // entity.PointKey -> entity.RateObservation
	dates  sync.Map // civil.Date -> []entity.RateObservation
	ranges sync.Map // entity.RangeKey -> *rangeEntry

	rangeTTL time.Duration
	clock    clock
	metrics  *metrics.Metrics
}

// NewRateCache creates a new rate cache; a non-positive rangeTTL selects DefaultRangeTTL
func NewRateCache(rangeTTL time.Duration, m *metrics.Metrics) *RateCache {
	if rangeTTL <= 0 {
		rangeTTL = DefaultRangeTTL
	}

	return &RateCache{
		rangeTTL: rangeTTL,
		metrics:  m,
	}
}

// SetClock replaces the time source used for range expiry; nil restores time.Now
func (c *RateCache) SetClock(now func() time.Time) {
	c.clock.set(now)
}

// RangeTTL returns the configured range expiry
func (c *RateCache) RangeTTL() time.Duration {
	return c.rangeTTL
}

// GetPoint retrieves an observation for a currency and date
func (c *RateCache) GetPoint(key entity.PointKey) (entity.RateObservation, bool) {
	v, ok := c.points.Load(key)
	if !ok {
		c.metrics.CacheLookup(TablePoint, metrics.ResultMiss)
		return entity.RateObservation{}, false
	}

	c.metrics.CacheLookup(TablePoint, metrics.ResultHit)
	return v.(entity.RateObservation), true
}

// PutPoint stores an observation
func (c *RateCache) PutPoint(key entity.PointKey, rate entity.RateObservation) {
	c.points.Store(key, rate)
}

// GetDate retrieves every observation cached for a date. An empty list is a hit.
func (c *RateCache) GetDate(date civil.Date) ([]entity.RateObservation, bool) {
	v, ok := c.dates.Load(date)
	if !ok {
		c.metrics.CacheLookup(TableDate, metrics.ResultMiss)
		return nil, false
	}

	c.metrics.CacheLookup(TableDate, metrics.ResultHit)
	return cloneObservations(v.([]entity.RateObservation)), true
}

// PutDate stores the observations of a date and each observation in the point table
func (c *RateCache) PutDate(date civil.Date, rates []entity.RateObservation) {
	snapshot := cloneObservations(rates)
	if snapshot == nil {
		snapshot = []entity.RateObservation{}
	}

	for _, rate := range snapshot {
		c.points.Store(entity.PointKey{Currency: rate.Currency, Date: rate.Date}, rate)
	}
	c.dates.Store(date, snapshot)
}

// GetRange retrieves the series of a range. Expired entries are evicted and reported as absent.
func (c *RateCache) GetRange(key entity.RangeKey) ([]entity.Series, bool) {
	v, ok := c.ranges.Load(key)
	if !ok {
		c.metrics.CacheLookup(TableRange, metrics.ResultMiss)
		return nil, false
	}

	entry := v.(*rangeEntry)
	if !c.clock.now().Before(entry.expiresAt) {
		if c.ranges.CompareAndDelete(key, entry) {
			c.metrics.CacheEvicted(TableRange, 1)
		}
		c.metrics.CacheLookup(TableRange, metrics.ResultExpired)
		return nil, false
	}

	c.metrics.CacheLookup(TableRange, metrics.ResultHit)
	return cloneSeries(entry.series), true
}

// PutRange stores the series of a range, expiring after the range TTL
func (c *RateCache) PutRange(key entity.RangeKey, series []entity.Series) {
	snapshot := cloneSeries(series)
	if snapshot == nil {
		snapshot = []entity.Series{}
	}

	c.ranges.Store(key, &rangeEntry{
		series:    snapshot,
		expiresAt: c.clock.now().Add(c.rangeTTL),
	})
}

// CleanExpired removes expired range entries and returns how many were removed
func (c *RateCache) CleanExpired() int {
	now := c.clock.now()
	count := 0

	c.ranges.Range(func(key, value any) bool {
		entry := value.(*rangeEntry)
		if !now.Before(entry.expiresAt) && c.ranges.CompareAndDelete(key, entry) {
			count++
		}
		return true
	})

	c.metrics.CacheEvicted(TableRange, count)
	return count
}

// Clear removes every entry from all tables
func (c *RateCache) Clear() {
	c.points.Clear()
	c.dates.Clear()
	c.ranges.Clear()
}

// Sizes returns the number of entries per table
func (c *RateCache) Sizes() map[string]int {
	return map[string]int{
		TablePoint: syncMapLen(&c.points),
		TableDate:  syncMapLen(&c.dates),
		TableRange: syncMapLen(&c.ranges),
	}
}

func syncMapLen(m *sync.Map) int {
	n := 0
	m.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func cloneObservations(in []entity.RateObservation) []entity.RateObservation {
	if in == nil {
		return nil
	}
	out := make([]entity.RateObservation, len(in))
	copy(out, in)
	return out
}

func cloneSeries(in []entity.Series) []entity.Series {
	if in == nil {
		return nil
	}
	out := make([]entity.Series, len(in))
	for i, s := range in {
		out[i] = s.Clone()
	}
	return out
}
