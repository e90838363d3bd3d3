package cache

import (
	"context"
	"slices"
	"sync/atomic"
	"time"

	"github.com/damon-houk/eurfx-rate-service/internal/domain/repository"
	"golang.org/x/sync/singleflight"
)

// currencySnapshot is replaced whole, never edited in place
type currencySnapshot struct {
	currencies []string
	fetchedAt  time.Time
}

// CurrencyCache holds the single refreshable list of currency codes
type CurrencyCache struct {
	cell  atomic.Pointer[currencySnapshot]
	group singleflight.Group
	clock clock
}

// NewCurrencyCache creates an empty currency cache
func NewCurrencyCache() *CurrencyCache {
	return &CurrencyCache{}
}

// SetClock replaces the time source used for freshness checks; nil restores time.Now
func (c *CurrencyCache) SetClock(now func() time.Time) {
	c.clock.set(now)
}

// GetOrLoad returns the cached list while fetchedAt+ttl is in the future, otherwise it calls
// loader and stores its result. Concurrent reloads share a single loader call.
// A failed load leaves the previous snapshot in place.
func (c *CurrencyCache) GetOrLoad(ctx context.Context, ttl time.Duration, loader repository.CurrencyLoader) ([]string, error) {
	if snap := c.cell.Load(); c.fresh(snap, ttl) {
		return slices.Clone(snap.currencies), nil
	}

	// The shared load outlives any single caller; each caller still stops waiting when its own ctx ends
	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan("currencies", func() (interface{}, error) {
		// Another caller may have finished a reload while this one waited
		if snap := c.cell.Load(); c.fresh(snap, ttl) {
			return snap, nil
		}

		currencies, err := loader(loadCtx)
		if err != nil {
			return nil, err
		}

		snap := &currencySnapshot{
			currencies: slices.Clone(currencies),
			fetchedAt:  c.clock.now(),
		}
		c.cell.Store(snap)
		return snap, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return slices.Clone(res.Val.(*currencySnapshot).currencies), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// FetchedAt reports when the held snapshot was loaded
func (c *CurrencyCache) FetchedAt() (time.Time, bool) {
	snap := c.cell.Load()
	if snap == nil {
		return time.Time{}, false
	}
	return snap.fetchedAt, true
}

// Clear drops the held snapshot
func (c *CurrencyCache) Clear() {
	c.cell.Store(nil)
}

func (c *CurrencyCache) fresh(snap *currencySnapshot, ttl time.Duration) bool {
	return snap != nil && snap.fetchedAt.Add(ttl).After(c.clock.now())
}
