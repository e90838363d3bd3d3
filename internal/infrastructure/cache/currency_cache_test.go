package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrencyCacheGetOrLoad(t *testing.T) {
	ctx := context.Background()
	ttl := 24 * time.Hour

	t.Run("Loads once within the TTL and again after it", func(t *testing.T) {
		// Setup
		clock := newFakeClock()
		cache := NewCurrencyCache()
		cache.SetClock(clock.Now)

		calls := 0
		lists := [][]string{{"GBP", "USD"}, {"CHF", "GBP", "USD"}}
		loader := func(context.Context) ([]string, error) {
			list := lists[calls]
			calls++
			return list, nil
		}

		// Execute
		first, err := cache.GetOrLoad(ctx, ttl, loader)
		require.NoError(t, err)
		clock.Advance(23 * time.Hour)
		second, err := cache.GetOrLoad(ctx, ttl, loader)
		require.NoError(t, err)

		// Assert
		assert.Equal(t, 1, calls)
		assert.Equal(t, []string{"GBP", "USD"}, first)
		assert.Equal(t, first, second)

		clock.Advance(time.Hour)
		third, err := cache.GetOrLoad(ctx, ttl, loader)
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
		assert.Equal(t, []string{"CHF", "GBP", "USD"}, third)

		fetchedAt, ok := cache.FetchedAt()
		assert.True(t, ok)
		assert.Equal(t, clock.Now(), fetchedAt)
	})

	t.Run("Failed load keeps the previous snapshot", func(t *testing.T) {
		// Setup
		clock := newFakeClock()
		cache := NewCurrencyCache()
		cache.SetClock(clock.Now)
		_, err := cache.GetOrLoad(ctx, ttl, func(context.Context) ([]string, error) {
			return []string{"USD"}, nil
		})
		require.NoError(t, err)
		loadedAt, _ := cache.FetchedAt()
		clock.Advance(25 * time.Hour)

		// Execute
		boom := errors.New("boom")
		_, err = cache.GetOrLoad(ctx, ttl, func(context.Context) ([]string, error) {
			return nil, boom
		})

		// Assert
		assert.ErrorIs(t, err, boom)
		fetchedAt, ok := cache.FetchedAt()
		assert.True(t, ok)
		assert.Equal(t, loadedAt, fetchedAt)
	})

	t.Run("Returned list is a copy", func(t *testing.T) {
		cache := NewCurrencyCache()
		loader := func(context.Context) ([]string, error) { return []string{"GBP", "USD"}, nil }

		list, err := cache.GetOrLoad(ctx, ttl, loader)
		require.NoError(t, err)
		list[0] = "XXX"

		again, err := cache.GetOrLoad(ctx, ttl, loader)
		require.NoError(t, err)
		assert.Equal(t, []string{"GBP", "USD"}, again)
	})

	t.Run("Clear forces a reload", func(t *testing.T) {
		cache := NewCurrencyCache()
		var calls int32
		loader := func(context.Context) ([]string, error) {
			atomic.AddInt32(&calls, 1)
			return []string{"USD"}, nil
		}

		_, _ = cache.GetOrLoad(ctx, ttl, loader)
		cache.Clear()
		_, ok := cache.FetchedAt()
		assert.False(t, ok)
		_, _ = cache.GetOrLoad(ctx, ttl, loader)

		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	})

	t.Run("Concurrent callers see one complete list", func(t *testing.T) {
		cache := NewCurrencyCache()
		release := make(chan struct{})
		var calls int32
		loader := func(context.Context) ([]string, error) {
			atomic.AddInt32(&calls, 1)
			<-release
			return []string{"CHF", "GBP", "USD"}, nil
		}

		var wg sync.WaitGroup
		results := make([][]string, 20)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				list, err := cache.GetOrLoad(ctx, ttl, loader)
				assert.NoError(t, err)
				results[i] = list
			}(i)
		}

		time.Sleep(20 * time.Millisecond)
		close(release)
		wg.Wait()

		assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(20))
		assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(1))
		for _, list := range results {
			assert.Equal(t, []string{"CHF", "GBP", "USD"}, list)
		}
	})
	t.Run("Cancelled caller does not fail a shared load", func(t *testing.T) {
		cache := NewCurrencyCache()
		started := make(chan struct{})
		release := make(chan struct{})
		var calls int32
		var loadErr error
		loader := func(loadCtx context.Context) ([]string, error) {
			atomic.AddInt32(&calls, 1)
			close(started)
			<-release
			loadErr = loadCtx.Err()
			return []string{"GBP", "USD"}, nil
		}

		firstCtx, cancelFirst := context.WithCancel(ctx)
		firstErr := make(chan error, 1)
		go func() {
			_, err := cache.GetOrLoad(firstCtx, ttl, loader)
			firstErr <- err
		}()
		<-started

		type result struct {
			list []string
			err  error
		}
		second := make(chan result, 1)
		go func() {
			list, err := cache.GetOrLoad(ctx, ttl, loader)
			second <- result{list, err}
		}()

		cancelFirst()
		assert.ErrorIs(t, <-firstErr, context.Canceled)

		close(release)
		res := <-second
		require.NoError(t, res.err)
		assert.Equal(t, []string{"GBP", "USD"}, res.list)
		assert.NoError(t, loadErr)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("SetClock is safe while callers read", func(t *testing.T) {
		cache := NewCurrencyCache()
		clock := newFakeClock()
		loader := func(context.Context) ([]string, error) { return []string{"USD"}, nil }

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					_, err := cache.GetOrLoad(ctx, ttl, loader)
					assert.NoError(t, err)
				}
			}()
		}
		for i := 0; i < 100; i++ {
			cache.SetClock(clock.Now)
		}
		wg.Wait()
	})
}
