package cache

import (
	"sync/atomic"
	"time"
)

// clock is a swappable time source; the zero value reads time.Now
type clock struct {
	fn atomic.Pointer[func() time.Time]
}

func (c *clock) set(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	c.fn.Store(&now)
}

func (c *clock) now() time.Time {
	if fn := c.fn.Load(); fn != nil {
		return (*fn)()
	}
	return time.Now()
}
