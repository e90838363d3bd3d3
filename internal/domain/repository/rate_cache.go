// Package repository internal/domain/repository/rate_cache.go
package repository

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
	"github.com/damon-houk/eurfx-rate-service/internal/domain/entity"
)

// RateCache defines the interface for the point, per-date and range-series rate tables
type RateCache interface {
	// GetPoint returns the observation for a currency and date if cached
	GetPoint(key entity.PointKey) (entity.RateObservation, bool)

	// PutPoint stores an observation
	PutPoint(key entity.PointKey, rate entity.RateObservation)

	// GetDate returns every observation cached for a date
	GetDate(date civil.Date) ([]entity.RateObservation, bool)

	// PutDate stores the observations of a date and each of them as a point
	PutDate(date civil.Date, rates []entity.RateObservation)

	// GetRange returns the series cached for a range unless the entry has expired
	GetRange(key entity.RangeKey) ([]entity.Series, bool)

	// PutRange stores the series of a range with the cache's TTL
	PutRange(key entity.RangeKey, series []entity.Series)
}

// CurrencyLoader loads the full list of currency codes from the provider
type CurrencyLoader func(ctx context.Context) ([]string, error)

// CurrencyListCache defines the interface for the single refreshable currency list
type CurrencyListCache interface {
	// GetOrLoad returns the cached list while it is younger than ttl and reloads it otherwise
	GetOrLoad(ctx context.Context, ttl time.Duration, loader CurrencyLoader) ([]string, error)
}
