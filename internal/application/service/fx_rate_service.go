// Package service internal/application/service/fx_rate_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/damon-houk/eurfx-rate-service/internal/domain/entity"
	"github.com/damon-houk/eurfx-rate-service/internal/domain/repository"
	domainservice "github.com/damon-houk/eurfx-rate-service/internal/domain/service"
	"github.com/damon-houk/eurfx-rate-service/internal/infrastructure/logger"
	"github.com/damon-houk/eurfx-rate-service/internal/infrastructure/middleware"
	"github.com/damon-houk/eurfx-rate-service/internal/infrastructure/sdmx"
	"github.com/samber/lo"
	"golang.org/x/sync/singleflight"
)

// NoDataFailure is the failure key reported when a date has no published rates
const NoDataFailure = "NO_DATA"

// DateRates holds every rate published for one date
type DateRates struct {
	Date     civil.Date               `json:"date"`
	Rates    []entity.RateObservation `json:"rates"`
	Failures map[string]string        `json:"failures"`
}

// SeriesCollection holds one series per currency over a date interval
type SeriesCollection struct {
	Start    civil.Date      `json:"start"`
	End      civil.Date      `json:"end"`
	Count    int             `json:"count"`
	Series   []entity.Series `json:"series"`
	Warnings []string        `json:"warnings"`
}

// FxRateService answers point, per-date and range queries through the rate cache
type FxRateService struct {
	fetcher domainservice.RatePayloadFetcher
	cache   repository.RateCache
	logger  logger.Logger
	clock   clock
	flight  singleflight.Group
}

// NewFxRateService creates a new FX rate service
func NewFxRateService(fetcher domainservice.RatePayloadFetcher, cache repository.RateCache, log logger.Logger) *FxRateService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &FxRateService{
		fetcher: fetcher,
		cache:   cache,
		logger:  log,
	}
}

// SetClock replaces the time source used for "today"
func (s *FxRateService) SetClock(now func() time.Time) {
	s.clock.set(now)
}

// share runs fetch once per key across concurrent callers. The fetch runs detached from any
// single caller's cancellation and is bounded by the upstream client timeout; a caller whose
// ctx ends stops waiting with ctx.Err() while the others still receive the result.
func (s *FxRateService) share(ctx context.Context, key string, fetch func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	shared := context.WithoutCancel(ctx)
	ch := s.flight.DoChan(key, func() (interface{}, error) {
		return fetch(shared)
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Today returns the current calendar date in UTC
func (s *FxRateService) Today() civil.Date {
	return civil.DateOf(s.clock.now().UTC())
}

// GetPoint returns the rate of one currency on one date.
// It fails with entity.ErrRateNotFound when the provider has no observation.
func (s *FxRateService) GetPoint(ctx context.Context, currency string, date civil.Date) (entity.RateObservation, error) {
	currency = normalizeCurrency(currency)
	key := entity.PointKey{Currency: currency, Date: date}

	if rate, ok := s.cache.GetPoint(key); ok {
		return rate, nil
	}

	v, err := s.share(ctx, "point:"+currency+":"+date.String(), func(ctx context.Context) (interface{}, error) {
		if rate, ok := s.cache.GetPoint(key); ok {
			return rate, nil
		}

		payload, err := s.fetcher.FetchPointPayload(ctx, currency, date)
		if err != nil {
			return nil, err
		}

		value, err := sdmx.DecodeSinglePoint(payload, currency, date)
		if err != nil {
			return nil, err
		}
		if !value.Valid {
			return nil, fmt.Errorf("%w: no EUR-FX rate for %s on %s", entity.ErrRateNotFound, currency, date)
		}

		rate := entity.NewRateObservation(currency, date, value.Decimal, s.clock.now().UTC())
		s.cache.PutPoint(key, rate)
		return rate, nil
	})
	if err != nil {
		s.logFailure(ctx, "Failed to get EUR-FX rate", err, map[string]interface{}{
			"currency": currency,
			"date":     date.String(),
		})
		return entity.RateObservation{}, err
	}

	rate := v.(entity.RateObservation)
	s.logger.Info("EUR-FX rate resolved", map[string]interface{}{
		"request_id": middleware.GetRequestID(ctx),
		"currency":   currency,
		"date":       date.String(),
		"rate":       rate.Rate.String(),
	})
	return rate, nil
}

// GetAllForDate returns every currency's rate on date, in currency order.
// An empty result is cached and reported under the NO_DATA failure key.
func (s *FxRateService) GetAllForDate(ctx context.Context, date civil.Date) (*DateRates, error) {
	rates, ok := s.cache.GetDate(date)
	if !ok {
		v, err := s.share(ctx, "date:"+date.String(), func(ctx context.Context) (interface{}, error) {
			if cached, ok := s.cache.GetDate(date); ok {
				return cached, nil
			}

			payload, err := s.fetcher.FetchAllCurrenciesForDatePayload(ctx, date)
			if err != nil {
				return nil, err
			}

			decoded, err := sdmx.DecodeAllCurrenciesForDate(payload, date)
			if err != nil {
				return nil, err
			}

			fetchedAt := s.clock.now().UTC()
			observations := make([]entity.RateObservation, 0, len(decoded))
			for _, code := range sdmx.SortedCurrencies(decoded) {
				if value := decoded[code]; value.Valid {
					observations = append(observations, entity.NewRateObservation(code, date, value.Decimal, fetchedAt))
				}
			}

			s.cache.PutDate(date, observations)
			return observations, nil
		})
		if err != nil {
			s.logFailure(ctx, "Failed to get EUR-FX rates for date", err, map[string]interface{}{
				"date": date.String(),
			})
			return nil, err
		}
		rates = slices.Clone(v.([]entity.RateObservation))
	}

	result := &DateRates{
		Date:     date,
		Rates:    rates,
		Failures: map[string]string{},
	}
	if len(rates) == 0 {
		result.Failures[NoDataFailure] = "No EUR-FX rates available for date " + date.String()
	}

	s.logger.Info("EUR-FX rates for date resolved", map[string]interface{}{
		"request_id": middleware.GetRequestID(ctx),
		"date":       date.String(),
		"count":      len(rates),
	})
	return result, nil
}

// GetSeriesForRange returns one series per currency with at least one rate in [start, end]
func (s *FxRateService) GetSeriesForRange(ctx context.Context, start, end civil.Date) (*SeriesCollection, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end %s is before start %s", entity.ErrInvalidRange, end, start)
	}

	key := entity.RangeKey{Start: start, End: end}
	series, ok := s.cache.GetRange(key)
	if !ok {
		v, err := s.share(ctx, "range:"+start.String()+":"+end.String(), func(ctx context.Context) (interface{}, error) {
			if cached, ok := s.cache.GetRange(key); ok {
				return cached, nil
			}

			payload, err := s.fetcher.FetchRangePayload(ctx, start, end)
			if err != nil {
				return nil, err
			}

			matrix, err := sdmx.DecodeSeriesMatrix(payload)
			if err != nil {
				return nil, err
			}

			built := buildSeries(matrix, start, end)
			s.cache.PutRange(key, built)
			return built, nil
		})
		if err != nil {
			s.logFailure(ctx, "Failed to get EUR-FX series", err, map[string]interface{}{
				"start": start.String(),
				"end":   end.String(),
			})
			return nil, err
		}
		series = cloneSeries(v.([]entity.Series))
	}

	collection := &SeriesCollection{
		Start:    start,
		End:      end,
		Count:    len(series),
		Series:   series,
		Warnings: []string{},
	}
	if len(series) == 0 {
		collection.Warnings = append(collection.Warnings,
			fmt.Sprintf("No EUR-FX rates available between %s and %s", start, end))
	}

	s.logger.Info("EUR-FX series resolved", map[string]interface{}{
		"request_id": middleware.GetRequestID(ctx),
		"start":      start.String(),
		"end":        end.String(),
		"count":      len(series),
	})
	return collection, nil
}

// GetLastNSeries returns the series over the n calendar days ending today
func (s *FxRateService) GetLastNSeries(ctx context.Context, n int) (*SeriesCollection, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: last N must be at least 1, got %d", entity.ErrInvalidRange, n)
	}

	end := s.Today()
	start := end.AddDays(-(n - 1))

	return s.GetSeriesForRange(ctx, start, end)
}

// buildSeries turns a dense matrix into one ascending series per currency that has data
func buildSeries(matrix *sdmx.Matrix, start, end civil.Date) []entity.Series {
	dates := slices.Clone(matrix.Dates)
	slices.SortFunc(dates, compareDates)

	series := make([]entity.Series, 0, len(matrix.Currencies))
	for _, code := range matrix.Currencies {
		points := lo.FilterMap(dates, func(d civil.Date, _ int) (entity.SeriesPoint, bool) {
			cell, ok := matrix.Rate(d, code)
			if !ok || !cell.Valid {
				return entity.SeriesPoint{}, false
			}
			return entity.SeriesPoint{Date: d, Rate: cell.Decimal}, true
		})
		if len(points) == 0 {
			continue
		}

		s, e := start, end
		series = append(series, entity.NewSeries(code, &s, &e, points))
	}
	return series
}

func compareDates(a, b civil.Date) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

func cloneSeries(in []entity.Series) []entity.Series {
	return lo.Map(in, func(s entity.Series, _ int) entity.Series { return s.Clone() })
}

func normalizeCurrency(currency string) string {
	return strings.ToUpper(strings.TrimSpace(currency))
}

// logFailure logs expected outcomes at warn level and everything else at error level
func (s *FxRateService) logFailure(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	fields["request_id"] = middleware.GetRequestID(ctx)
	fields["error"] = err.Error()

	if isExpected(err) {
		s.logger.Warn(msg, fields)
		return
	}
	s.logger.Error(msg, fields)
}

func isExpected(err error) bool {
	return errors.Is(err, entity.ErrRateNotFound) || errors.Is(err, entity.ErrInvalidRange) ||
		errors.Is(err, context.Canceled)
}
