package service

import (
	"context"
	"time"

	"github.com/damon-houk/eurfx-rate-service/internal/domain/entity"
	"github.com/damon-houk/eurfx-rate-service/internal/domain/repository"
	domainservice "github.com/damon-houk/eurfx-rate-service/internal/domain/service"
	"github.com/damon-houk/eurfx-rate-service/internal/infrastructure/logger"
	"github.com/damon-houk/eurfx-rate-service/internal/infrastructure/middleware"
	"github.com/damon-houk/eurfx-rate-service/internal/infrastructure/sdmx"
	"github.com/samber/lo"
)

// DefaultCurrencyTTL is how long the currency list is served before it is reloaded
const DefaultCurrencyTTL = 24 * time.Hour

// CurrencyService lists the currencies the provider publishes EUR rates for
type CurrencyService struct {
	fetcher domainservice.RatePayloadFetcher
	cache   repository.CurrencyListCache
	ttl     time.Duration
	logger  logger.Logger
}

// NewCurrencyService creates a new currency service; a non-positive ttl selects DefaultCurrencyTTL
func NewCurrencyService(fetcher domainservice.RatePayloadFetcher, cache repository.CurrencyListCache, ttl time.Duration, log logger.Logger) *CurrencyService {
	if ttl <= 0 {
		ttl = DefaultCurrencyTTL
	}
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &CurrencyService{
		fetcher: fetcher,
		cache:   cache,
		ttl:     ttl,
		logger:  log,
	}
}

// GetCurrencies returns the sorted currency codes
func (s *CurrencyService) GetCurrencies(ctx context.Context) ([]string, error) {
	currencies, err := s.cache.GetOrLoad(ctx, s.ttl, s.load)
	if err != nil {
		s.logger.Error("Failed to load currency list", map[string]interface{}{
			"request_id": middleware.GetRequestID(ctx),
			"error":      err.Error(),
		})
		return nil, err
	}
	return currencies, nil
}

// GetCurrencyInfos returns the currency codes with their English display names
func (s *CurrencyService) GetCurrencyInfos(ctx context.Context) ([]entity.CurrencyInfo, error) {
	currencies, err := s.GetCurrencies(ctx)
	if err != nil {
		return nil, err
	}

	return lo.Map(currencies, func(code string, _ int) entity.CurrencyInfo {
		name, ok := CurrencyName(code)
		if !ok {
			s.logger.Warn("Unknown currency code from upstream", map[string]interface{}{
				"currency": code,
			})
		}
		return entity.CurrencyInfo{Code: code, Name: name}
	}), nil
}

func (s *CurrencyService) load(ctx context.Context) ([]string, error) {
	s.logger.Info("Loading currency list from Bundesbank", map[string]interface{}{
		"request_id": middleware.GetRequestID(ctx),
	})

	payload, err := s.fetcher.FetchCurrencyListPayload(ctx)
	if err != nil {
		return nil, err
	}

	currencies, err := sdmx.DecodeCurrencyList(payload)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Currency list loaded", map[string]interface{}{
		"count": len(currencies),
	})
	return currencies, nil
}
