package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/damon-houk/eurfx-rate-service/internal/domain/entity"
	"github.com/damon-houk/eurfx-rate-service/internal/infrastructure/cache"
	"github.com/damon-houk/eurfx-rate-service/internal/infrastructure/logger"
	"github.com/damon-houk/eurfx-rate-service/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const currencyListPayload = `{"data":{"structure":{"dimensions":{"series":[
	{"id":"BBK_STD_FREQ","keyPosition":0,"values":[{"id":"D"}]},
	{"id":"BBK_STD_CURRENCY","keyPosition":1,"values":[{"id":"USD"},{"id":"QQQ"},{"id":"GBP"},{"id":"USD"}]}]}}}}`

func TestCurrencyService(t *testing.T) {
	ctx := context.Background()
	log := logger.NewZapLogger(&bytes.Buffer{}, logger.InfoLevel)

	t.Run("Loads once within the TTL", func(t *testing.T) {
		// Setup
		fetcher := new(mocks.MockRatePayloadFetcher)
		fetcher.On("FetchCurrencyListPayload", mock.Anything).Return(currencyListPayload, nil).Once()
		service := NewCurrencyService(fetcher, cache.NewCurrencyCache(), 0, log)

		// Execute
		first, err := service.GetCurrencies(ctx)
		require.NoError(t, err)
		second, err := service.GetCurrencies(ctx)
		require.NoError(t, err)

		// Assert
		assert.Equal(t, []string{"GBP", "QQQ", "USD"}, first)
		assert.Equal(t, first, second)
		fetcher.AssertNumberOfCalls(t, "FetchCurrencyListPayload", 1)
	})

	t.Run("Reloads after the TTL", func(t *testing.T) {
		// Setup
		now := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
		currencyCache := cache.NewCurrencyCache()
		currencyCache.SetClock(func() time.Time { return now })

		fetcher := new(mocks.MockRatePayloadFetcher)
		fetcher.On("FetchCurrencyListPayload", mock.Anything).Return(currencyListPayload, nil).Twice()
		service := NewCurrencyService(fetcher, currencyCache, time.Hour, log)

		// Execute
		_, err := service.GetCurrencies(ctx)
		require.NoError(t, err)
		now = now.Add(time.Hour)
		_, err = service.GetCurrencies(ctx)
		require.NoError(t, err)

		// Assert
		fetcher.AssertExpectations(t)
	})

	t.Run("Display names", func(t *testing.T) {
		// Setup
		fetcher := new(mocks.MockRatePayloadFetcher)
		fetcher.On("FetchCurrencyListPayload", mock.Anything).Return(currencyListPayload, nil).Once()
		service := NewCurrencyService(fetcher, cache.NewCurrencyCache(), 0, log)

		// Execute
		infos, err := service.GetCurrencyInfos(ctx)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, []entity.CurrencyInfo{
			{Code: "GBP", Name: "British Pound"},
			{Code: "QQQ", Name: entity.UnknownCurrencyName},
			{Code: "USD", Name: "US Dollar"},
		}, infos)
	})

	t.Run("Upstream failure is not cached", func(t *testing.T) {
		// Setup
		fetcher := new(mocks.MockRatePayloadFetcher)
		upstreamErr := &entity.UpstreamError{Operation: "currencies", StatusCode: 503}
		fetcher.On("FetchCurrencyListPayload", mock.Anything).Return(nil, upstreamErr).Once()
		fetcher.On("FetchCurrencyListPayload", mock.Anything).Return(currencyListPayload, nil).Once()
		service := NewCurrencyService(fetcher, cache.NewCurrencyCache(), 0, log)

		// Execute
		_, err := service.GetCurrencies(ctx)
		assert.ErrorIs(t, err, entity.ErrUpstreamUnavailable)

		currencies, err := service.GetCurrencies(ctx)

		// Assert
		require.NoError(t, err)
		assert.Len(t, currencies, 3)
		fetcher.AssertExpectations(t)
	})

	t.Run("Schema error", func(t *testing.T) {
		// Setup
		fetcher := new(mocks.MockRatePayloadFetcher)
		fetcher.On("FetchCurrencyListPayload", mock.Anything).Return(`{"data":{}}`, nil).Once()
		service := NewCurrencyService(fetcher, cache.NewCurrencyCache(), 0, log)

		// Execute
		_, err := service.GetCurrencies(ctx)

		// Assert
		assert.ErrorIs(t, err, entity.ErrSchema)
	})
}

func TestCurrencyName(t *testing.T) {
	name, ok := CurrencyName("JPY")
	assert.True(t, ok)
	assert.Equal(t, "Japanese Yen", name)

	name, ok = CurrencyName("ZZZ")
	assert.False(t, ok)
	assert.Equal(t, "Unknown currency", name)
}
