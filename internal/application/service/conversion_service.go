// Package service internal/application/service/conversion_service.go
package service

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/damon-houk/eurfx-rate-service/internal/domain/entity"
	"github.com/damon-houk/eurfx-rate-service/internal/infrastructure/logger"
	"github.com/damon-houk/eurfx-rate-service/internal/infrastructure/middleware"
	"github.com/shopspring/decimal"
)

// ConvertedAmountPlaces is the number of decimal places of a converted EUR amount
const ConvertedAmountPlaces = 2

// RateProvider resolves the EUR rate of one currency on one date
type RateProvider interface {
	GetPoint(ctx context.Context, currency string, date civil.Date) (entity.RateObservation, error)
}

// ConversionService converts foreign currency amounts to EUR
type ConversionService struct {
	rates  RateProvider
	logger logger.Logger
}

// NewConversionService creates a new conversion service
func NewConversionService(rates RateProvider, log logger.Logger) *ConversionService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &ConversionService{
		rates:  rates,
		logger: log,
	}
}

// ConvertToEUR converts amount in currency to EUR at the rate published on date.
// The result is amount / rate rounded half away from zero to two decimal places.
func (s *ConversionService) ConvertToEUR(ctx context.Context, currency string, date civil.Date, amount decimal.Decimal) (*entity.Conversion, error) {
	requestID := middleware.GetRequestID(ctx)
	currency = normalizeCurrency(currency)

	s.logger.Info("Converting amount to EUR", map[string]interface{}{
		"request_id": requestID,
		"currency":   currency,
		"date":       date.String(),
		"amount":     amount.String(),
	})

	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be a positive value", entity.ErrInvalidRequest)
	}

	rate, err := s.rates.GetPoint(ctx, currency, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get exchange rate: %w", err)
	}

	conversion := &entity.Conversion{
		Date:           date,
		BaseCurrency:   entity.BaseCurrency,
		Currency:       currency,
		OriginalAmount: amount,
		Rate:           rate.Rate,
	}
	if err := conversion.Validate(); err != nil {
		s.logger.Error("Invalid conversion inputs", map[string]interface{}{
			"request_id": requestID,
			"currency":   currency,
			"rate":       rate.Rate.String(),
			"error":      err.Error(),
		})
		return nil, err
	}

	conversion.ConvertedAmountEUR = amount.DivRound(rate.Rate, ConvertedAmountPlaces)

	s.logger.Info("Conversion completed", map[string]interface{}{
		"request_id":           requestID,
		"currency":             currency,
		"original_amount":      amount.String(),
		"exchange_rate":        rate.Rate.String(),
		"converted_amount_eur": conversion.ConvertedAmountEUR.String(),
	})

	return conversion, nil
}
