package handler

import (
	"cloud.google.com/go/civil"
	"github.com/damon-houk/eurfx-rate-service/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// RateRequest holds the path parameters of a point rate query
type RateRequest struct {
	Currency string `validate:"required,len=3,alpha,uppercase"`
	Date     string `validate:"required,datetime=2006-01-02"`
}

// DateRequest holds the path parameter of a per-date query
type DateRequest struct {
	Date string `validate:"required,datetime=2006-01-02"`
}

// RangeRequest holds the optional bounds of a series query; both or neither must be set
type RangeRequest struct {
	Start string `validate:"required_with=End"`
	End   string `validate:"required_with=Start"`
}

// ConvertRequest holds the query parameters of a conversion
type ConvertRequest struct {
	Currency string `validate:"required,len=3,alpha,uppercase"`
	Amount   string `validate:"required,numeric"`
	Date     string `validate:"required,datetime=2006-01-02"`
}

// CurrencyListResponse represents the response for the currency list endpoint
type CurrencyListResponse struct {
	Count      int                   `json:"count"`
	Currencies []entity.CurrencyInfo `json:"currencies"`
}

// RateResponse represents the response for the point rate endpoint
type RateResponse struct {
	Date         civil.Date      `json:"date"`
	BaseCurrency string          `json:"base_currency"`
	Currency     string          `json:"currency"`
	Rate         decimal.Decimal `json:"rate"`
	Meaning      string          `json:"meaning"`
}

// NewRateResponse creates a point rate response
func NewRateResponse(rate entity.RateObservation) RateResponse {
	return RateResponse{
		Date:         rate.Date,
		BaseCurrency: rate.BaseCurrency,
		Currency:     rate.Currency,
		Rate:         rate.Rate,
		Meaning:      "1 " + rate.BaseCurrency + " = " + rate.Rate.String() + " " + rate.Currency,
	}
}

// DateRatesResponse represents the response for the per-date endpoint
type DateRatesResponse struct {
	Date         civil.Date        `json:"date"`
	BaseCurrency string            `json:"base_currency"`
	Count        int               `json:"count"`
	Rates        []RateResponse    `json:"rates"`
	Failures     map[string]string `json:"failures"`
}
