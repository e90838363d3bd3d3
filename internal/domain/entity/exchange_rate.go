package entity

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// BaseCurrency is the reporting currency of every published rate
const BaseCurrency = "EUR"

// RateObservation represents one EUR to currency exchange rate on one date
type RateObservation struct {
	BaseCurrency string          `json:"base_currency"`
	Currency     string          `json:"currency"`
	Date         civil.Date      `json:"date"`
	Rate         decimal.Decimal `json:"rate"`
	FetchedAt    time.Time       `json:"fetched_at"`
}

// NewRateObservation creates an observation quoted against the base currency
func NewRateObservation(currency string, date civil.Date, rate decimal.Decimal, fetchedAt time.Time) RateObservation {
	return RateObservation{
		BaseCurrency: BaseCurrency,
		Currency:     currency,
		Date:         date,
		Rate:         rate,
		FetchedAt:    fetchedAt,
	}
}

// PointKey identifies at most one observation
type PointKey struct {
	Currency string
	Date     civil.Date
}

// RangeKey identifies a series collection over an inclusive date interval.
// Matching is exact on both bounds.
type RangeKey struct {
	Start civil.Date
	End   civil.Date
}
