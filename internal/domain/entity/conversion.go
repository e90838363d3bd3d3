package entity

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Conversion represents a foreign currency amount converted to EUR
type Conversion struct {
	Date               civil.Date      `json:"date"`
	BaseCurrency       string          `json:"base_currency"`
	Currency           string          `json:"currency"`
	OriginalAmount     decimal.Decimal `json:"original_amount"`
	Rate               decimal.Decimal `json:"rate"`
	ConvertedAmountEUR decimal.Decimal `json:"converted_amount_eur"`
}

// Validate ensures the conversion inputs meet all requirements
func (c *Conversion) Validate() error {
	if len(c.Currency) != 3 {
		return fmt.Errorf("%w: currency must be a 3-letter code", ErrInvalidRequest)
	}

	if !c.OriginalAmount.IsPositive() {
		return fmt.Errorf("%w: amount must be a positive value", ErrInvalidRequest)
	}

	if !c.Rate.IsPositive() {
		return fmt.Errorf("%w: rate must be a positive value", ErrInvalidRequest)
	}

	return nil
}
