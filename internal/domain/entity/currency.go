package entity

// UnknownCurrencyName is reported for codes without a known display name
const UnknownCurrencyName = "Unknown currency"

// CurrencyInfo pairs a currency code with its display name
type CurrencyInfo struct {
	Code string `json:"code"`
	Name string `json:"name"`
}
