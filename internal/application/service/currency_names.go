package service

import "github.com/damon-houk/eurfx-rate-service/internal/domain/entity"

// currencyNames maps ISO 4217 codes to English display names
var currencyNames = map[string]string{
	"AED": "UAE Dirham",
	"ARS": "Argentine Peso",
	"AUD": "Australian Dollar",
	"BGN": "Bulgarian Lev",
	"BRL": "Brazilian Real",
	"CAD": "Canadian Dollar",
	"CHF": "Swiss Franc",
	"CLP": "Chilean Peso",
	"CNY": "Chinese Yuan",
	"COP": "Colombian Peso",
	"CYP": "Cypriot Pound",
	"CZK": "Czech Koruna",
	"DKK": "Danish Krone",
	"DZD": "Algerian Dinar",
	"EEK": "Estonian Kroon",
	"EGP": "Egyptian Pound",
	"EUR": "Euro",
	"GBP": "British Pound",
	"GRD": "Greek Drachma",
	"HKD": "Hong Kong Dollar",
	"HRK": "Croatian Kuna",
	"HUF": "Hungarian Forint",
	"IDR": "Indonesian Rupiah",
	"ILS": "Israeli New Shekel",
	"INR": "Indian Rupee",
	"ISK": "Icelandic Króna",
	"JPY": "Japanese Yen",
	"KRW": "South Korean Won",
	"KWD": "Kuwaiti Dinar",
	"LTL": "Lithuanian Litas",
	"LVL": "Latvian Lats",
	"MAD": "Moroccan Dirham",
	"MTL": "Maltese Lira",
	"MXN": "Mexican Peso",
	"MYR": "Malaysian Ringgit",
	"NOK": "Norwegian Krone",
	"NZD": "New Zealand Dollar",
	"PHP": "Philippine Peso",
	"PLN": "Polish Zloty",
	"ROL": "Romanian Leu (1952-2006)",
	"RON": "Romanian Leu",
	"RUB": "Russian Ruble",
	"SAR": "Saudi Riyal",
	"SEK": "Swedish Krona",
	"SGD": "Singapore Dollar",
	"SIT": "Slovenian Tolar",
	"SKK": "Slovak Koruna",
	"THB": "Thai Baht",
	"TRL": "Turkish Lira (1922-2005)",
	"TRY": "Turkish Lira",
	"TWD": "New Taiwan Dollar",
	"USD": "US Dollar",
	"XAU": "Gold",
	"XDR": "Special Drawing Rights",
	"ZAR": "South African Rand",
}

// CurrencyName returns the display name of code, or entity.UnknownCurrencyName when the code is not known
func CurrencyName(code string) (string, bool) {
	if name, ok := currencyNames[code]; ok {
		return name, true
	}
	return entity.UnknownCurrencyName, false
}
