// Package sdmx decodes the provider's SDMX-JSON messages into currency, date and rate values.
//
// The wire format is sparse and positional: structure metadata declares ordered value
// lists (dates, currencies) and the data sets reference them only by integer position.
// Every decoder reads the relevant axes first, then the sparse data keyed by their
// positions, and reports missing combinations as absent rather than omitting them.
// Absent rates are decimal.NullDecimal values with Valid set to false.
package sdmx

import (
	"slices"
	"strconv"

	"cloud.google.com/go/civil"
	"github.com/damon-houk/eurfx-rate-service/internal/domain/entity"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Matrix is a dense date by currency table of rates.
// Dates follow the provider's declared date axis; Currencies are sorted.
type Matrix struct {
	Dates      []civil.Date
	Currencies []string
	Cells      map[civil.Date]map[string]decimal.NullDecimal
}

// Rate returns the cell for date and currency; ok is false when the pair is outside the matrix
func (m *Matrix) Rate(date civil.Date, currency string) (decimal.NullDecimal, bool) {
	row, ok := m.Cells[date]
	if !ok {
		return decimal.NullDecimal{}, false
	}
	cell, ok := row[currency]
	return cell, ok
}

// Size returns the number of cells
func (m *Matrix) Size() int {
	n := 0
	for _, row := range m.Cells {
		n += len(row)
	}
	return n
}

// DecodeCurrencyList returns the currency codes declared by a series-keys-only payload,
// de-duplicated and sorted lexicographically.
func DecodeCurrencyList(payload []byte) ([]string, error) {
	msg, err := parseMessage(payload)
	if err != nil {
		return nil, err
	}

	if msg.seriesDimensions() == nil {
		return nil, &entity.SchemaError{Reason: "data.structure.dimensions.series is missing"}
	}

	axis, ok := msg.currencyAxis()
	if !ok {
		return nil, &entity.SchemaError{Reason: "currency dimension " + CurrencyDimensionID + " not found"}
	}

	currencies := lo.Uniq(axis.codes())
	slices.Sort(currencies)

	return currencies, nil
}

// DecodeSinglePoint returns the rate of one currency on one date.
// A payload without any series entry or observation is absent, not an error, and so is a
// declared date axis that does not contain date;
// a payload whose first data set has no series object is a SchemaError.
func DecodeSinglePoint(payload []byte, currency string, date civil.Date) (decimal.NullDecimal, error) {
	msg, err := parseMessage(payload)
	if err != nil {
		return decimal.NullDecimal{}, err
	}

	series := msg.series()
	if series == nil {
		return decimal.NullDecimal{}, &entity.SchemaError{Reason: "data.dataSets[0].series is missing"}
	}

	if len(series) == 0 {
		return decimal.NullDecimal{}, nil
	}

	seriesKey := firstKey(series)

	// A series that resolves to another currency does not answer the query
	if axis, ok := msg.currencyAxis(); ok {
		if code, ok := axis.resolve(seriesKey); ok && code != currency {
			return decimal.NullDecimal{}, nil
		}
	}

	observations := series[seriesKey].Observations
	if len(observations) == 0 {
		return decimal.NullDecimal{}, nil
	}

	dates, err := msg.dateAxis()
	if err != nil {
		return decimal.NullDecimal{}, err
	}

	// Without a declared date axis the single observation is the answer;
	// with one, only the observation at the requested date counts
	obsKey := firstKey(observations)
	if dates.Len() > 0 {
		idx, ok := dates.Index(date)
		if !ok {
			return decimal.NullDecimal{}, nil
		}
		obsKey = strconv.Itoa(idx)
	}

	rate, ok := parseRate(observations[obsKey])
	if !ok {
		return decimal.NullDecimal{}, nil
	}

	return decimal.NullDecimal{Decimal: rate, Valid: true}, nil
}

// DecodeAllCurrenciesForDate returns every declared currency mapped to its rate on expected.
// Currencies without an observation map to an absent value. An empty date axis, or one whose
// first date is not expected, yields an empty map: the provider publishes nothing on
// non-trading days.
func DecodeAllCurrenciesForDate(payload []byte, expected civil.Date) (map[string]decimal.NullDecimal, error) {
	msg, err := parseMessage(payload)
	if err != nil {
		return nil, err
	}

	dates, err := msg.dateAxis()
	if err != nil {
		return nil, err
	}

	first, ok := dates.Value(0)
	if !ok || first != expected {
		return map[string]decimal.NullDecimal{}, nil
	}

	axis, ok := msg.currencyAxis()
	if !ok || len(axis.codes()) == 0 {
		return nil, &entity.SchemaError{Reason: "currency series dimension missing"}
	}

	series := msg.series()
	if series == nil {
		return nil, &entity.SchemaError{Reason: "data.dataSets[0].series is missing"}
	}

	result := make(map[string]decimal.NullDecimal, axis.Len())
	for _, code := range axis.codes() {
		result[code] = decimal.NullDecimal{}
	}

	for key, entry := range series {
		code, ok := axis.resolve(key)
		if !ok {
			continue
		}

		rate, ok := parseRate(entry.Observations["0"])
		if !ok {
			continue
		}

		result[code] = decimal.NullDecimal{Decimal: rate, Valid: true}
	}

	return result, nil
}

// DecodeSeriesMatrix returns the dense date by currency matrix of a range payload.
// Observation keys outside the date axis and unparsable values are skipped.
func DecodeSeriesMatrix(payload []byte) (*Matrix, error) {
	msg, err := parseMessage(payload)
	if err != nil {
		return nil, err
	}

	dates, err := msg.dateAxis()
	if err != nil {
		return nil, err
	}

	if dates.Len() == 0 {
		return &Matrix{Cells: map[civil.Date]map[string]decimal.NullDecimal{}}, nil
	}

	axis, ok := msg.currencyAxis()
	if !ok || len(axis.codes()) == 0 {
		return nil, &entity.SchemaError{Reason: "currency series dimension missing"}
	}

	series := msg.series()
	if series == nil {
		return nil, &entity.SchemaError{Reason: "data.dataSets[0].series is missing"}
	}

	currencies := lo.Uniq(axis.codes())
	slices.Sort(currencies)

	matrix := &Matrix{
		Dates:      lo.Uniq(dates.Values()),
		Currencies: currencies,
		Cells:      make(map[civil.Date]map[string]decimal.NullDecimal, dates.Len()),
	}
	for _, d := range matrix.Dates {
		row := make(map[string]decimal.NullDecimal, len(currencies))
		for _, code := range currencies {
			row[code] = decimal.NullDecimal{}
		}
		matrix.Cells[d] = row
	}

	for key, entry := range series {
		code, ok := axis.resolve(key)
		if !ok {
			continue
		}

		for obsKey, values := range entry.Observations {
			idx, err := strconv.Atoi(obsKey)
			if err != nil {
				continue
			}

			date, ok := dates.Value(idx)
			if !ok {
				continue
			}

			rate, ok := parseRate(values)
			if !ok {
				continue
			}

			matrix.Cells[date][code] = decimal.NullDecimal{Decimal: rate, Valid: true}
		}
	}

	return matrix, nil
}

// SortedCurrencies returns the keys of a per-date result in lexicographic order
func SortedCurrencies(rates map[string]decimal.NullDecimal) []string {
	keys := lo.Keys(rates)
	slices.Sort(keys)
	return keys
}

func firstKey[V any](m map[string]V) string {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys[0]
}
