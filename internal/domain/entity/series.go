package entity

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// SeriesPoint is a single dated rate within a series
type SeriesPoint struct {
	Date civil.Date      `json:"date"`
	Rate decimal.Decimal `json:"rate"`
}

// Series holds the rates of one currency over a date interval, ascending by date.
// Start and End are nil when the series carries no bounds.
type Series struct {
	BaseCurrency string        `json:"base_currency"`
	Currency     string        `json:"currency"`
	Start        *civil.Date   `json:"start"`
	End          *civil.Date   `json:"end"`
	Count        int           `json:"count"`
	Rates        []SeriesPoint `json:"rates"`
}

// NewSeries builds a series for currency over [start, end]
func NewSeries(currency string, start, end *civil.Date, points []SeriesPoint) Series {
	return Series{
		BaseCurrency: BaseCurrency,
		Currency:     currency,
		Start:        start,
		End:          end,
		Count:        len(points),
		Rates:        points,
	}
}

// Clone returns a deep copy so that cached snapshots never share backing arrays with callers
func (s Series) Clone() Series {
	out := s
	if s.Start != nil {
		start := *s.Start
		out.Start = &start
	}
	if s.End != nil {
		end := *s.End
		out.End = &end
	}
	if s.Rates != nil {
		out.Rates = make([]SeriesPoint, len(s.Rates))
		copy(out.Rates, s.Rates)
	}
	return out
}
