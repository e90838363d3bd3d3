package sdmx

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/damon-houk/eurfx-rate-service/internal/domain/entity"
	"github.com/shopspring/decimal"
)

const (
	// CurrencyDimensionID identifies the currency among the series dimensions
	CurrencyDimensionID = "BBK_STD_CURRENCY"
	// TimeDimensionID identifies the date axis among the observation dimensions
	TimeDimensionID = "TIME_PERIOD"
)

// message mirrors the parts of an SDMX-JSON data message the decoder reads
type message struct {
	Data *dataMessage `json:"data"`
}

type dataMessage struct {
	Structure *structure `json:"structure"`
	DataSets  []dataSet  `json:"dataSets"`
}

type structure struct {
	Dimensions *dimensions `json:"dimensions"`
}

type dimensions struct {
	Series      []dimension `json:"series"`
	Observation []dimension `json:"observation"`
}

type dimension struct {
	ID          string           `json:"id"`
	KeyPosition *int             `json:"keyPosition"`
	Values      []dimensionValue `json:"values"`
}

type dimensionValue struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type dataSet struct {
	Series map[string]seriesEntry `json:"series"`
}

type seriesEntry struct {
	Observations map[string][]json.RawMessage `json:"observations"`
}

func parseMessage(payload []byte) (*message, error) {
	var msg message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, &entity.SchemaError{Reason: "payload is not a valid SDMX-JSON message", Err: err}
	}
	return &msg, nil
}

func (m *message) dimensions() *dimensions {
	if m.Data == nil || m.Data.Structure == nil {
		return nil
	}
	return m.Data.Structure.Dimensions
}

// seriesDimensions returns nil when the array is absent
func (m *message) seriesDimensions() []dimension {
	dims := m.dimensions()
	if dims == nil {
		return nil
	}
	return dims.Series
}

func (m *message) observationDimensions() []dimension {
	dims := m.dimensions()
	if dims == nil {
		return nil
	}
	return dims.Observation
}

// series returns the series object of the first data set.
// A nil map means the object is structurally missing; an empty map means no data.
func (m *message) series() map[string]seriesEntry {
	if m.Data == nil || len(m.Data.DataSets) == 0 {
		return nil
	}
	return m.Data.DataSets[0].Series
}

func findDimension(dims []dimension, id string) (dimension, int, bool) {
	for i, d := range dims {
		if d.ID == id {
			return d, i, true
		}
	}
	return dimension{}, -1, false
}

// currencyAxis keeps blank ids in place so that positions stay aligned with series keys
type currencyAxis struct {
	Axis[string]
	keyPosition int
}

func (m *message) currencyAxis() (currencyAxis, bool) {
	dim, pos, ok := findDimension(m.seriesDimensions(), CurrencyDimensionID)
	if !ok {
		return currencyAxis{}, false
	}

	codes := make([]string, len(dim.Values))
	for i, v := range dim.Values {
		codes[i] = strings.TrimSpace(v.ID)
	}

	keyPosition := pos
	if dim.KeyPosition != nil {
		keyPosition = *dim.KeyPosition
	}

	return currencyAxis{Axis: NewAxis(codes), keyPosition: keyPosition}, true
}

// codes returns the non-blank currency codes in declared order
func (a currencyAxis) codes() []string {
	out := make([]string, 0, a.Len())
	for _, c := range a.values {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// resolve maps an opaque series key to a currency code.
// Keys are either a bare position ("3") or colon-joined positions ("0:3:0:0:0:0").
func (a currencyAxis) resolve(seriesKey string) (string, bool) {
	parts := strings.Split(seriesKey, ":")

	component := parts[0]
	if len(parts) > 1 {
		if a.keyPosition < 0 || a.keyPosition >= len(parts) {
			return "", false
		}
		component = parts[a.keyPosition]
	}

	idx, err := strconv.Atoi(component)
	if err != nil {
		return "", false
	}

	code, ok := a.Value(idx)
	if !ok || code == "" {
		return "", false
	}
	return code, true
}

// dateAxis returns an empty axis when the time dimension is not declared
func (m *message) dateAxis() (Axis[civil.Date], error) {
	dim, _, ok := findDimension(m.observationDimensions(), TimeDimensionID)
	if !ok {
		return NewAxis[civil.Date](nil), nil
	}

	dates := make([]civil.Date, 0, len(dim.Values))
	for _, v := range dim.Values {
		d, err := civil.ParseDate(strings.TrimSpace(v.ID))
		if err != nil {
			return Axis[civil.Date]{}, &entity.SchemaError{Reason: "invalid TIME_PERIOD value " + strconv.Quote(v.ID), Err: err}
		}
		dates = append(dates, d)
	}

	return NewAxis(dates), nil
}

// parseRate reads the first element of an observation array.
// Strings and numbers are accepted; null, blank or unparsable values report false.
func parseRate(values []json.RawMessage) (decimal.Decimal, bool) {
	if len(values) == 0 {
		return decimal.Decimal{}, false
	}

	raw := bytes.TrimSpace(values[0])
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Decimal{}, false
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return decimal.Decimal{}, false
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return decimal.Decimal{}, false
		}
	}

	rate, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return rate, true
}
