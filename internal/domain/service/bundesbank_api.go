package service

import (
	"context"

	"cloud.google.com/go/civil"
)

// RatePayloadFetcher defines the interface for retrieving raw SDMX payloads from the rate provider.
// Every method fails with an error matching entity.ErrUpstreamUnavailable on transport or HTTP failure.
type RatePayloadFetcher interface {
	// FetchCurrencyListPayload retrieves the series keys of every published currency
	FetchCurrencyListPayload(ctx context.Context) ([]byte, error)

	// FetchPointPayload retrieves the observation of one currency on one date
	FetchPointPayload(ctx context.Context, currency string, date civil.Date) ([]byte, error)

	// FetchAllCurrenciesForDatePayload retrieves the observations of every currency on one date
	FetchAllCurrenciesForDatePayload(ctx context.Context, date civil.Date) ([]byte, error)

	// FetchRangePayload retrieves the observations of every currency over [start, end]
	FetchRangePayload(ctx context.Context, start, end civil.Date) ([]byte, error)
}
