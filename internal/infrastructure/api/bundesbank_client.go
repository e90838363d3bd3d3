package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/damon-houk/eurfx-rate-service/internal/domain/entity"
	"github.com/damon-houk/eurfx-rate-service/internal/infrastructure/logger"
	"github.com/damon-houk/eurfx-rate-service/internal/infrastructure/metrics"
)

const (
	// DefaultBaseURL is the Bundesbank statistics REST endpoint
	DefaultBaseURL = "https://api.statistiken.bundesbank.de/rest"

	exchangeRatePath = "/data/BBEX3/D.%s.EUR.BB.AC.000"
	sdmxMediaType    = "application/vnd.sdmx.data+json;version=1.0.0"

	detailParam    = "detail"
	seriesKeyOnly  = "serieskeyonly"
	dataOnly       = "dataonly"
	startPeriodKey = "startPeriod"
	endPeriodKey   = "endPeriod"

	// DefaultMaxPayloadBytes bounds how much of a response body is read
	DefaultMaxPayloadBytes = 32 << 20
)

var (
	errEmptyResponse    = errors.New("empty response body")
	errResponseTooLarge = errors.New("response too large")
)

// Operation names used in errors, logs and metrics
const (
	OperationCurrencies = "currencies"
	OperationPoint      = "point"
	OperationDate       = "date"
	OperationRange      = "range"
)

// ClientConfig holds the transport settings of the Bundesbank client
type ClientConfig struct {
	BaseURL      string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxPayloadBytes caps the accepted body size; non-positive selects DefaultMaxPayloadBytes
	MaxPayloadBytes int64
}

// BundesbankClient fetches raw SDMX-JSON payloads from the Bundesbank API
type BundesbankClient struct {
	baseURL      string
	httpClient   *http.Client
	maxRetries   int
	retryBackoff time.Duration
	maxPayload   int64
	log          logger.Logger
	metrics      *metrics.Metrics
}

// NewBundesbankClient creates a new Bundesbank API client
func NewBundesbankClient(cfg ClientConfig, httpClient *http.Client, log logger.Logger, m *metrics.Metrics) *BundesbankClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: cfg.Timeout,
		}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	if cfg.MaxPayloadBytes <= 0 {
		cfg.MaxPayloadBytes = DefaultMaxPayloadBytes
	}
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &BundesbankClient{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:   httpClient,
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
		maxPayload:   cfg.MaxPayloadBytes,
		log:          log,
		metrics:      m,
	}
}

// FetchCurrencyListPayload retrieves the series keys of every daily EUR rate
func (c *BundesbankClient) FetchCurrencyListPayload(ctx context.Context) ([]byte, error) {
	query := url.Values{}
	query.Set(detailParam, seriesKeyOnly)

	return c.fetch(ctx, OperationCurrencies, "", query)
}

// FetchPointPayload retrieves one currency's observation for one date
func (c *BundesbankClient) FetchPointPayload(ctx context.Context, currency string, date civil.Date) ([]byte, error) {
	query := url.Values{}
	query.Set(startPeriodKey, date.String())
	query.Set(endPeriodKey, date.String())

	return c.fetch(ctx, OperationPoint, currency, query)
}

// FetchAllCurrenciesForDatePayload retrieves every currency's observation for one date
func (c *BundesbankClient) FetchAllCurrenciesForDatePayload(ctx context.Context, date civil.Date) ([]byte, error) {
	query := url.Values{}
	query.Set(startPeriodKey, date.String())
	query.Set(endPeriodKey, date.String())
	query.Set(detailParam, dataOnly)

	return c.fetch(ctx, OperationDate, "", query)
}

// FetchRangePayload retrieves every currency's observations over [start, end]
func (c *BundesbankClient) FetchRangePayload(ctx context.Context, start, end civil.Date) ([]byte, error) {
	query := url.Values{}
	query.Set(startPeriodKey, start.String())
	query.Set(endPeriodKey, end.String())
	query.Set(detailParam, dataOnly)

	return c.fetch(ctx, OperationRange, "", query)
}

func (c *BundesbankClient) fetch(ctx context.Context, operation, currency string, query url.Values) ([]byte, error) {
	reqURL := c.baseURL + fmt.Sprintf(exchangeRatePath, url.PathEscape(currency)) + "?" + query.Encode()
	log := c.log.WithFields(map[string]interface{}{
		"operation": operation,
		"url":       reqURL,
	})

	started := time.Now()
	payload, err := c.do(ctx, log, operation, reqURL)
	elapsed := time.Since(started)

	if err != nil {
		c.metrics.ObserveUpstream(operation, "error", elapsed)
		log.Error("Bundesbank request failed", map[string]interface{}{
			"error":       err.Error(),
			"duration_ms": elapsed.Milliseconds(),
		})
		return nil, err
	}

	c.metrics.ObserveUpstream(operation, "ok", elapsed)
	log.Debug("Bundesbank request completed", map[string]interface{}{
		"bytes":       len(payload),
		"duration_ms": elapsed.Milliseconds(),
	})
	return payload, nil
}

// do executes the request, retrying transport failures only
func (c *BundesbankClient) do(ctx context.Context, log logger.Logger, operation, reqURL string) ([]byte, error) {
	var resp *http.Response
	var err error

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		var req *http.Request
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, &entity.UpstreamError{Operation: operation, Err: fmt.Errorf("failed to create request: %w", err)}
		}
		req.Header.Set("Accept", sdmxMediaType)

		resp, err = c.httpClient.Do(req)
		if err == nil {
			break
		}

		if attempt < c.maxRetries {
			backoff := time.Duration(attempt*attempt) * c.retryBackoff
			log.Warn("Bundesbank request failed, retrying", map[string]interface{}{
				"attempt":     attempt,
				"max_retries": c.maxRetries,
				"backoff":     backoff.String(),
				"error":       err.Error(),
			})
			if waitErr := sleepContext(ctx, backoff); waitErr != nil {
				err = waitErr
				break
			}
		}
	}

	if err != nil {
		return nil, &entity.UpstreamError{Operation: operation, Err: fmt.Errorf("request failed after retries: %w", err)}
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn("Error closing response body", map[string]interface{}{"error": closeErr.Error()})
		}
	}()

	// One byte past the cap tells an oversized body apart from one that fits exactly
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxPayload+1))
	if err != nil {
		return nil, &entity.UpstreamError{Operation: operation, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &entity.UpstreamError{Operation: operation, StatusCode: resp.StatusCode}
	}

	if int64(len(body)) > c.maxPayload {
		return nil, &entity.UpstreamError{
			Operation: operation,
			Err:       fmt.Errorf("%w: more than %d bytes", errResponseTooLarge, c.maxPayload),
		}
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, &entity.UpstreamError{Operation: operation, Err: errEmptyResponse}
	}

	return body, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
