// internal/infrastructure/api/bundesbank_client_test.go
package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/damon-houk/eurfx-rate-service/internal/domain/entity"
	"github.com/damon-houk/eurfx-rate-service/internal/infrastructure/logger"
	"github.com/damon-houk/eurfx-rate-service/internal/infrastructure/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePayload = `{"data":{"dataSets":[{"series":{}}]}}`

func newTestClient(baseURL string, m *metrics.Metrics) *BundesbankClient {
	var buf bytes.Buffer
	return NewBundesbankClient(ClientConfig{
		BaseURL:      baseURL,
		Timeout:      time.Second,
		MaxRetries:   3,
		RetryBackoff: time.Millisecond,
	}, nil, logger.NewZapLogger(&buf, logger.DebugLevel), m)
}

func TestBundesbankClientRequests(t *testing.T) {
	day := civil.Date{Year: 2024, Month: 1, Day: 15}
	end := civil.Date{Year: 2024, Month: 1, Day: 16}

	tests := []struct {
		name        string
		call        func(c *BundesbankClient) ([]byte, error)
		path        string
		detail      string
		startPeriod string
		endPeriod   string
	}{
		{
			name:   "Currency list",
			call:   func(c *BundesbankClient) ([]byte, error) { return c.FetchCurrencyListPayload(context.Background()) },
			path:   "/data/BBEX3/D..EUR.BB.AC.000",
			detail: "serieskeyonly",
		},
		{
			name: "Point",
			call: func(c *BundesbankClient) ([]byte, error) {
				return c.FetchPointPayload(context.Background(), "USD", day)
			},
			path:        "/data/BBEX3/D.USD.EUR.BB.AC.000",
			startPeriod: "2024-01-15",
			endPeriod:   "2024-01-15",
		},
		{
			name: "All currencies for date",
			call: func(c *BundesbankClient) ([]byte, error) {
				return c.FetchAllCurrenciesForDatePayload(context.Background(), day)
			},
			path:        "/data/BBEX3/D..EUR.BB.AC.000",
			detail:      "dataonly",
			startPeriod: "2024-01-15",
			endPeriod:   "2024-01-15",
		},
		{
			name:        "Range",
			call:        func(c *BundesbankClient) ([]byte, error) { return c.FetchRangePayload(context.Background(), day, end) },
			path:        "/data/BBEX3/D..EUR.BB.AC.000",
			detail:      "dataonly",
			startPeriod: "2024-01-15",
			endPeriod:   "2024-01-16",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.path, r.URL.Path)
				assert.Equal(t, tt.detail, r.URL.Query().Get("detail"))
				assert.Equal(t, tt.startPeriod, r.URL.Query().Get("startPeriod"))
				assert.Equal(t, tt.endPeriod, r.URL.Query().Get("endPeriod"))
				assert.Equal(t, "application/vnd.sdmx.data+json;version=1.0.0", r.Header.Get("Accept"))

				w.Header().Set("Content-Type", "application/vnd.sdmx.data+json")
				_, _ = w.Write([]byte(samplePayload))
			}))
			defer server.Close()

			// Execute
			payload, err := tt.call(newTestClient(server.URL, nil))

			// Assert
			require.NoError(t, err)
			assert.JSONEq(t, samplePayload, string(payload))
		})
	}
}

func TestBundesbankClientFailures(t *testing.T) {
	day := civil.Date{Year: 2024, Month: 1, Day: 15}

	t.Run("Non-2xx is not retried", func(t *testing.T) {
		var hits int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&hits, 1)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		reg := prometheus.NewRegistry()
		m := metrics.NewMetrics(reg)

		_, err := newTestClient(server.URL, m).FetchPointPayload(context.Background(), "USD", day)

		var upstreamErr *entity.UpstreamError
		require.ErrorAs(t, err, &upstreamErr)
		assert.Equal(t, http.StatusBadGateway, upstreamErr.StatusCode)
		assert.Equal(t, OperationPoint, upstreamErr.Operation)
		assert.ErrorIs(t, err, entity.ErrUpstreamUnavailable)
		assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamRequestsTotal.WithLabelValues(OperationPoint, "error")))
	})

	t.Run("Empty body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("  \n"))
		}))
		defer server.Close()

		_, err := newTestClient(server.URL, nil).FetchCurrencyListPayload(context.Background())

		assert.ErrorIs(t, err, entity.ErrUpstreamUnavailable)
		assert.ErrorIs(t, err, errEmptyResponse)
	})

	t.Run("Oversized body is reported as upstream failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(samplePayload))
		}))
		defer server.Close()

		client := NewBundesbankClient(ClientConfig{
			BaseURL:         server.URL,
			MaxPayloadBytes: int64(len(samplePayload) - 1),
		}, nil, logger.NewZapLogger(&bytes.Buffer{}, logger.ErrorLevel), nil)

		_, err := client.FetchRangePayload(context.Background(), day, day)

		var upstreamErr *entity.UpstreamError
		require.ErrorAs(t, err, &upstreamErr)
		assert.Equal(t, OperationRange, upstreamErr.Operation)
		assert.ErrorIs(t, err, errResponseTooLarge)
		assert.NotErrorIs(t, err, entity.ErrSchema)
	})

	t.Run("Body at the size limit is accepted", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(samplePayload))
		}))
		defer server.Close()

		client := NewBundesbankClient(ClientConfig{
			BaseURL:         server.URL,
			MaxPayloadBytes: int64(len(samplePayload)),
		}, nil, logger.NewZapLogger(&bytes.Buffer{}, logger.ErrorLevel), nil)

		payload, err := client.FetchRangePayload(context.Background(), day, day)

		require.NoError(t, err)
		assert.Equal(t, samplePayload, string(payload))
	})

	t.Run("Transport failure is retried", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		baseURL := server.URL
		server.Close()

		client := newTestClient(baseURL, nil)
		started := time.Now()
		_, err := client.FetchRangePayload(context.Background(), day, day)

		var upstreamErr *entity.UpstreamError
		require.ErrorAs(t, err, &upstreamErr)
		assert.Zero(t, upstreamErr.StatusCode)
		assert.ErrorIs(t, err, entity.ErrUpstreamUnavailable)
		// 1ms + 4ms of backoff between three attempts
		assert.GreaterOrEqual(t, time.Since(started), 5*time.Millisecond)
	})

	t.Run("Cancelled context stops retrying", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		baseURL := server.URL
		server.Close()

		client := NewBundesbankClient(ClientConfig{
			BaseURL:      baseURL,
			MaxRetries:   5,
			RetryBackoff: time.Hour,
		}, nil, logger.NewZapLogger(&bytes.Buffer{}, logger.ErrorLevel), nil)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := client.FetchCurrencyListPayload(ctx)

		assert.ErrorIs(t, err, entity.ErrUpstreamUnavailable)
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})
}

func TestNewBundesbankClientDefaults(t *testing.T) {
	client := NewBundesbankClient(ClientConfig{BaseURL: "http://example.test/rest/"}, nil, nil, nil)

	assert.Equal(t, "http://example.test/rest", client.baseURL)
	assert.Equal(t, 10*time.Second, client.httpClient.Timeout)
	assert.Equal(t, 1, client.maxRetries)
	assert.Equal(t, int64(DefaultMaxPayloadBytes), client.maxPayload)
	assert.NotNil(t, client.log)

	client = NewBundesbankClient(ClientConfig{}, nil, nil, nil)
	assert.Equal(t, DefaultBaseURL, client.baseURL)
}
