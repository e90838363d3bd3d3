// internal/mocks/mocks.go
package mocks

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/damon-houk/eurfx-rate-service/internal/domain/entity"
	"github.com/damon-houk/eurfx-rate-service/internal/infrastructure/logger"
	"github.com/stretchr/testify/mock"
)

// MockRatePayloadFetcher mocks the RatePayloadFetcher interface
type MockRatePayloadFetcher struct {
	mock.Mock
}

func (m *MockRatePayloadFetcher) FetchCurrencyListPayload(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	return payload(args), args.Error(1)
}

func (m *MockRatePayloadFetcher) FetchPointPayload(ctx context.Context, currency string, date civil.Date) ([]byte, error) {
	args := m.Called(ctx, currency, date)
	return payload(args), args.Error(1)
}

func (m *MockRatePayloadFetcher) FetchAllCurrenciesForDatePayload(ctx context.Context, date civil.Date) ([]byte, error) {
	args := m.Called(ctx, date)
	return payload(args), args.Error(1)
}

func (m *MockRatePayloadFetcher) FetchRangePayload(ctx context.Context, start, end civil.Date) ([]byte, error) {
	args := m.Called(ctx, start, end)
	return payload(args), args.Error(1)
}

// payload accepts either a string or a byte slice as the first return value
func payload(args mock.Arguments) []byte {
	switch v := args.Get(0).(type) {
	case nil:
		return nil
	case string:
		return []byte(v)
	default:
		return v.([]byte)
	}
}

// MockRateProvider mocks the point lookup used by the conversion service
type MockRateProvider struct {
	mock.Mock
}

func (m *MockRateProvider) GetPoint(ctx context.Context, currency string, date civil.Date) (entity.RateObservation, error) {
	args := m.Called(ctx, currency, date)
	if args.Get(0) == nil {
		return entity.RateObservation{}, args.Error(1)
	}
	return args.Get(0).(entity.RateObservation), args.Error(1)
}

// MockLogger mocks the logger interface
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Info(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Warn(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Error(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Fatal(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) WithField(key string, value interface{}) logger.Logger {
	args := m.Called(key, value)
	return args.Get(0).(logger.Logger)
}

func (m *MockLogger) WithFields(fields map[string]interface{}) logger.Logger {
	args := m.Called(fields)
	return args.Get(0).(logger.Logger)
}
