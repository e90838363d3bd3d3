package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstreamUnavailable is returned for transport failures and non-2xx provider responses
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrSchema is returned when a payload does not have the expected dimensional shape
	ErrSchema = errors.New("unexpected payload schema")
	// ErrRateNotFound is returned when no observation exists for a currency and date
	ErrRateNotFound = errors.New("rate not found")
	// ErrInvalidRange is returned for inverted, oversized or empty date ranges
	ErrInvalidRange = errors.New("invalid date range")
	// ErrInvalidRequest is returned when caller input fails validation
	ErrInvalidRequest = errors.New("invalid request")
)

// UpstreamError carries the operation and HTTP status of a failed provider call.
// StatusCode is zero for transport failures.
type UpstreamError struct {
	Operation  string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s: provider returned HTTP %d", ErrUpstreamUnavailable, e.Operation, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrUpstreamUnavailable, e.Operation, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrUpstreamUnavailable, e.Operation)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamUnavailable
}

// SchemaError wraps the cause of a payload that could not be decoded
type SchemaError struct {
	Reason string
	Err    error
}

func (e *SchemaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrSchema, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrSchema, e.Reason)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}
