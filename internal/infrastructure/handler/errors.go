package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/damon-houk/eurfx-rate-service/internal/domain/entity"
	"github.com/damon-houk/eurfx-rate-service/internal/infrastructure/logger"
	"github.com/go-playground/validator/v10"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error       string `json:"error"`
	Status      int    `json:"status"`
	Description string `json:"description,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}

var validate = validator.New()

// sendErrorResponse sends a standardized error response
func sendErrorResponse(w http.ResponseWriter, log logger.Logger, message, description string, statusCode int, requestID string) {
	log.Debug("Sending error response", map[string]interface{}{
		"request_id":  requestID,
		"status_code": statusCode,
		"message":     message,
	})

	writeJSON(w, log, statusCode, ErrorResponse{
		Error:       message,
		Status:      statusCode,
		Description: description,
		RequestID:   requestID,
	})
}

func writeJSON(w http.ResponseWriter, log logger.Logger, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("Failed to encode response", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// sendServiceError maps a service error to its HTTP status
func sendServiceError(w http.ResponseWriter, log logger.Logger, err error, requestID string) {
	fields := map[string]interface{}{
		"request_id": requestID,
		"error":      err.Error(),
	}

	switch {
	case errors.Is(err, entity.ErrInvalidRange), errors.Is(err, entity.ErrInvalidRequest):
		log.Warn("Invalid request", fields)
		sendErrorResponse(w, log, "Invalid request", err.Error(), http.StatusBadRequest, requestID)
	case errors.Is(err, entity.ErrRateNotFound):
		log.Warn("Rate not found", fields)
		sendErrorResponse(w, log, "Rate not found",
			"No EUR-FX rate is published for the requested currency and date", http.StatusNotFound, requestID)
	case errors.Is(err, entity.ErrUpstreamUnavailable), errors.Is(err, entity.ErrSchema):
		log.Error("Rate provider unavailable", fields)
		sendErrorResponse(w, log, "Service temporarily unavailable",
			"The Bundesbank rate service is temporarily unavailable. Please try again later.",
			http.StatusServiceUnavailable, requestID)
	default:
		log.Error("Unexpected error", fields)
		sendErrorResponse(w, log, "Internal server error",
			"An unexpected error occurred. Please try again later.", http.StatusInternalServerError, requestID)
	}
}

// validateRequest runs struct validation and renders field errors as one sentence
func validateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("%w: %v", entity.ErrInvalidRequest, err)
	}

	msgs := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return fmt.Errorf("%w: %s", entity.ErrInvalidRequest, strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "required_with":
		return "provide both start and end, or neither"
	case "datetime":
		return field + " must be an ISO date (YYYY-MM-DD)"
	case "len", "alpha", "uppercase":
		return field + " must be a 3-letter ISO currency code"
	case "numeric":
		return field + " must be a number"
	default:
		return field + " is invalid"
	}
}

// parsePastDate parses an ISO date that must not be after today
func parsePastDate(field, value string, today civil.Date) (civil.Date, error) {
	d, err := civil.ParseDate(value)
	if err != nil {
		return civil.Date{}, fmt.Errorf("%w: %s must be an ISO date (YYYY-MM-DD)", entity.ErrInvalidRequest, field)
	}
	if d.After(today) {
		return civil.Date{}, fmt.Errorf("%w: %s must not be in the future", entity.ErrInvalidRequest, field)
	}
	return d, nil
}

// addYears moves d by years, clamping 29 February to 28 February
func addYears(d civil.Date, years int) civil.Date {
	out := civil.Date{Year: d.Year + years, Month: d.Month, Day: d.Day}
	if !out.IsValid() {
		out.Day--
	}
	return out
}
