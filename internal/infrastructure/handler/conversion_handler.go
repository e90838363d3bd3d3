// Package handler internal/infrastructure/handler/conversion_handler.go
package handler

import (
	"fmt"
	"net/http"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/damon-houk/eurfx-rate-service/internal/application/service"
	"github.com/damon-houk/eurfx-rate-service/internal/domain/entity"
	"github.com/damon-houk/eurfx-rate-service/internal/infrastructure/logger"
	"github.com/damon-houk/eurfx-rate-service/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

// ConversionHandler handles HTTP requests for currency conversion
type ConversionHandler struct {
	service *service.ConversionService
	today   func() civil.Date
	logger  logger.Logger
}

// NewConversionHandler creates a new conversion handler; today bounds the accepted dates
func NewConversionHandler(service *service.ConversionService, today func() civil.Date, log logger.Logger) *ConversionHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &ConversionHandler{
		service: service,
		today:   today,
		logger:  log,
	}
}

// Convert handles converting a foreign currency amount to EUR
func (h *ConversionHandler) Convert(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	query := r.URL.Query()

	req := ConvertRequest{
		Currency: strings.ToUpper(strings.TrimSpace(query.Get("currency"))),
		Amount:   strings.TrimSpace(query.Get("amount")),
		Date:     query.Get("date"),
	}

	h.logger.Info("Handling convert request", map[string]interface{}{
		"request_id": requestID,
		"currency":   req.Currency,
		"amount":     req.Amount,
		"date":       req.Date,
	})

	if err := validateRequest(req); err != nil {
		sendServiceError(w, h.logger, err, requestID)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		sendServiceError(w, h.logger, fmt.Errorf("%w: amount must be a positive value", entity.ErrInvalidRequest), requestID)
		return
	}

	date, err := parsePastDate("date", req.Date, h.today())
	if err != nil {
		sendServiceError(w, h.logger, err, requestID)
		return
	}

	conversion, err := h.service.ConvertToEUR(r.Context(), req.Currency, date, amount)
	if err != nil {
		sendServiceError(w, h.logger, err, requestID)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, conversion)
}

// RegisterRoutes registers the conversion handler routes
func (h *ConversionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/fx/convert", h.Convert).Methods(http.MethodGet)

	h.logger.Info("Conversion routes registered", map[string]interface{}{
		"routes": []string{
			"GET /api/v1/fx/convert",
		},
	})
}
