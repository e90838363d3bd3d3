package handler

import (
	"net/http"

	"github.com/damon-houk/eurfx-rate-service/internal/application/service"
	"github.com/damon-houk/eurfx-rate-service/internal/infrastructure/logger"
	"github.com/damon-houk/eurfx-rate-service/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// CurrencyHandler handles HTTP requests for the currency list
type CurrencyHandler struct {
	service *service.CurrencyService
	logger  logger.Logger
}

// NewCurrencyHandler creates a new currency handler
func NewCurrencyHandler(service *service.CurrencyService, log logger.Logger) *CurrencyHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &CurrencyHandler{
		service: service,
		logger:  log,
	}
}

// GetCurrencies returns every currency with a published EUR rate
func (h *CurrencyHandler) GetCurrencies(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	currencies, err := h.service.GetCurrencyInfos(r.Context())
	if err != nil {
		sendServiceError(w, h.logger, err, requestID)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, CurrencyListResponse{
		Count:      len(currencies),
		Currencies: currencies,
	})
}

// RegisterRoutes registers the currency handler routes
func (h *CurrencyHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/currencies", h.GetCurrencies).Methods(http.MethodGet)

	h.logger.Info("Currency routes registered", map[string]interface{}{
		"routes": []string{
			"GET /api/v1/currencies",
		},
	})
}
