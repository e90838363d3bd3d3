package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/damon-houk/eurfx-rate-service/internal/application/service"
	"github.com/damon-houk/eurfx-rate-service/internal/domain/entity"
	"github.com/damon-houk/eurfx-rate-service/internal/infrastructure/logger"
	"github.com/damon-houk/eurfx-rate-service/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
	"github.com/samber/lo"
)

// FxRateOptions bounds the series endpoint
type FxRateOptions struct {
	DefaultLastN  int
	MaxRangeYears int
}

// FxRateHandler handles HTTP requests for EUR-FX rates
type FxRateHandler struct {
	service *service.FxRateService
	opts    FxRateOptions
	logger  logger.Logger
}

// NewFxRateHandler creates a new FX rate handler
func NewFxRateHandler(service *service.FxRateService, opts FxRateOptions, log logger.Logger) *FxRateHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}
	if opts.DefaultLastN < 1 {
		opts.DefaultLastN = 10
	}
	if opts.MaxRangeYears < 1 {
		opts.MaxRangeYears = 1
	}

	return &FxRateHandler{
		service: service,
		opts:    opts,
		logger:  log,
	}
}

// GetRate handles the EUR rate of one currency on one date
func (h *FxRateHandler) GetRate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	vars := mux.Vars(r)

	req := RateRequest{
		Currency: strings.ToUpper(strings.TrimSpace(vars["currency"])),
		Date:     vars["date"],
	}
	if err := validateRequest(req); err != nil {
		sendServiceError(w, h.logger, err, requestID)
		return
	}

	date, err := parsePastDate("date", req.Date, h.service.Today())
	if err != nil {
		sendServiceError(w, h.logger, err, requestID)
		return
	}

	rate, err := h.service.GetPoint(r.Context(), req.Currency, date)
	if err != nil {
		sendServiceError(w, h.logger, err, requestID)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, NewRateResponse(rate))
}

// GetRatesForDate handles every currency's EUR rate on one date
func (h *FxRateHandler) GetRatesForDate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	req := DateRequest{Date: mux.Vars(r)["date"]}
	if err := validateRequest(req); err != nil {
		sendServiceError(w, h.logger, err, requestID)
		return
	}

	date, err := parsePastDate("date", req.Date, h.service.Today())
	if err != nil {
		sendServiceError(w, h.logger, err, requestID)
		return
	}

	result, err := h.service.GetAllForDate(r.Context(), date)
	if err != nil {
		sendServiceError(w, h.logger, err, requestID)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, DateRatesResponse{
		Date:         result.Date,
		BaseCurrency: entity.BaseCurrency,
		Count:        len(result.Rates),
		Rates:        lo.Map(result.Rates, func(rate entity.RateObservation, _ int) RateResponse { return NewRateResponse(rate) }),
		Failures:     result.Failures,
	})
}

// GetSeries handles the series of every currency over [start, end], or over the last N days
// when neither bound is given
func (h *FxRateHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	query := r.URL.Query()

	req := RangeRequest{Start: query.Get("start"), End: query.Get("end")}
	if err := validateRequest(req); err != nil {
		sendServiceError(w, h.logger, err, requestID)
		return
	}

	if req.Start == "" {
		h.logger.Debug("No range given, serving last N days", map[string]interface{}{
			"request_id": requestID,
			"last_n":     h.opts.DefaultLastN,
		})
		collection, err := h.service.GetLastNSeries(r.Context(), h.opts.DefaultLastN)
		if err != nil {
			sendServiceError(w, h.logger, err, requestID)
			return
		}
		writeJSON(w, h.logger, http.StatusOK, collection)
		return
	}

	today := h.service.Today()
	start, err := parsePastDate("start", req.Start, today)
	if err != nil {
		sendServiceError(w, h.logger, err, requestID)
		return
	}
	end, err := parsePastDate("end", req.End, today)
	if err != nil {
		sendServiceError(w, h.logger, err, requestID)
		return
	}

	if end.Before(start) {
		sendServiceError(w, h.logger, fmt.Errorf("%w: end must be on or after start", entity.ErrInvalidRange), requestID)
		return
	}
	if addYears(start, h.opts.MaxRangeYears).Before(end) {
		sendServiceError(w, h.logger, fmt.Errorf("%w: date range too large, max allowed range is %d years",
			entity.ErrInvalidRange, h.opts.MaxRangeYears), requestID)
		return
	}

	collection, err := h.service.GetSeriesForRange(r.Context(), start, end)
	if err != nil {
		sendServiceError(w, h.logger, err, requestID)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, collection)
}

// RegisterRoutes registers the FX rate handler routes
func (h *FxRateHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/currencies/rates/{currency}/{date}", h.GetRate).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/fx/rates/{date}", h.GetRatesForDate).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/fx/rates", h.GetSeries).Methods(http.MethodGet)

	h.logger.Info("FX rate routes registered", map[string]interface{}{
		"routes": []string{
			"GET /api/v1/currencies/rates/{currency}/{date}",
			"GET /api/v1/fx/rates/{date}",
			"GET /api/v1/fx/rates",
		},
	})
}
