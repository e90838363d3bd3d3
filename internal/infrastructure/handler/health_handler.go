package handler

import (
	"net/http"
	"time"

	"github.com/damon-houk/eurfx-rate-service/internal/infrastructure/logger"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CacheStats reports the number of entries per cache table
type CacheStats interface {
	Sizes() map[string]int
}

// HealthResponse represents the response for the health endpoint
type HealthResponse struct {
	Status string         `json:"status"`
	Time   time.Time      `json:"time"`
	Cache  map[string]int `json:"cache,omitempty"`
}

// HealthHandler serves liveness and Prometheus metrics
type HealthHandler struct {
	cache    CacheStats
	gatherer prometheus.Gatherer
	logger   logger.Logger
}

// NewHealthHandler creates a new health handler; cache may be nil
func NewHealthHandler(cache CacheStats, gatherer prometheus.Gatherer, log logger.Logger) *HealthHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	return &HealthHandler{
		cache:    cache,
		gatherer: gatherer,
		logger:   log,
	}
}

// Health reports that the process is serving
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC(),
	}
	if h.cache != nil {
		resp.Cache = h.cache.Sizes()
	}

	writeJSON(w, h.logger, http.StatusOK, resp)
}

// RegisterRoutes registers the health and metrics routes
func (h *HealthHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	h.logger.Info("Health routes registered", map[string]interface{}{
		"routes": []string{
			"GET /health",
			"GET /metrics",
		},
	})
}
