package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/damon-houk/eurfx-rate-service/internal/application/service"
	"github.com/damon-houk/eurfx-rate-service/internal/infrastructure/api"
	"github.com/damon-houk/eurfx-rate-service/internal/infrastructure/cache"
	"github.com/damon-houk/eurfx-rate-service/internal/infrastructure/config"
	"github.com/damon-houk/eurfx-rate-service/internal/infrastructure/handler"
	"github.com/damon-houk/eurfx-rate-service/internal/infrastructure/logger"
	"github.com/damon-houk/eurfx-rate-service/internal/infrastructure/metrics"
	"github.com/damon-houk/eurfx-rate-service/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log := logger.NewZapLogger(os.Stdout, logger.ParseLevel(cfg.LogLevel))
	logger.SetDefaultLogger(log)
	defer func() { _ = log.Sync() }()

	log.Info("Starting EUR-FX rate service", map[string]interface{}{
		"port":     cfg.Port,
		"upstream": cfg.BundesbankBaseURL,
	})

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(registry)

	// Initialize API client
	bundesbank := api.NewBundesbankClient(api.ClientConfig{
		BaseURL:      cfg.BundesbankBaseURL,
		Timeout:      cfg.UpstreamTimeout,
		MaxRetries:   cfg.UpstreamMaxRetries,
		RetryBackoff: cfg.UpstreamRetryBackoff,
	}, nil, log.WithField("component", "bundesbank"), appMetrics)

	// Initialize caches
	rateCache := cache.NewRateCache(cfg.RangeCacheTTL, appMetrics)
	currencyCache := cache.NewCurrencyCache()

	// Initialize services
	fxService := service.NewFxRateService(bundesbank, rateCache, log)
	currencyService := service.NewCurrencyService(bundesbank, currencyCache, cfg.CurrencyCacheTTL, log)
	conversionService := service.NewConversionService(fxService, log)

	// Setup router
	router := mux.NewRouter()
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.LoggingMiddleware(log))
	router.Use(middleware.MetricsMiddleware(appMetrics))

	handler.NewCurrencyHandler(currencyService, log).RegisterRoutes(router)
	handler.NewFxRateHandler(fxService, handler.FxRateOptions{
		DefaultLastN:  cfg.DefaultLastN,
		MaxRangeYears: cfg.MaxRangeYears,
	}, log).RegisterRoutes(router)
	handler.NewConversionHandler(conversionService, fxService.Today, log).RegisterRoutes(router)
	handler.NewHealthHandler(rateCache, registry, log).RegisterRoutes(router)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.UpstreamTimeout*time.Duration(cfg.UpstreamMaxRetries) + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, cancelCleanup := context.WithCancel(context.Background())
	go cleanExpired(ctx, rateCache, cfg.CacheCleanupInterval, log)

	go func() {
		log.Info("Server listening", map[string]interface{}{"addr": server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", map[string]interface{}{"error": err.Error()})
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server", nil)

	cancelCleanup()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", map[string]interface{}{"error": err.Error()})
		return
	}

	log.Info("Server exited", nil)
}

// cleanExpired periodically removes expired range entries
func cleanExpired(ctx context.Context, rateCache *cache.RateCache, interval time.Duration, log logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := rateCache.CleanExpired(); removed > 0 {
				log.Debug("Removed expired range entries", map[string]interface{}{"removed": removed})
			}
		case <-ctx.Done():
			log.Debug("Stopping cache cleanup goroutine", nil)
			return
		}
	}
}
