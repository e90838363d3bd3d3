package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Port string `validate:"required,numeric"`

	BundesbankBaseURL    string        `validate:"required,url"`
	UpstreamTimeout      time.Duration `validate:"gt=0"`
	UpstreamMaxRetries   int           `validate:"gte=1,lte=10"`
	UpstreamRetryBackoff time.Duration `validate:"gte=0"`

	CurrencyCacheTTL     time.Duration `validate:"gt=0"`
	RangeCacheTTL        time.Duration `validate:"gt=0"`
	CacheCleanupInterval time.Duration `validate:"gt=0"`

	DefaultLastN  int `validate:"gte=1"`
	MaxRangeYears int `validate:"gte=1"`

	LogLevel string `validate:"oneof=DEBUG INFO WARN WARNING ERROR FATAL debug info warn warning error fatal"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("BUNDESBANK_BASE_URL", "https://api.statistiken.bundesbank.de/rest")
	v.SetDefault("UPSTREAM_TIMEOUT", "10s")
	v.SetDefault("UPSTREAM_MAX_RETRIES", 3)
	v.SetDefault("UPSTREAM_RETRY_BACKOFF", "1s")
	v.SetDefault("CURRENCY_CACHE_TTL", "24h")
	v.SetDefault("RANGE_CACHE_TTL", "10h")
	v.SetDefault("CACHE_CLEANUP_INTERVAL", "30m")
	v.SetDefault("DEFAULT_LAST_N", 10)
	v.SetDefault("MAX_RANGE_YEARS", 1)
	v.SetDefault("LOG_LEVEL", "INFO")
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Port:                 v.GetString("PORT"),
		BundesbankBaseURL:    v.GetString("BUNDESBANK_BASE_URL"),
		UpstreamTimeout:      v.GetDuration("UPSTREAM_TIMEOUT"),
		UpstreamMaxRetries:   v.GetInt("UPSTREAM_MAX_RETRIES"),
		UpstreamRetryBackoff: v.GetDuration("UPSTREAM_RETRY_BACKOFF"),
		CurrencyCacheTTL:     v.GetDuration("CURRENCY_CACHE_TTL"),
		RangeCacheTTL:        v.GetDuration("RANGE_CACHE_TTL"),
		CacheCleanupInterval: v.GetDuration("CACHE_CLEANUP_INTERVAL"),
		DefaultLastN:         v.GetInt("DEFAULT_LAST_N"),
		MaxRangeYears:        v.GetInt("MAX_RANGE_YEARS"),
		LogLevel:             v.GetString("LOG_LEVEL"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
