package config

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := LoadConfig()

		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, "https://api.statistiken.bundesbank.de/rest", cfg.BundesbankBaseURL)
		assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
		assert.Equal(t, 3, cfg.UpstreamMaxRetries)
		assert.Equal(t, time.Second, cfg.UpstreamRetryBackoff)
		assert.Equal(t, 24*time.Hour, cfg.CurrencyCacheTTL)
		assert.Equal(t, 10*time.Hour, cfg.RangeCacheTTL)
		assert.Equal(t, 30*time.Minute, cfg.CacheCleanupInterval)
		assert.Equal(t, 10, cfg.DefaultLastN)
		assert.Equal(t, 1, cfg.MaxRangeYears)
		assert.Equal(t, "INFO", cfg.LogLevel)
	})

	t.Run("Environment overrides", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("BUNDESBANK_BASE_URL", "http://localhost:8089/rest")
		t.Setenv("RANGE_CACHE_TTL", "90m")
		t.Setenv("DEFAULT_LAST_N", "5")
		t.Setenv("LOG_LEVEL", "debug")

		cfg, err := LoadConfig()

		require.NoError(t, err)
		assert.Equal(t, "9090", cfg.Port)
		assert.Equal(t, "http://localhost:8089/rest", cfg.BundesbankBaseURL)
		assert.Equal(t, 90*time.Minute, cfg.RangeCacheTTL)
		assert.Equal(t, 5, cfg.DefaultLastN)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("Invalid values are rejected", func(t *testing.T) {
		t.Setenv("DEFAULT_LAST_N", "0")
		t.Setenv("BUNDESBANK_BASE_URL", "not a url")

		cfg, err := LoadConfig()

		assert.Nil(t, cfg)
		require.Error(t, err)

		var validationErrs validator.ValidationErrors
		require.ErrorAs(t, err, &validationErrs)
		fields := make([]string, 0, len(validationErrs))
		for _, fe := range validationErrs {
			fields = append(fields, fe.Field())
		}
		assert.ElementsMatch(t, []string{"BundesbankBaseURL", "DefaultLastN"}, fields)
	})
}
