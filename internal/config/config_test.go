package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acmecorp/campaign-pulse/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())

	assert.Equal(t, int64(42), cfg.Generator.Seed)
	assert.Equal(t, 20, cfg.Generator.Advertisers)
	assert.Equal(t, 50, cfg.Generator.Campaigns)
	assert.Equal(t, 50000, cfg.Generator.Impressions)

	assert.Equal(t, 5.0, cfg.Analytics.PacingTolerancePct)
	assert.Equal(t, []string{"/health", "/metrics"}, cfg.RateLimit.SkipPaths)
	assert.Equal(t, 0.75, cfg.Analytics.PublisherCostRate)
	assert.Equal(t, 45, cfg.Analytics.ReceivableTermsDays)
	assert.Equal(t, 30, cfg.Analytics.PayableTermsDays)

	assert.False(t, cfg.Database.Enabled)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.ClickHouse.Enabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PULSE_HTTP_ADDR", ":9999")
	t.Setenv("PULSE_ENV", "production")
	t.Setenv("PULSE_GEN_SEED", "1234")
	t.Setenv("PULSE_GEN_IMPRESSIONS", "100")
	t.Setenv("PULSE_REDIS_ENABLED", "true")
	t.Setenv("PULSE_REDIS_CACHE_TTL", "5m")
	t.Setenv("PULSE_PACING_TOLERANCE_PCT", "10")
	t.Setenv("PULSE_RATE_LIMIT_SKIP_PATHS", "/health, /internal/status")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, int64(1234), cfg.Generator.Seed)
	assert.Equal(t, 100, cfg.Generator.Impressions)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Redis.CacheTTL)
	assert.Equal(t, 10.0, cfg.Analytics.PacingTolerancePct)
	assert.Equal(t, []string{"/health", "/internal/status"}, cfg.RateLimit.SkipPaths)
}

func TestLoad_InvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("PULSE_GEN_IMPRESSIONS", "not-a-number")
	t.Setenv("PULSE_RATE_LIMIT_ENABLED", "maybe")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 50000, cfg.Generator.Impressions)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoad_RejectsBadHorizon(t *testing.T) {
	t.Setenv("PULSE_GEN_HORIZON_START", "01/01/2020")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_RejectsBadCostRate(t *testing.T) {
	t.Setenv("PULSE_PUBLISHER_COST_RATE", "1.5")
	_, err := config.Load()
	assert.Error(t, err)
}
