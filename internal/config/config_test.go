package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.App.Port)
	assert.False(t, cfg.App.Debug)

	assert.Equal(t, "astrowatch", cfg.DB.DBName)
	assert.Equal(t, "disable", cfg.DB.SSLMode)

	assert.Equal(t, "https://api.nasa.gov/neo/rest/v1/feed", cfg.NeoWs.FeedURL)
	assert.Equal(t, 30*time.Second, cfg.NeoWs.Timeout)

	assert.True(t, cfg.Workers.DailyEnabled)
	assert.True(t, cfg.Workers.WeeklyEnabled)
	assert.Equal(t, 24*time.Hour, cfg.Workers.DailyInterval)
	assert.Equal(t, 7*24*time.Hour, cfg.Workers.WeeklyInterval)
	assert.Equal(t, time.Hour, cfg.Workers.SweepInterval)
	assert.Equal(t, 24*time.Hour, cfg.Workers.SweepLookahead)

	assert.Equal(t, 10, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 20, cfg.RateLimit.Burst)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DEBUG", "true")
	t.Setenv("NEOWS_API_KEY", "test-key")
	t.Setenv("WORKER_SWEEP_INTERVAL", "15m")
	t.Setenv("SWEEP_LOOKAHEAD", "48h")
	t.Setenv("WEEKLY_PIPELINE_ENABLED", "false")
	t.Setenv("RATE_LIMIT_RPS", "100")

	cfg := Load()

	assert.Equal(t, "9090", cfg.App.Port)
	assert.True(t, cfg.App.Debug)
	assert.Equal(t, "test-key", cfg.NeoWs.APIKey)
	assert.Equal(t, 15*time.Minute, cfg.Workers.SweepInterval)
	assert.Equal(t, 48*time.Hour, cfg.Workers.SweepLookahead)
	assert.False(t, cfg.Workers.WeeklyEnabled)
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
}

func TestLoadIgnoresGarbageValues(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("WORKER_DAILY_INTERVAL", "yesterday")
	t.Setenv("DEBUG", "maybe")

	cfg := Load()

	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, 24*time.Hour, cfg.Workers.DailyInterval)
	assert.False(t, cfg.App.Debug)
}
