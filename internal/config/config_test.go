package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable LoadFromEnv reads so tests do not inherit
// the host environment.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LISTEN_ADDR", "LOG_LEVEL", "ENV",
		"SYNC_WORKERS", "SYNC_TICK_INTERVAL", "SYNC_RETRY_DELAY",
		"SYNC_MAX_RETRIES", "SYNC_RETENTION_HOURS",
		"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "PROPAGATE_DELETES",
		"SOURCE_SYSTEM", "TARGET_SYSTEM", "SYNC_ENVIRONMENT",
		"PROFILES_PATH", "SYNC_RULES_PATH",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, time.Second, cfg.TickInterval)
	assert.Equal(t, 60*time.Second, cfg.RetryDelay)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 24*time.Hour, cfg.Retention())
	assert.Equal(t, 10.0, cfg.RateLimitRPS)
	assert.Equal(t, 20, cfg.RateLimitBurst)
	assert.False(t, cfg.PropagateDeletes)
	assert.Equal(t, "datasphere", cfg.SourceSystem)
	assert.Equal(t, "catalog", cfg.TargetSystem)
	assert.Equal(t, "dev", cfg.Environment)
	assert.False(t, cfg.IsProduction())
	assert.NotEmpty(t, cfg.Warnings, "defaulted environment must leave a warning")
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LISTEN_ADDR", ":9999")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SYNC_WORKERS", "8")
	t.Setenv("SYNC_TICK_INTERVAL", "250ms")
	t.Setenv("SYNC_RETRY_DELAY", "5s")
	t.Setenv("SYNC_MAX_RETRIES", "1")
	t.Setenv("SYNC_RETENTION_HOURS", "48")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "5")
	t.Setenv("PROPAGATE_DELETES", "true")
	t.Setenv("SOURCE_SYSTEM", "dsp")
	t.Setenv("TARGET_SYSTEM", "cat")
	t.Setenv("SYNC_ENVIRONMENT", "prod")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 250*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, 5*time.Second, cfg.RetryDelay)
	assert.Equal(t, 1, cfg.MaxRetries)
	assert.Equal(t, 48*time.Hour, cfg.Retention())
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, 5, cfg.RateLimitBurst)
	assert.True(t, cfg.PropagateDeletes)
	assert.Equal(t, "dsp", cfg.SourceSystem)
	assert.Equal(t, "cat", cfg.TargetSystem)
	assert.Equal(t, "prod", cfg.Environment)
}

func TestLoadFromEnv_SameSystemsRejected(t *testing.T) {
	clearEnv(t)
	t.Setenv("SOURCE_SYSTEM", "catalog")
	t.Setenv("TARGET_SYSTEM", "catalog")

	_, err := LoadFromEnv()
	require.Error(t, err)
}

func TestLoadFromEnv_ProductionRequiresEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "production")

	_, err := LoadFromEnv()
	require.Error(t, err)

	t.Setenv("SYNC_ENVIRONMENT", "prod")
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestSlogLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		cfg := &Config{LogLevel: tt.in}
		assert.Equal(t, tt.want, cfg.SlogLevel(), "level %q", tt.in)
	}
}
