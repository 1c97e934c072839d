// Package config handles engine configuration, environment loading, and
// profile/rule files.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the configuration for the synchronization engine.
type Config struct {
	ListenAddr string // HTTP listen address for the status API (default ":8080")
	LogLevel   string // log level: debug, info, warn, error (default "info")
	Env        string // environment: "development" (default) or "production"

	// Scheduler settings.
	Workers        int           // worker pool size (default 4)
	TickInterval   time.Duration // coordinator tick (default 1s)
	RetryDelay     time.Duration // fixed delay between attempts (default 60s)
	MaxRetries     int           // attempts after the first failure (default 3)
	RetentionHours int           // finished-job retention (default 24)

	// Connector rate limiting.
	RateLimitRPS   float64 // sustained connector calls per second (default 10)
	RateLimitBurst int     // burst capacity (default 20)

	// PropagateDeletes forwards source deletions to the target catalog.
	PropagateDeletes bool

	// Catalog pairing.
	SourceSystem string // source-system tag (default "datasphere")
	TargetSystem string // target-system tag (default "catalog")
	// Environment qualifies generated names, e.g. "dev", "prod".
	Environment string

	// ProfilesPath and SyncRulesPath point at YAML definition files.
	// Empty paths fall back to the seeded defaults.
	ProfilesPath  string
	SyncRulesPath string

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when the engine is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Retention returns the finished-job retention window as a duration.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.RetentionHours) * time.Hour
}

// LoadFromEnv loads configuration from environment variables and applies
// defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		ListenAddr:    os.Getenv("LISTEN_ADDR"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		Env:           os.Getenv("ENV"),
		SourceSystem:  os.Getenv("SOURCE_SYSTEM"),
		TargetSystem:  os.Getenv("TARGET_SYSTEM"),
		Environment:   os.Getenv("SYNC_ENVIRONMENT"),
		ProfilesPath:  os.Getenv("PROFILES_PATH"),
		SyncRulesPath: os.Getenv("SYNC_RULES_PATH"),
	}

	if v := os.Getenv("SYNC_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Workers = n
		}
	}
	if v := os.Getenv("SYNC_TICK_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.TickInterval = d
		}
	}
	if v := os.Getenv("SYNC_RETRY_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RetryDelay = d
		}
	}
	if v := os.Getenv("SYNC_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxRetries = n
		}
	}
	if v := os.Getenv("SYNC_RETENTION_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RetentionHours = n
		}
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimitRPS = f
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitBurst = n
		}
	}
	if strings.EqualFold(os.Getenv("PROPAGATE_DELETES"), "true") {
		cfg.PropagateDeletes = true
	}

	// Defaults
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Workers == 0 {
		cfg.Workers = 4
	}
	if cfg.TickInterval == 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 60 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetentionHours == 0 {
		cfg.RetentionHours = 24
	}
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 10
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 20
	}
	if cfg.SourceSystem == "" {
		cfg.SourceSystem = "datasphere"
	}
	if cfg.TargetSystem == "" {
		cfg.TargetSystem = "catalog"
	}
	if cfg.Environment == "" {
		cfg.Environment = "dev"
		cfg.Warnings = append(cfg.Warnings, "SYNC_ENVIRONMENT not set — defaulting to \"dev\"")
	}
	if cfg.ProfilesPath == "" {
		cfg.Warnings = append(cfg.Warnings, "PROFILES_PATH not set — using seeded default profiles")
	}

	if cfg.SourceSystem == cfg.TargetSystem {
		return nil, fmt.Errorf("SOURCE_SYSTEM and TARGET_SYSTEM must differ (both %q)", cfg.SourceSystem)
	}
	if cfg.IsProduction() && cfg.Environment == "dev" {
		return nil, fmt.Errorf("SYNC_ENVIRONMENT must be set in production (ENV=production)")
	}

	return cfg, nil
}
