// Package config loads the server configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// Config is the process configuration, read from the environment by Load.
type Config struct {
	// Server
	Port int

	// Storage
	Storage string // sqlite or memory
	DBPath  string

	// Logging
	LogLevel  slog.Level
	LogFormat string // text or json

	// Planner
	PlanLatency     time.Duration
	ShoppingLatency time.Duration
	PlanRefreshAt   string // HH:MM, empty disables the daily refresh

	// Error reporting
	SentryDSN         string
	SentryEnvironment string
}

// Load reads the configuration, falling back to defaults for unset variables.
// Values that are set but malformed are errors.
func Load() (*Config, error) {
	cfg := &Config{
		Storage:           strings.ToLower(getEnv("STORAGE", StorageSQLite)),
		DBPath:            getEnv("DB_PATH", "data/planner.db"),
		LogFormat:         strings.ToLower(getEnv("LOG_FORMAT", "text")),
		PlanRefreshAt:     getEnv("PLAN_REFRESH_AT", ""),
		SentryDSN:         getEnv("SENTRY_DSN", ""),
		SentryEnvironment: getEnv("SENTRY_ENVIRONMENT", "development"),
	}

	var err error
	if cfg.Port, err = strconv.Atoi(getEnv("PORT", "8080")); err != nil || cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("config: invalid PORT %q", os.Getenv("PORT"))
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("config: invalid LOG_LEVEL: %w", err)
	}
	if cfg.PlanLatency, err = parseDuration("PLAN_LATENCY", "0s"); err != nil {
		return nil, err
	}
	if cfg.ShoppingLatency, err = parseDuration("SHOPPING_LATENCY", "0s"); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage {
	case StorageSQLite, StorageMemory:
	default:
		return fmt.Errorf("config: STORAGE must be %q or %q, got %q", StorageSQLite, StorageMemory, c.Storage)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config: LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	if c.PlanRefreshAt != "" {
		if _, err := time.Parse("15:04", c.PlanRefreshAt); err != nil {
			return fmt.Errorf("config: PLAN_REFRESH_AT must be HH:MM, got %q", c.PlanRefreshAt)
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil || d < 0 {
		return 0, fmt.Errorf("config: invalid %s %q", key, os.Getenv(key))
	}
	return d, nil
}
