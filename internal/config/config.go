// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// AutoMigrate applies pending goose migrations on startup when true.
	// Defaults to false; production schemas are migrated out of band.
	AutoMigrate bool

	// Retention is how long event rows live before the sweeper deletes them.
	// Defaults to 24h. Set RETENTION_HOURS to override.
	Retention time.Duration

	// SweepInterval is how often the retention sweeper runs.
	// Defaults to 1h. Set SWEEP_INTERVAL_MINUTES to override.
	SweepInterval time.Duration

	// StreamBudget bounds how long one SSE connection stays open. Defaults
	// to 25s, deliberately under common 30s proxy idle timeouts. Set
	// STREAM_BUDGET_SECONDS to override.
	StreamBudget time.Duration

	// StreamTick is the pause between log queries inside an SSE connection.
	// Defaults to 2s. Set STREAM_TICK_SECONDS to override.
	StreamTick time.Duration

	// EventQueryLimit caps how many events one feed query returns.
	// Defaults to 100. Set EVENT_QUERY_LIMIT to override.
	EventQueryLimit int
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or
// naming the first numeric variable that fails to parse.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		AutoMigrate: getEnv("AUTO_MIGRATE", "false") == "true",
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	var err error
	if cfg.Retention, err = getDuration("RETENTION_HOURS", 24, time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.SweepInterval, err = getDuration("SWEEP_INTERVAL_MINUTES", 60, time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.StreamBudget, err = getDuration("STREAM_BUDGET_SECONDS", 25, time.Second); err != nil {
		return Config{}, err
	}
	if cfg.StreamTick, err = getDuration("STREAM_TICK_SECONDS", 2, time.Second); err != nil {
		return Config{}, err
	}
	if cfg.EventQueryLimit, err = getInt("EVENT_QUERY_LIMIT", 100); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getInt parses the environment variable named by key as a positive integer,
// falling back when unset.
func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return n, nil
}

// getDuration parses the environment variable named by key as a positive
// integer count of unit, falling back when unset.
func getDuration(key string, fallback int, unit time.Duration) (time.Duration, error) {
	n, err := getInt(key, fallback)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * unit, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
