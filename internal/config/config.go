// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/pkordes/shareit/backend/internal/domain"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel is the minimum log level. LOG_LEVEL accepts debug, info, warn
	// and error; defaults to info.
	LogLevel slog.Level

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Set CORS_ORIGINS to a comma-separated list to override the default.
	CORSOrigins []string

	// ConflictPolicy selects which reservations block a new booking.
	// CONFLICT_POLICY is "active" (default) or "any".
	ConflictPolicy domain.ConflictPolicy

	// CancelPolicy selects who may cancel a waiting booking.
	// CANCEL_POLICY is "booker" (default) or "owner".
	CancelPolicy domain.CancelPolicy

	// MaxBodyBytes caps request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64

	// MigrateOnStart applies the embedded goose migrations before serving.
	// Defaults to true.
	MigrateOnStart bool
}

// Load reads an optional .env file from the working directory, then builds a
// Config from the environment. Variables already set in the environment win
// over the file. Every invalid or missing value is reported in one error.
func Load() (Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
	}

	var errs []error

	if cfg.DatabaseURL == "" {
		errs = append(errs, errors.New("required environment variable not set: DATABASE_URL"))
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}

	var err error
	if cfg.ConflictPolicy, err = domain.ParseConflictPolicy(getEnv("CONFLICT_POLICY", "active")); err != nil {
		errs = append(errs, fmt.Errorf("CONFLICT_POLICY: %w", err))
	}
	if cfg.CancelPolicy, err = domain.ParseCancelPolicy(getEnv("CANCEL_POLICY", "booker")); err != nil {
		errs = append(errs, fmt.Errorf("CANCEL_POLICY: %w", err))
	}

	cfg.MaxBodyBytes, err = strconv.ParseInt(getEnv("MAX_BODY_BYTES", "1048576"), 10, 64)
	if err == nil && cfg.MaxBodyBytes <= 0 {
		err = errors.New("must be positive")
	}
	if err != nil {
		errs = append(errs, fmt.Errorf("MAX_BODY_BYTES: %w", err))
	}

	if cfg.MigrateOnStart, err = strconv.ParseBool(getEnv("MIGRATE_ON_START", "true")); err != nil {
		errs = append(errs, fmt.Errorf("MIGRATE_ON_START: %w", err))
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
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
