package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/borsalabs/borsafeed/pkg/types"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// Upstream HTTP client
	UpstreamTimeout     time.Duration
	UpstreamRetries     int
	UpstreamRatePerSec  float64
	UpstreamRateBurst   int
	BreakerFailures     int
	BreakerCooldown     time.Duration

	// Request-level cache
	CacheMaxEntries int

	// Per-data-class TTLs
	QuoteTTL time.Duration // spot FX/metal quotes
	ListTTL  time.Duration // company lists, index constituents, search
	BondTTL  time.Duration // eurobond lists, financials, rate history

	// Fund freshness window (TEFAS batch publication schedule)
	MarketTimezone   string
	FundHotStartHour int
	FundHotEndHour   int // inclusive
	FundHotTTL       time.Duration
	FundColdTTL      time.Duration

	// Snapshot storage
	StorageMode  string // "postgres" or "console"
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		// Application defaults
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),

		// Upstream client defaults. The sources are fragile public sites;
		// the limiter keeps scrapes polite even under request bursts.
		UpstreamTimeout:    getDurationOrDefault("UPSTREAM_TIMEOUT", 30*time.Second),
		UpstreamRetries:    getIntOrDefault("UPSTREAM_RETRIES", 3),
		UpstreamRatePerSec: getFloat64OrDefault("UPSTREAM_RATE_PER_SEC", 2.0),
		UpstreamRateBurst:  getIntOrDefault("UPSTREAM_RATE_BURST", 4),
		BreakerFailures:    getIntOrDefault("BREAKER_FAILURES", 5),
		BreakerCooldown:    getDurationOrDefault("BREAKER_COOLDOWN", time.Minute),

		// Cache defaults
		CacheMaxEntries: getIntOrDefault("CACHE_MAX_ENTRIES", 1000),

		// Data-class TTL defaults
		QuoteTTL: getDurationOrDefault("QUOTE_TTL", 60*time.Second),
		ListTTL:  getDurationOrDefault("LIST_TTL", time.Hour),
		BondTTL:  getDurationOrDefault("BOND_TTL", 4*time.Hour),

		// Fund window defaults: TEFAS publishes weekday late mornings.
		// End hour is inclusive (hot through 14:59 local).
		MarketTimezone:   getEnvOrDefault("MARKET_TIMEZONE", "Europe/Istanbul"),
		FundHotStartHour: getIntOrDefault("FUND_HOT_START_HOUR", 10),
		FundHotEndHour:   getIntOrDefault("FUND_HOT_END_HOUR", 14),
		FundHotTTL:       getDurationOrDefault("FUND_HOT_TTL", 15*time.Minute),
		FundColdTTL:      getDurationOrDefault("FUND_COLD_TTL", 4*time.Hour),

		// Storage defaults
		StorageMode:  getEnvOrDefault("STORAGE_MODE", "console"),
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "borsafeed"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", "borsafeed"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "borsafeed"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid. Violations are
// ConfigurationErrors and fatal at startup.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return &types.ConfigurationError{Field: "HTTP_PORT", Message: "cannot be empty"}
	}

	if c.CacheMaxEntries <= 0 {
		return &types.ConfigurationError{Field: "CACHE_MAX_ENTRIES", Message: "must be positive"}
	}

	if c.QuoteTTL <= 0 || c.ListTTL <= 0 || c.BondTTL <= 0 {
		return &types.ConfigurationError{Field: "TTL", Message: "data-class TTLs must be positive"}
	}

	if c.FundHotStartHour < 0 || c.FundHotStartHour > 23 {
		return &types.ConfigurationError{
			Field:   "FUND_HOT_START_HOUR",
			Message: fmt.Sprintf("hour %d out of range [0,23]", c.FundHotStartHour),
		}
	}

	if c.FundHotEndHour < 0 || c.FundHotEndHour > 23 {
		return &types.ConfigurationError{
			Field:   "FUND_HOT_END_HOUR",
			Message: fmt.Sprintf("hour %d out of range [0,23]", c.FundHotEndHour),
		}
	}

	if c.FundHotStartHour > c.FundHotEndHour {
		return &types.ConfigurationError{
			Field:   "FUND_HOT_START_HOUR",
			Message: fmt.Sprintf("start %d after end %d", c.FundHotStartHour, c.FundHotEndHour),
		}
	}

	if _, err := time.LoadLocation(c.MarketTimezone); err != nil {
		return &types.ConfigurationError{
			Field:   "MARKET_TIMEZONE",
			Message: fmt.Sprintf("unknown timezone %q", c.MarketTimezone),
		}
	}

	if c.StorageMode != "postgres" && c.StorageMode != "console" {
		return &types.ConfigurationError{
			Field:   "STORAGE_MODE",
			Message: fmt.Sprintf("must be 'postgres' or 'console', got %q", c.StorageMode),
		}
	}

	return nil
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}
