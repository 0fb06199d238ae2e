// Package config loads process configuration from the environment.
// A .env file in the working directory is read first when present; real
// environment variables win over it.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"stockwise/internal/core/numerator"
	"stockwise/internal/domain/availability"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config is the full process configuration.
type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Availability AvailabilityConfig
	Reconcile    ReconcileConfig
	Idempotency  IdempotencyConfig
	Numbering    NumberingConfig
	Metrics      MetricsConfig
}

type AppConfig struct {
	Env      string
	Port     string
	LogLevel string
}

// Development reports whether logs should be human-readable.
func (a AppConfig) Development() bool {
	return a.Env == "development"
}

type DatabaseConfig struct {
	Driver           string
	URL              string
	MaxConns         int32
	MinConns         int32
	StatementTimeout time.Duration
}

type AvailabilityConfig struct {
	Mode              availability.Mode
	DamageAutoApprove bool
}

type ReconcileConfig struct {
	Interval time.Duration
	Repair   bool
}

type IdempotencyConfig struct {
	Enabled bool
	TTL     time.Duration
}

// NumberingConfig controls document numbers. Cached trades gap-free numbering for
// fewer sequence row locks.
type NumberingConfig struct {
	Strategy  numerator.Strategy
	RangeSize int64
}

// Options converts the config for the numerator.
func (n NumberingConfig) Options() *numerator.Options {
	return &numerator.Options{Strategy: n.Strategy, RangeSize: n.RangeSize}
}

type MetricsConfig struct {
	Enabled bool
}

// Load reads .env (if any) and the environment, then validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the environment without touching .env.
func FromEnv() (*Config, error) {
	strategy, err := numerator.ParseStrategy(getEnv("NUMBERING_STRATEGY", numerator.StrategyStrict.String()))
	if err != nil {
		return nil, fmt.Errorf("NUMBERING_STRATEGY: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Env:      getEnv("APP_ENV", "development"),
			Port:     getEnv("APP_PORT", "8080"),
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Driver:           strings.ToLower(getEnv("STORE_DRIVER", DriverPostgres)),
			URL:              getEnv("DATABASE_URL", ""),
			MaxConns:         int32(getEnvInt("DB_MAX_CONNS", 25)),
			MinConns:         int32(getEnvInt("DB_MIN_CONNS", 2)),
			StatementTimeout: getEnvDuration("TX_STATEMENT_TIMEOUT", 30*time.Second),
		},
		Availability: AvailabilityConfig{
			Mode:              availability.Mode(strings.ToLower(getEnv("AVAILABILITY_MODE", string(availability.ModeRegister)))),
			DamageAutoApprove: getEnvBool("DAMAGE_AUTO_APPROVE", true),
		},
		Reconcile: ReconcileConfig{
			Interval: getEnvDuration("RECONCILE_INTERVAL", 5*time.Minute),
			Repair:   getEnvBool("RECONCILE_REPAIR", false),
		},
		Idempotency: IdempotencyConfig{
			Enabled: getEnvBool("IDEMPOTENCY_ENABLED", true),
			TTL:     getEnvDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		},
		Numbering: NumberingConfig{
			Strategy:  strategy,
			RangeSize: int64(getEnvInt("NUMBERING_RANGE_SIZE", 50)),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerations and required values.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for STORE_DRIVER=%s", DriverPostgres)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %s or %s, got %q", DriverPostgres, DriverMemory, c.Database.Driver)
	}

	switch c.Availability.Mode {
	case availability.ModeRegister, availability.ModeLedger:
	default:
		return fmt.Errorf("AVAILABILITY_MODE must be %s or %s, got %q",
			availability.ModeRegister, availability.ModeLedger, c.Availability.Mode)
	}

	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.Database.MinConns, c.Database.MaxConns)
	}
	if c.Numbering.RangeSize <= 0 {
		return fmt.Errorf("NUMBERING_RANGE_SIZE must be positive")
	}
	if c.Reconcile.Interval <= 0 {
		return fmt.Errorf("RECONCILE_INTERVAL must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
