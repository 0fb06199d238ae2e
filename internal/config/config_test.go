package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockwise/internal/core/numerator"
	"stockwise/internal/domain/availability"
)

var allKeys = []string{
	"APP_ENV", "APP_PORT", "LOG_LEVEL", "STORE_DRIVER", "DATABASE_URL",
	"DB_MAX_CONNS", "DB_MIN_CONNS", "TX_STATEMENT_TIMEOUT", "AVAILABILITY_MODE",
	"DAMAGE_AUTO_APPROVE", "RECONCILE_INTERVAL", "RECONCILE_REPAIR",
	"IDEMPOTENCY_ENABLED", "IDEMPOTENCY_TTL", "METRICS_ENABLED",
	"NUMBERING_STRATEGY", "NUMBERING_RANGE_SIZE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.True(t, cfg.App.Development())
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, 30*time.Second, cfg.Database.StatementTimeout)
	assert.Equal(t, availability.ModeRegister, cfg.Availability.Mode)
	assert.True(t, cfg.Availability.DamageAutoApprove)
	assert.Equal(t, 5*time.Minute, cfg.Reconcile.Interval)
	assert.False(t, cfg.Reconcile.Repair)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, numerator.StrategyStrict, cfg.Numbering.Strategy)
	assert.EqualValues(t, 50, cfg.Numbering.RangeSize)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/stockwise")
	t.Setenv("AVAILABILITY_MODE", "LEDGER")
	t.Setenv("DAMAGE_AUTO_APPROVE", "false")
	t.Setenv("RECONCILE_INTERVAL", "30s")
	t.Setenv("RECONCILE_REPAIR", "true")
	t.Setenv("DB_MAX_CONNS", "10")
	t.Setenv("DB_MIN_CONNS", "not-a-number")
	t.Setenv("NUMBERING_STRATEGY", "cached")
	t.Setenv("NUMBERING_RANGE_SIZE", "200")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, availability.ModeLedger, cfg.Availability.Mode)
	assert.False(t, cfg.Availability.DamageAutoApprove)
	assert.Equal(t, 30*time.Second, cfg.Reconcile.Interval)
	assert.True(t, cfg.Reconcile.Repair)
	assert.Equal(t, int32(10), cfg.Database.MaxConns)
	assert.Equal(t, int32(2), cfg.Database.MinConns)

	opts := cfg.Numbering.Options()
	assert.Equal(t, numerator.StrategyCached, opts.Strategy)
	assert.EqualValues(t, 200, opts.RangeSize)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"postgres without url", map[string]string{"STORE_DRIVER": "postgres"}},
		{"unknown driver", map[string]string{"STORE_DRIVER": "redis"}},
		{"unknown mode", map[string]string{"STORE_DRIVER": "memory", "AVAILABILITY_MODE": "hybrid"}},
		{"unknown numbering", map[string]string{"STORE_DRIVER": "memory", "NUMBERING_STRATEGY": "random"}},
		{"zero range", map[string]string{"STORE_DRIVER": "memory", "NUMBERING_RANGE_SIZE": "0"}},
		{"min over max", map[string]string{"STORE_DRIVER": "memory", "DB_MAX_CONNS": "2", "DB_MIN_CONNS": "5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	// godotenv does not override variables that are already set, even to "".
	for _, k := range allKeys {
		require.NoError(t, os.Unsetenv(k))
	}

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("STORE_DRIVER=memory\nAPP_PORT=9090\n"), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
}
