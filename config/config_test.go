package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  host: db
  name: booking
auth:
  jwt_secret: secret
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, ":9090", cfg.GRPC.Address)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 9, cfg.Booking.MaxPassengers)
	assert.Equal(t, 3, cfg.Booking.Retries())
	assert.Equal(t, 6*time.Second, cfg.RateLimit.RefillInterval)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_ParsesDurations(t *testing.T) {
	path := writeConfig(t, `
database:
  host: db
  name: booking
auth:
  jwt_secret: secret
rate_limit:
  enabled: true
  capacity: 5
  refill_interval: 2s
  ttl: 1m
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 5, cfg.RateLimit.Capacity)
	assert.Equal(t, 2*time.Second, cfg.RateLimit.RefillInterval)
	assert.Equal(t, time.Minute, cfg.RateLimit.TTL)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := writeConfig(t, `
database:
  host: db
telemetry:
  enabled: true
`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.name is required")
	assert.Contains(t, err.Error(), "auth.jwt_secret is required")
	assert.Contains(t, err.Error(), "telemetry.collector_addr")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "h", Port: 5433, User: "u", Password: "p", Name: "n", SSLMode: "disable", MaxConns: 4}
	assert.Equal(t, "host=h port=5433 user=u password=p dbname=n sslmode=disable pool_max_conns=4", d.DSN())
}

func TestLoadConfig_ZeroTxRetriesKept(t *testing.T) {
	path := writeConfig(t, `
database:
  host: db
  name: booking
auth:
  jwt_secret: secret
booking:
  tx_retries: 0
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.NotNil(t, cfg.Booking.TxRetries)
	assert.Equal(t, 0, cfg.Booking.Retries())
}

func TestLoadConfig_NegativeTxRetriesRejected(t *testing.T) {
	path := writeConfig(t, `
database:
  host: db
  name: booking
auth:
  jwt_secret: secret
booking:
  tx_retries: -1
`)

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
