package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terraskye/eventsourcing-pm/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shipment.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
http_addr = ":9000"
log_format = "json"

[store]
driver = "sqlite"
dsn = "/tmp/events.db"

[collection]
max_days_ahead = 3
book_delay = "1s"
`), 0o600))

	t.Setenv("SHIPMENT_HTTP_ADDR", ":9100")
	t.Setenv("SHIPMENT_BUS_MAX_RETRIES", "2")
	t.Setenv("SHIPMENT_CARRIER_RESPONSE_DELAY", "10ms")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.HTTPAddr)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "/tmp/events.db", cfg.Store.DSN)
	assert.Equal(t, 3, cfg.Collection.MaxDaysAhead)
	assert.Equal(t, time.Second, cfg.Collection.BookDelay)
	assert.Equal(t, 200*time.Millisecond, cfg.Collection.ScheduleDelay)
	assert.Equal(t, 2, cfg.Bus.MaxRetries)
	assert.Equal(t, 10*time.Millisecond, cfg.Carrier.ResponseDelay)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *config.Config)
	}{
		{"unknown driver", func(c *config.Config) { c.Store.Driver = "redis" }},
		{"missing dsn", func(c *config.Config) { c.Store.Driver = "postgres" }},
		{"bad level", func(c *config.Config) { c.LogLevel = "loud" }},
		{"bad format", func(c *config.Config) { c.LogFormat = "xml" }},
		{"no scheduling window", func(c *config.Config) { c.Collection.MaxDaysAhead = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLogger(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "debug"
	cfg.LogFormat = "json"

	log := cfg.Logger()
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)
}
