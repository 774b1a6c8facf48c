package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TIMEZONE", "UTC")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Empty(t, cfg.Storage.SQLitePath)
	assert.Equal(t, "5 0 * * *", cfg.Scheduler.ReconcileSchedule)
	assert.Equal(t, 10*time.Second, cfg.Webhook.Timeout)
	assert.False(t, cfg.Sheets.Enabled())
	assert.False(t, cfg.Webhook.Enabled())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestLoadFromEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "APP_PORT=9090\nSTORAGE_DRIVER=memory\nTIMEZONE=UTC\nNOTIFY_WEBHOOK_URL=http://hooks.local/herdsync\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Cleanup(func() {
		for _, key := range []string{"APP_PORT", "STORAGE_DRIVER", "TIMEZONE", "NOTIFY_WEBHOOK_URL"} {
			os.Unsetenv(key)
		}
	})

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.True(t, cfg.Webhook.Enabled())
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server:    ServerConfig{Port: "8080"},
			Storage:   StorageConfig{Driver: DriverSQLite, SQLitePath: "herdsync.db"},
			Scheduler: SchedulerConfig{ReconcileSchedule: "5 0 * * *", ReportSchedule: "0 21 * * *", Timezone: "UTC"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"valid", func(*Config) {}, ""},
		{"sqlite default path", func(c *Config) { c.Storage.SQLitePath = "" }, ""},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "postgres" }, "unsupported STORAGE_DRIVER"},
		{"mongo without uri", func(c *Config) { c.Storage.Driver = DriverMongoDB; c.MongoDB.DBName = "herdsync" }, "MONGODB_URI"},
		{"bad timezone", func(c *Config) { c.Scheduler.Timezone = "Mars/Olympus" }, "invalid TIMEZONE"},
		{"half sheets config", func(c *Config) { c.Sheets.SpreadsheetID = "sheet" }, "must be provided together"},
		{"bad report schedule", func(c *Config) { c.Scheduler.ReportSchedule = "at nine" }, "REPORT_CRON_SCHEDULE"},
		{"empty reconcile schedule", func(c *Config) { c.Scheduler.ReconcileSchedule = "" }, "RECONCILE_CRON_SCHEDULE"},
		{"empty port", func(c *Config) { c.Server.Port = "" }, "APP_PORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
