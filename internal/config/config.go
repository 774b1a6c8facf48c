package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	DriverSQLite  = "sqlite"
	DriverMongoDB = "mongodb"
	DriverMemory  = "memory"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	MongoDB   MongoDBConfig
	Scheduler SchedulerConfig
	Sheets    SheetsConfig
	Webhook   WebhookConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string `env:"APP_PORT" envDefault:"8080"`
}

// StorageConfig chooses the persistence backend.
type StorageConfig struct {
	Driver     string `env:"STORAGE_DRIVER" envDefault:"sqlite"`
	SQLitePath string `env:"SQLITE_PATH"`
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string `env:"MONGODB_URI"`
	DBName string `env:"MONGODB_DB_NAME" envDefault:"herdsync"`
}

// SchedulerConfig holds cron settings and the calendar used for day boundaries.
type SchedulerConfig struct {
	ReconcileSchedule string `env:"RECONCILE_CRON_SCHEDULE" envDefault:"5 0 * * *"`
	ReportSchedule    string `env:"REPORT_CRON_SCHEDULE" envDefault:"0 21 * * *"`
	Timezone          string `env:"TIMEZONE" envDefault:"Local"`
}

// SheetsConfig contains configuration required to export reports to Google Sheets.
type SheetsConfig struct {
	CredentialsPath string `env:"GOOGLE_SHEETS_CREDENTIALS_PATH"`
	SpreadsheetID   string `env:"GOOGLE_SHEET_DATABASE_ID"`
	Range           string `env:"GOOGLE_SHEET_RANGE" envDefault:"Statistics!A:G"`
}

// Enabled reports whether the export is configured.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" && c.SpreadsheetID != ""
}

// WebhookConfig configures the outbound event webhook.
type WebhookConfig struct {
	URL     string        `env:"NOTIFY_WEBHOOK_URL"`
	Token   string        `env:"NOTIFY_WEBHOOK_TOKEN"`
	Timeout time.Duration `env:"NOTIFY_WEBHOOK_TIMEOUT" envDefault:"10s"`
}

// Enabled reports whether the webhook is configured.
func (c WebhookConfig) Enabled() bool {
	return c.URL != ""
}

// LogConfig holds logger options.
type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Storage.Driver {
	case DriverSQLite:
	case DriverMongoDB:
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI must be provided")
		}
		if c.MongoDB.DBName == "" {
			return errors.New("MONGODB_DB_NAME must not be empty")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}

	if _, err := cron.ParseStandard(c.Scheduler.ReconcileSchedule); err != nil {
		return fmt.Errorf("invalid RECONCILE_CRON_SCHEDULE: %w", err)
	}

	if _, err := cron.ParseStandard(c.Scheduler.ReportSchedule); err != nil {
		return fmt.Errorf("invalid REPORT_CRON_SCHEDULE: %w", err)
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be provided together")
	}

	if c.Webhook.Enabled() && c.Webhook.Timeout <= 0 {
		return errors.New("NOTIFY_WEBHOOK_TIMEOUT must be positive")
	}

	return nil
}

// Location resolves TIMEZONE, the calendar used to truncate dates to days.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Scheduler.Timezone, err)
	}
	return loc, nil
}
