// Package config loads application configuration from a YAML file with
// environment variable overrides for secrets and deploy-specific
// values.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wanderlust-app/wanderlust/pkg/db"
	"github.com/wanderlust-app/wanderlust/pkg/logger"
	"github.com/wanderlust-app/wanderlust/pkg/mailer"
	"github.com/wanderlust-app/wanderlust/pkg/storage"
)

// ErrInvalidConfig reports a config file that parsed but cannot run.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the full application configuration.
type Config struct {
	HTTP     HTTP                `yaml:"http"`
	Log      Log                 `yaml:"log"`
	Database db.Config           `yaml:"database"`
	Redis    Redis               `yaml:"redis"`
	Cookie   Cookie              `yaml:"cookie"`
	Session  Session             `yaml:"session"`
	Storage  storage.Config      `yaml:"storage"`
	Mailer   mailer.ResendConfig `yaml:"mailer"`
	Sentry   logger.SentryConfig `yaml:"sentry"`
}

type HTTP struct {
	Address string `yaml:"address"`
}

type Log struct {
	Level string `yaml:"level"`
}

type Redis struct {
	URL          string `yaml:"url"`
	PoolSize     int    `yaml:"pool_size"`
	MinIdleConns int    `yaml:"min_idle_conns"`
}

type Cookie struct {
	Secret string `yaml:"secret"`
	Secure bool   `yaml:"secure"`
}

type Session struct {
	// MaxAge is the session lifetime in seconds.
	MaxAge int `yaml:"max_age"`

	// CleanupSchedule is a cron expression for the expired-session
	// purge job.
	CleanupSchedule string `yaml:"cleanup_schedule"`
}

// Load reads the config file at path, applies environment overrides,
// and validates the result. An empty path loads from environment only.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv lets deploy environments override secrets and endpoints
// without touching the config file.
func (c *Config) applyEnv() {
	setIfPresent(&c.HTTP.Address, "ADDRESS")
	setIfPresent(&c.Log.Level, "LOG_LEVEL")
	setIfPresent(&c.Database.ConnectionString, "DATABASE_URL")
	setIfPresent(&c.Redis.URL, "REDIS_URL")
	setIfPresent(&c.Cookie.Secret, "COOKIE_SECRET")
	setIfPresent(&c.Sentry.DSN, "SENTRY_DSN")
	setIfPresent(&c.Sentry.Environment, "SENTRY_ENVIRONMENT")
	setIfPresent(&c.Mailer.APIKey, "RESEND_API_KEY")
	setIfPresent(&c.Mailer.SenderEmail, "MAIL_SENDER_EMAIL")
	setIfPresent(&c.Storage.Bucket, "S3_BUCKET")
	setIfPresent(&c.Storage.AccessKey, "S3_ACCESS_KEY")
	setIfPresent(&c.Storage.SecretKey, "S3_SECRET_KEY")
	setIfPresent(&c.Storage.Endpoint, "S3_ENDPOINT")
	setIfPresent(&c.Storage.Region, "S3_REGION")
	setIfPresent(&c.Storage.PublicURL, "S3_PUBLIC_URL")
}

func setIfPresent(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Session.MaxAge <= 0 {
		c.Session.MaxAge = 7 * 24 * 60 * 60
	}
	if c.Session.CleanupSchedule == "" {
		c.Session.CleanupSchedule = "@hourly"
	}
}

func (c *Config) validate() error {
	if c.Database.ConnectionString == "" {
		return fmt.Errorf("%w: database connection string is required", ErrInvalidConfig)
	}
	if len(c.Cookie.Secret) < 32 {
		return fmt.Errorf("%w: cookie secret must be at least 32 bytes", ErrInvalidConfig)
	}
	return nil
}

// LogLevel maps the configured level name to slog.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
