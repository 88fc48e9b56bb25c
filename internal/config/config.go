package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"

	"github.com/PIS-2020-2021/PIS/internal/localstate"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the lize CLI.
// Environment variables are parsed from the LIZE_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string      `envconfig:"LOG_LEVEL" default:"info"`

	// Storage
	DBDriver    string `envconfig:"DB_DRIVER" default:"sqlite"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:""`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// Session
	UserID         string        `envconfig:"USER_ID" default:"local_user"`
	HydrateTimeout time.Duration `envconfig:"HYDRATE_TIMEOUT" default:"10s"`

	// Persistence dispatcher
	Shards       int           `envconfig:"SHARDS" default:"4"`
	QueueSize    int           `envconfig:"QUEUE_SIZE" default:"128"`
	MaxAttempts  int           `envconfig:"MAX_ATTEMPTS" default:"5"`
	DrainTimeout time.Duration `envconfig:"DRAIN_TIMEOUT" default:"15s"`
}

// ResolveDefaults validates DBDriver and derives the SQLite path when unset.
func (c *Config) ResolveDefaults() error {
	switch c.DBDriver {
	case "", "sqlite":
		c.DBDriver = "sqlite"
		if c.SQLitePath == "" {
			p, err := localstate.DBPath()
			if err != nil {
				return fmt.Errorf("derive sqlite path: %w", err)
			}
			c.SQLitePath = p
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("DB_DRIVER=postgres requires POSTGRES_DSN")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if c.UserID == "" {
		return fmt.Errorf("USER_ID must not be empty")
	}
	if c.HydrateTimeout <= 0 {
		return fmt.Errorf("HYDRATE_TIMEOUT must be positive, got %s", c.HydrateTimeout)
	}
	return nil
}

// New loads an optional .env file from the working directory, then parses
// LIZE_ environment variables. Variables already set win over the file.
// Example: LIZE_DB_DRIVER, LIZE_HYDRATE_TIMEOUT
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("LIZE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Debug().
		Str("db_driver", cfg.DBDriver).
		Str("environment", string(cfg.Environment)).
		Str("sqlite_path", cfg.SQLitePath).
		Bool("postgres_dsn_present", cfg.PostgresDSN != "").
		Str("user_id", cfg.UserID).
		Dur("hydrate_timeout", cfg.HydrateTimeout).
		Int("shards", cfg.Shards).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	return &Config{
		Environment:    EnvTesting,
		LogLevel:       "debug",
		DBDriver:       "sqlite",
		UserID:         "test_user",
		HydrateTimeout: 2 * time.Second,
		Shards:         2,
		QueueSize:      32,
		MaxAttempts:    2,
		DrainTimeout:   2 * time.Second,
	}
}
