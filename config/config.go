package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// maxResultLimit is the CloudWatch Logs Insights cap on rows per query
const maxResultLimit = 10_000

// Config holds the application configuration
type Config struct {
	// Server
	ServerPort     string        `env:"SERVER_PORT" envDefault:"8080"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"29s"` // API gateway integration limit

	// AWS
	AWSRegion      string `env:"AWS_REGION" envDefault:"us-east-1"`
	EngineLogGroup string `env:"ENGINE_LOG_GROUP,notEmpty"`

	// Log queries
	QueryWindow       time.Duration `env:"QUERY_WINDOW" envDefault:"10m"`
	QueryResultLimit  int32         `env:"QUERY_RESULT_LIMIT" envDefault:"10000"`
	QueryPollInterval time.Duration `env:"QUERY_POLL_INTERVAL" envDefault:"1s"`

	// Workflow engine
	EngineProfileFile string `env:"ENGINE_PROFILE_FILE"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load loads configuration from the environment, reading a .env file first if present
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.WithError(err).Warn("Error loading .env file")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the query executor cannot honour
func (c *Config) Validate() error {
	var errs []error

	if c.QueryWindow < time.Second {
		errs = append(errs, fmt.Errorf("QUERY_WINDOW must be at least 1s, got %s", c.QueryWindow))
	}
	if c.QueryResultLimit <= 0 || c.QueryResultLimit > maxResultLimit {
		errs = append(errs, fmt.Errorf("QUERY_RESULT_LIMIT must be in 1..%d, got %d", maxResultLimit, c.QueryResultLimit))
	}
	if c.QueryPollInterval <= 0 {
		errs = append(errs, fmt.Errorf("QUERY_POLL_INTERVAL must be positive, got %s", c.QueryPollInterval))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}

	return errors.Join(errs...)
}

// QueryWindowSeconds returns the query window size in whole seconds
func (c *Config) QueryWindowSeconds() int64 {
	return int64(c.QueryWindow / time.Second)
}

// NewLogger builds the process logger from the logging settings
func (c *Config) NewLogger() *log.Logger {
	logger := log.New()

	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	logger.SetLevel(level)

	if c.LogFormat == "json" {
		logger.SetFormatter(&log.JSONFormatter{})
	} else {
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	return logger
}
