package config

import (
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENGINE_LOG_GROUP", "/aws/batch/job")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 29*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "/aws/batch/job", cfg.EngineLogGroup)
	assert.Equal(t, 10*time.Minute, cfg.QueryWindow)
	assert.Equal(t, int64(600), cfg.QueryWindowSeconds())
	assert.Equal(t, int32(10_000), cfg.QueryResultLimit)
	assert.Equal(t, time.Second, cfg.QueryPollInterval)
	assert.Empty(t, cfg.EngineProfileFile)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENGINE_LOG_GROUP", "/aws/batch/job")
	t.Setenv("QUERY_WINDOW", "5m")
	t.Setenv("QUERY_RESULT_LIMIT", "500")
	t.Setenv("QUERY_POLL_INTERVAL", "250ms")
	t.Setenv("AWS_REGION", "eu-west-1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(300), cfg.QueryWindowSeconds())
	assert.Equal(t, int32(500), cfg.QueryResultLimit)
	assert.Equal(t, 250*time.Millisecond, cfg.QueryPollInterval)
	assert.Equal(t, "eu-west-1", cfg.AWSRegion)
}

func TestLoad_MissingLogGroup(t *testing.T) {
	t.Setenv("ENGINE_LOG_GROUP", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ENGINE_LOG_GROUP")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			RequestTimeout:    29 * time.Second,
			EngineLogGroup:    "/aws/batch/job",
			QueryWindow:       10 * time.Minute,
			QueryResultLimit:  10_000,
			QueryPollInterval: time.Second,
			LogLevel:          "info",
			LogFormat:         "text",
		}
	}

	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectedErr string
	}{
		{"sub-second window", func(c *Config) { c.QueryWindow = 500 * time.Millisecond }, "QUERY_WINDOW"},
		{"limit above cap", func(c *Config) { c.QueryResultLimit = 20_000 }, "QUERY_RESULT_LIMIT"},
		{"zero limit", func(c *Config) { c.QueryResultLimit = 0 }, "QUERY_RESULT_LIMIT"},
		{"zero poll interval", func(c *Config) { c.QueryPollInterval = 0 }, "QUERY_POLL_INTERVAL"},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }, "REQUEST_TIMEOUT"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "LOG_LEVEL"},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, "LOG_FORMAT"},
	}

	base := valid()
	require.NoError(t, base.Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedErr)
		})
	}
}

func TestNewLogger(t *testing.T) {
	cfg := Config{LogLevel: "debug", LogFormat: "json"}

	logger := cfg.NewLogger()
	assert.Equal(t, log.DebugLevel, logger.GetLevel())
	assert.IsType(t, &log.JSONFormatter{}, logger.Formatter)
}
