package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime settings, loaded from environment variables
// with RHCP_-prefixed names.
type Config struct {
	Env   string `env:"RHCP_ENV" envDefault:"dev"`
	Debug bool   `env:"RHCP_DEBUG" envDefault:"false"`

	Host string `env:"RHCP_HOST" envDefault:"0.0.0.0"`
	Port int    `env:"RHCP_PORT" envDefault:"3000"`

	LogLevel  string `env:"RHCP_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"RHCP_LOG_FORMAT" envDefault:"json"`

	// DataDir is the root for knowledge, training and model data.
	DataDir      string `env:"RHCP_DATA_DIR" envDefault:"data"`
	KnowledgeDir string `env:"RHCP_KNOWLEDGE_DIR" envDefault:"data/knowledge"`
	TrainingDir  string `env:"RHCP_TRAINING_DIR" envDefault:"data/training"`

	// ModelPath points at the exported classifier artifact. When the file
	// is absent the serve/chat commands fall back to the corpus classifier.
	ModelPath string `env:"RHCP_MODEL_PATH" envDefault:"data/model.json"`

	// FactsDBPath is the SQLite FTS database backing factual answers.
	FactsDBPath string `env:"RHCP_FACTS_DB_PATH" envDefault:"data/rhcp_fts.sqlite"`

	ConfidenceThreshold float64 `env:"RHCP_CONFIDENCE_THRESHOLD" envDefault:"0.60"`

	MaxSessions    int           `env:"RHCP_MAX_SESSIONS" envDefault:"100"`
	SessionTimeout time.Duration `env:"RHCP_SESSION_TIMEOUT" envDefault:"24h"`

	// SweepCron enables a background session sweep when set to a cron
	// expression (e.g. "*/30 * * * *"). Empty disables the sweeper;
	// eviction then happens lazily on CreateSession at capacity.
	SweepCron string `env:"RHCP_SWEEP_CRON" envDefault:""`

	Discord DiscordConfig
}

// DiscordConfig configures the optional Discord channel.
type DiscordConfig struct {
	Token     string   `env:"RHCP_DISCORD_TOKEN" envDefault:""`
	AllowFrom []string `env:"RHCP_DISCORD_ALLOW_FROM" envSeparator:","`
}

// Load reads settings from the environment and validates them.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration that Load would produce in an
// empty environment. Used by tests and the facts CLI.
func Default() *Config {
	return &Config{
		Env:                 "dev",
		Host:                "0.0.0.0",
		Port:                3000,
		LogLevel:            "info",
		LogFormat:           "json",
		DataDir:             "data",
		KnowledgeDir:        "data/knowledge",
		TrainingDir:         "data/training",
		ModelPath:           "data/model.json",
		FactsDBPath:         "data/rhcp_fts.sqlite",
		ConfidenceThreshold: 0.60,
		MaxSessions:         100,
		SessionTimeout:      24 * time.Hour,
	}
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %q", c.LogFormat)
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence threshold out of range: %f", c.ConfidenceThreshold)
	}
	if c.MaxSessions < 1 {
		return fmt.Errorf("max sessions must be positive: %d", c.MaxSessions)
	}
	if c.SessionTimeout <= 0 {
		return fmt.Errorf("session timeout must be positive: %s", c.SessionTimeout)
	}
	return nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}
