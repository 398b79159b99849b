package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime configuration for the live auction server.
type Config struct {
	Port              int           `env:"PORT" envDefault:"8080"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`
	DefaultBidWindow  time.Duration `env:"DEFAULT_BID_WINDOW" envDefault:"60s"`
	AutoClose         bool          `env:"AUTO_CLOSE" envDefault:"false"`
	AutoCloseInterval time.Duration `env:"AUTO_CLOSE_INTERVAL" envDefault:"1s"`
	WebhookTimeout    time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"5s"`
	QueuePeekLimit    int           `env:"QUEUE_PEEK_LIMIT" envDefault:"10"`
	ReadTimeout       time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout      time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	IdleTimeout       time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads configuration from environment variables, applies defaults,
// and validates values. It returns an error for any invalid value.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT: %d, must be in 1..65535", c.Port)
	}
	if !isValidLogLevel(c.LogLevel) {
		return fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", c.LogLevel)
	}
	if c.DefaultBidWindow <= 0 {
		return fmt.Errorf("invalid DEFAULT_BID_WINDOW: %v, must be > 0", c.DefaultBidWindow)
	}
	if c.AutoCloseInterval <= 0 {
		return fmt.Errorf("invalid AUTO_CLOSE_INTERVAL: %v, must be > 0", c.AutoCloseInterval)
	}
	if c.QueuePeekLimit <= 0 {
		return fmt.Errorf("invalid QUEUE_PEEK_LIMIT: %d, must be > 0", c.QueuePeekLimit)
	}
	return nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
