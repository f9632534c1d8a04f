// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
)

// MaxActionDelay is the hard upper bound for the delay action.
const MaxActionDelay = 30 * time.Second

// Config holds all configuration values for the application.
type Config struct {
	DatabaseURL   string
	APIPort       string `default:"8080"`
	RunMigrations bool

	Log LogConfig

	// Comma separated list for CORS
	AllowedOrigins []string

	Worker WorkerConfig

	// HMAC secret used to verify service-role JWTs on the trigger endpoint.
	// Empty disables authentication.
	TriggerJWTSecret string
	// Requests per second accepted by the trigger endpoint, 0 = unlimited.
	TriggerRateLimit float64 `default:"0"`

	HTTPClientTimeout time.Duration `default:"15s"`
}

// LogConfig configures internal/logger.
type LogConfig struct {
	Env   string `default:"development"`
	Level string `default:"info"`
	File  string
}

// WorkerConfig configures the batch drain loop.
type WorkerConfig struct {
	BatchSize   int `default:"10"`
	MaxRetries  int `default:"3"`
	Concurrency int `default:"4"`
	// Cron spec for in-process scheduling, e.g. "@every 1m". Empty disables it.
	Schedule     string
	ReclaimAfter time.Duration `default:"10m"`
	MaxDelay     time.Duration `default:"30s"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("could not apply config defaults: %w", err)
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if port := os.Getenv("API_PORT"); port != "" {
		cfg.APIPort = port
	}
	cfg.RunMigrations = strings.EqualFold(os.Getenv("RUN_MIGRATIONS"), "true")

	if env := os.Getenv("ENV"); env != "" {
		cfg.Log.Env = strings.ToLower(env)
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Log.Level = strings.ToLower(level)
	}
	cfg.Log.File = os.Getenv("LOG_FILE")

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	var err error
	if cfg.Worker.BatchSize, err = envInt("WORKER_BATCH_SIZE", cfg.Worker.BatchSize); err != nil {
		return nil, err
	}
	if cfg.Worker.MaxRetries, err = envInt("WORKER_MAX_RETRIES", cfg.Worker.MaxRetries); err != nil {
		return nil, err
	}
	if cfg.Worker.Concurrency, err = envInt("WORKER_CONCURRENCY", cfg.Worker.Concurrency); err != nil {
		return nil, err
	}
	cfg.Worker.Schedule = strings.TrimSpace(os.Getenv("WORKER_SCHEDULE"))
	if cfg.Worker.ReclaimAfter, err = envDuration("WORKER_RECLAIM_AFTER", cfg.Worker.ReclaimAfter); err != nil {
		return nil, err
	}
	if cfg.Worker.MaxDelay, err = envDuration("ACTION_MAX_DELAY", cfg.Worker.MaxDelay); err != nil {
		return nil, err
	}
	if cfg.HTTPClientTimeout, err = envDuration("HTTP_CLIENT_TIMEOUT", cfg.HTTPClientTimeout); err != nil {
		return nil, err
	}

	cfg.TriggerJWTSecret = os.Getenv("TRIGGER_JWT_SECRET")
	if v := os.Getenv("TRIGGER_RATE_LIMIT"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TRIGGER_RATE_LIMIT: %w", err)
		}
		cfg.TriggerRateLimit = rps
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and clamps the action delay.
func (c *Config) Validate() error {
	if c.Worker.BatchSize < 1 {
		return fmt.Errorf("WORKER_BATCH_SIZE must be positive, got %d", c.Worker.BatchSize)
	}
	if c.Worker.MaxRetries < 1 {
		return fmt.Errorf("WORKER_MAX_RETRIES must be positive, got %d", c.Worker.MaxRetries)
	}
	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("WORKER_CONCURRENCY must be positive, got %d", c.Worker.Concurrency)
	}
	if c.TriggerRateLimit < 0 {
		return fmt.Errorf("TRIGGER_RATE_LIMIT must not be negative")
	}
	if c.Worker.MaxDelay <= 0 || c.Worker.MaxDelay > MaxActionDelay {
		c.Worker.MaxDelay = MaxActionDelay
	}
	return nil
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
