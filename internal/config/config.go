// Package config loads worldsim settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the runtime settings for a world.
type Config struct {
	// Seed fixes the world; 0 draws a fresh one.
	Seed        int64         `env:"WORLDSIM_SEED"`
	DBPath      string        `env:"WORLDSIM_DB_PATH" envDefault:"data/worldevents.db"`
	Population  int           `env:"WORLDSIM_POPULATION" envDefault:"12"`
	DayInterval time.Duration `env:"WORLDSIM_DAY_INTERVAL" envDefault:"1s"`
	// MaxDays stops the run after this many days; 0 runs until stopped.
	MaxDays     uint64        `env:"WORLDSIM_MAX_DAYS"`
	LogLevel    string        `env:"WORLDSIM_LOG_LEVEL" envDefault:"info"`

	// APIPort 0 disables the HTTP API.
	APIPort     int      `env:"WORLDSIM_API_PORT" envDefault:"8080"`
	AdminKey    string   `env:"WORLDSIM_ADMIN_KEY"`
	CORSOrigins []string `env:"WORLDSIM_CORS_ORIGINS" envSeparator:","`

	RandomOrgKey string `env:"RANDOM_ORG_API_KEY"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses and validates the worldsim configuration.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the simulation cannot run with.
func (c Config) Validate() error {
	if c.Population < 1 {
		return fmt.Errorf("invalid config: WORLDSIM_POPULATION must be positive, got %d", c.Population)
	}
	if c.DayInterval < 0 {
		return fmt.Errorf("invalid config: WORLDSIM_DAY_INTERVAL must not be negative, got %s", c.DayInterval)
	}
	if c.APIPort < 0 || c.APIPort > 65535 {
		return fmt.Errorf("invalid config: WORLDSIM_API_PORT out of range: %d", c.APIPort)
	}
	if c.DBPath == "" {
		return fmt.Errorf("invalid config: WORLDSIM_DB_PATH is required")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// SlogLevel returns the configured log level. Validate has already vetted it.
func (c Config) SlogLevel() slog.Level {
	level, _ := ParseLevel(c.LogLevel)
	return level
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", name, err)
	}
	return level, nil
}
