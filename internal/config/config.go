// Package config reads process settings from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the process configuration. Per-game settings are not here; they
// come from players with each start command.
type Config struct {
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	StatsDriver string `env:"STATS_DRIVER" envDefault:"sqlite"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"./data/wordgames.db"`
	DatabaseURL string `env:"DATABASE_URL"`

	WordsFile     string `env:"WORDS_FILE"`
	MinWordLength int    `env:"MIN_WORD_LENGTH" envDefault:"3"`

	WarmupSeconds      int           `env:"WARMUP_SECONDS" envDefault:"5"`
	RequireOpponent    bool          `env:"REQUIRE_OPPONENT" envDefault:"false"`
	RateLimitPerSecond int           `env:"RATE_LIMIT_PER_SECOND" envDefault:"10"`
	IdleTimeout        time.Duration `env:"IDLE_TIMEOUT" envDefault:"30m"`
}

// Load parses the process environment.
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom parses the given variables instead of the process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.StatsDriver = strings.ToLower(strings.TrimSpace(cfg.StatsDriver))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that have no usable fallback.
func (c Config) Validate() error {
	switch c.StatsDriver {
	case DriverSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown STATS_DRIVER %q, expected %s or %s", c.StatsDriver, DriverSQLite, DriverPostgres)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT %d out of range", c.Port)
	}
	if c.MinWordLength < 1 {
		return fmt.Errorf("MIN_WORD_LENGTH must be positive")
	}
	if c.WarmupSeconds < 1 {
		return fmt.Errorf("WARMUP_SECONDS must be positive")
	}
	if c.RateLimitPerSecond < 1 {
		return fmt.Errorf("RATE_LIMIT_PER_SECOND must be positive")
	}
	return nil
}

// Warmup is the pause before each round.
func (c Config) Warmup() time.Duration {
	return time.Duration(c.WarmupSeconds) * time.Second
}
