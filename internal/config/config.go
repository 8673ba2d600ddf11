package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// Best-time backends selectable with BEST_TIME_STORE.
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

type Config struct {
	HTTPAddr      string        `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel      slog.Level    `env:"LOG_LEVEL" envDefault:"INFO"`
	BestTimeStore string        `env:"BEST_TIME_STORE" envDefault:"sqlite"`
	DBPath        string        `env:"DB_PATH" envDefault:"data/campusquiz.db"`
	RedisURL      string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	TickInterval  time.Duration `env:"TICK_INTERVAL" envDefault:"250ms"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"1h"`
	SPADir        string        `env:"SPA_DIR" envDefault:"../web/dist"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.BestTimeStore {
	case StoreSQLite, StoreRedis, StoreMemory:
	default:
		return fmt.Errorf("invalid BEST_TIME_STORE %q (want sqlite, redis or memory)", c.BestTimeStore)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("TICK_INTERVAL must be positive, got %s", c.TickInterval)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	return nil
}
