package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	GinMode string `env:"GIN_MODE" envDefault:"debug"`

	DBDriver       string        `env:"DB_DRIVER" envDefault:"postgres"`
	DBHost         string        `env:"DB_HOST" envDefault:"localhost"`
	DBPort         string        `env:"DB_PORT" envDefault:"5432"`
	DBUser         string        `env:"DB_USER" envDefault:"teamhub"`
	DBPassword     string        `env:"DB_PASSWORD" envDefault:"teamhub"`
	DBName         string        `env:"DB_NAME" envDefault:"teamhub"`
	DBMaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	DBConnTimeout  time.Duration `env:"DB_CONN_TIMEOUT" envDefault:"5s"`
	DBConnMaxIdle  time.Duration `env:"DB_CONN_MAX_IDLE" envDefault:"5m"`

	AccessTokenSecret  string        `env:"JWT_ACCESS_SECRET" envDefault:"dev-access-secret-change-me"`
	RefreshTokenSecret string        `env:"JWT_REFRESH_SECRET" envDefault:"dev-refresh-secret-change-me"`
	AccessTokenTTL     time.Duration `env:"JWT_ACCESS_TTL" envDefault:"15m"`
	RefreshTokenTTL    time.Duration `env:"JWT_REFRESH_TTL" envDefault:"168h"`

	// RedisAddr enables the realtime broadcaster when set. Empty disables it.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

// Load parses configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
