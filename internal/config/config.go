package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type AppConfig struct {
	Port       string        `envconfig:"APP_PORT" default:"8080"`
	CartDBPath string        `envconfig:"CART_DB_PATH" default:"carts.db"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"24h"`

	CatalogRefreshInterval time.Duration `envconfig:"CATALOG_REFRESH_INTERVAL" default:"5m"`
}

type PostgresConfig struct {
	Host            string        `envconfig:"DB_HOST" required:"true"`
	Port            string        `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER" required:"true"`
	Password        string        `envconfig:"DB_PASSWORD" required:"true"`
	DBName          string        `envconfig:"DB_NAME" required:"true"`
	SSLMode         string        `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns        int32         `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns        int32         `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
}

type NotifyConfig struct {
	Endpoint string        `envconfig:"NOTIFY_ENDPOINT"`
	Timeout  time.Duration `envconfig:"NOTIFY_TIMEOUT" default:"10s"`
}

type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Notify   NotifyConfig
}

// Load reads an optional .env file, then populates the config from the
// environment. A missing .env is fine; one that exists but cannot be parsed
// is not.
func Load(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: failed to load %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("config: failed to process environment: %w", err)
	}

	return cfg, nil
}
