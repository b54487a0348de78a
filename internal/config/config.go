package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all runtime configuration for projectboard.
// Values come from the process environment, optionally seeded from a .env file.
type Config struct {
	BindAddr string `env:"BIND_ADDR" env-default:""`
	Port     string `env:"PORT" env-default:"5000"`
	Env      string `env:"ENVIRONMENT" env-default:"development"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`

	// AllowedOrigins feeds both CORS and the websocket origin check.
	// A single "*" allows every origin.
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:3000,http://localhost:5173"`

	// AutoMigrate applies pending migrations when the server starts.
	AutoMigrate     bool          `env:"AUTO_MIGRATE" env-default:"true"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"10s"`

	Database DatabaseConfig
}

// DatabaseConfig holds connection settings for the backing store.
type DatabaseConfig struct {
	Driver          string        `env:"DATABASE_DRIVER" env-default:"sqlite"`
	URL             string        `env:"DATABASE_URL" env-default:"./data/projects.db3"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"1h"`
}

// Load reads an optional .env file (or the given files) and then the
// environment. A missing .env file is not an error.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	cfg.AllowedOrigins = cleanOrigins(cfg.AllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return errors.New("PORT must not be empty")
	}

	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q: must be %q or %q", c.Database.Driver, DriverSQLite, DriverPostgres)
	}

	if strings.TrimSpace(c.Database.URL) == "" {
		return errors.New("DATABASE_URL must not be empty")
	}

	for _, origin := range c.AllowedOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("invalid origin %q in ALLOWED_ORIGINS: must be \"*\" or start with http:// or https://", origin)
		}
	}

	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.BindAddr, c.Port)
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// AllowsAllOrigins reports whether the origin list is the "*" wildcard.
func (c *Config) AllowsAllOrigins() bool {
	for _, origin := range c.AllowedOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

func cleanOrigins(origins []string) []string {
	cleaned := make([]string, 0, len(origins))
	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
