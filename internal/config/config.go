// Package config loads process configuration from the environment.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environments.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds all configuration for the application.
type Config struct {
	Env                string
	Port               string
	DBDriver           string
	DatabaseURL        string
	LogLevel           string
	CSRFKey            []byte
	SlowQuery          time.Duration
	SlowRequest        time.Duration
	RateLimitPerSecond int
}

// IsProduction reports whether the service runs with production settings.
func (c Config) IsProduction() bool { return c.Env == EnvProduction }

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string { return ":" + c.Port }

// Load reads .env (if present) and then the environment.
// PRE: none
// POST: returns a complete Config or the first invalid value
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an arbitrary variable source.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	cfg := Config{
		Env:         strings.ToLower(get("APP_ENV", EnvDevelopment)),
		Port:        get("PORT", "8080"),
		DBDriver:    strings.ToLower(get("DB_DRIVER", "sqlite")),
		DatabaseURL: get("DATABASE_URL", "rollcall.db"),
		LogLevel:    get("LOG_LEVEL", "info"),
	}

	switch cfg.Env {
	case EnvDevelopment, EnvProduction:
	default:
		return Config{}, fmt.Errorf("APP_ENV must be %s or %s, got %q", EnvDevelopment, EnvProduction, cfg.Env)
	}
	switch cfg.DBDriver {
	case "sqlite", "postgres":
	default:
		return Config{}, fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", cfg.DBDriver)
	}
	if port, err := strconv.Atoi(cfg.Port); err != nil || port <= 0 || port > 65535 {
		return Config{}, fmt.Errorf("PORT must be a TCP port, got %q", cfg.Port)
	}

	var err error
	if cfg.SlowQuery, err = positiveMillis(get("SLOW_QUERY_MS", "50"), "SLOW_QUERY_MS"); err != nil {
		return Config{}, err
	}
	if cfg.SlowRequest, err = positiveMillis(get("SLOW_REQUEST_MS", "200"), "SLOW_REQUEST_MS"); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitPerSecond, err = positiveInt(get("RATE_LIMIT_PER_SECOND", "20"), "RATE_LIMIT_PER_SECOND"); err != nil {
		return Config{}, err
	}

	key := get("CSRF_KEY", "")
	switch {
	case key != "":
		if cfg.CSRFKey, err = decodeKey(key); err != nil {
			return Config{}, err
		}
	case cfg.IsProduction():
		return Config{}, fmt.Errorf("CSRF_KEY is required in %s", EnvProduction)
	default:
		cfg.CSRFKey = make([]byte, 32)
		if _, err := rand.Read(cfg.CSRFKey); err != nil {
			return Config{}, fmt.Errorf("failed to generate CSRF key: %w", err)
		}
	}

	return cfg, nil
}

func decodeKey(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != 32 {
		return nil, fmt.Errorf("CSRF_KEY must be 64 hex characters")
	}
	return b, nil
}

func positiveInt(s, name string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, s)
	}
	return n, nil
}

func positiveMillis(s, name string) (time.Duration, error) {
	n, err := positiveInt(s, name)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Millisecond, nil
}
