// Package config loads all runtime configuration from the environment.
//
// Configuration lives in env vars (twelve-factor style). For local
// development a .env file in the working directory is loaded first via
// godotenv; in production the real environment wins. Parsing into a struct
// is handled by caarlos0/env, so every option, its env name, and its
// default are visible in one place.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full configuration surface of the server.
type Config struct {
	Port   int    `env:"PORT" envDefault:"8000"`
	DBPath string `env:"DB_PATH" envDefault:"data/academy.db"`

	// ForceEmbedded pins the store to the embedded SQLite backend even when
	// the remote service is fully configured.
	ForceEmbedded bool `env:"USE_EMBEDDED_DB" envDefault:"true"`

	// Remote managed service. All three must be present for remote mode to
	// even be attempted.
	RemoteURL        string `env:"REMOTE_DB_URL"`
	RemoteAnonKey    string `env:"REMOTE_DB_ANON_KEY"`
	RemoteServiceKey string `env:"REMOTE_DB_SERVICE_KEY"`

	// Token signing.
	JWTSecret      string `env:"JWT_SECRET" envDefault:"dev-secret-key-change-in-production"`
	JWTAlgorithm   string `env:"JWT_ALGORITHM" envDefault:"HS256"`
	JWTExpiryHours int    `env:"JWT_EXPIRATION_HOURS" envDefault:"24"`

	// Comma-separated list of allowed cross-origin request sources.
	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"http://localhost:5173,http://localhost:3000"`
}

// Load reads the optional .env file and parses the environment.
func Load(logger *slog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: parsing environment: %w", err)
	}
	return &cfg, nil
}

// TokenTTL converts the configured expiration hours to a duration.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTExpiryHours) * time.Hour
}

// CORSOriginList splits the comma-separated origins, trimming whitespace.
func (c *Config) CORSOriginList() []string {
	parts := strings.Split(c.CORSOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

// RemoteConfigured reports whether all three remote-service credentials are
// present. Missing any one of them forces embedded mode.
func (c *Config) RemoteConfigured() bool {
	return c.RemoteURL != "" && c.RemoteAnonKey != "" && c.RemoteServiceKey != ""
}
