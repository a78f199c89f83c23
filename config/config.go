package config

import (
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const devJWTSecret = "dev-only-secret-not-for-production"

type Config struct {
	DatabaseURL   string
	JWTSecret     string
	JWTExpiration time.Duration
	ServerPort    string
	RedisAddr     string
	RedisPass     string
	SentryDSN     string
	AdminEmail    string
	AdminPassword string
	IsProd        bool
}

// Load reads configuration from the environment, with .env support for
// local runs. Production refuses to start without an explicit JWT
// secret; the built-in default exists for development only.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:   getEnv("DATABASE_URL", "postgresql://postgres@localhost:5432/timeclock"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTExpiration: 24 * time.Hour,
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPass:     os.Getenv("REDIS_PASS"),
		SentryDSN:     os.Getenv("SENTRY_DSN"),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@timeclock.local"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "ChangeMe123!"),
		IsProd:        os.Getenv("IS_PROD") == "true",
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProd {
			return nil, errors.New("config: JWT_SECRET is required in production")
		}
		cfg.JWTSecret = devJWTSecret
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
