package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration.
type Config struct {
	ServerPort  int
	DBDriver    string // "sqlite" or "postgres"
	DatabaseURL string // sqlite file path or postgres DSN
	JWTSecret   string
	TokenTTL    time.Duration
	CORSOrigin  string
}

// Load loads configuration from environment variables or sets defaults.
// JWT_SECRET has no default: the process must not start without it.
func Load() (*Config, error) {
	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET must be set")
	}

	ttlStr := getEnv("TOKEN_TTL_MINUTES", "60")
	ttlMinutes, err := strconv.Atoi(ttlStr)
	if err != nil || ttlMinutes <= 0 {
		return nil, errors.New("TOKEN_TTL_MINUTES must be a positive integer")
	}

	return &Config{
		ServerPort:  port,
		DBDriver:    getEnv("DB_DRIVER", "sqlite"),
		DatabaseURL: getEnv("DATABASE_URL", "./taskdeck.db"),
		JWTSecret:   secret,
		TokenTTL:    time.Duration(ttlMinutes) * time.Minute,
		CORSOrigin:  getEnv("CORS_ORIGIN", "http://localhost:3000"),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
