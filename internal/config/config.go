package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full process configuration, loaded once at startup and
// passed by injection. Nothing reads the environment after Load returns.
type Config struct {
	DatabaseURL string

	JWTSecret           string
	JWTIssuer           string
	JWTAudience         string
	TokenExpiresMinutes int

	AdminAPIKey string

	SentryDSN   string
	Environment string
	Port        string

	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration
}

// TokenExpiry returns the configured token lifetime as a duration.
func (c *Config) TokenExpiry() time.Duration {
	return time.Duration(c.TokenExpiresMinutes) * time.Minute
}

// Load reads and validates the environment. It fails fast on a missing
// signing secret, database URL, or non-positive token expiry.
func Load() (*Config, error) {
	databaseURL, err := mustEnv("DATABASE_URL")
	if err != nil {
		return nil, err
	}

	jwtSecret, err := mustEnv("JWT_SECRET")
	if err != nil {
		return nil, err
	}

	expiresRaw, err := mustEnv("JWT_EXPIRES_MINUTES")
	if err != nil {
		return nil, err
	}
	expiresMinutes, err := strconv.Atoi(expiresRaw)
	if err != nil || expiresMinutes <= 0 {
		return nil, fmt.Errorf("JWT_EXPIRES_MINUTES must be a positive integer, got %q", expiresRaw)
	}

	return &Config{
		DatabaseURL:         databaseURL,
		JWTSecret:           jwtSecret,
		JWTIssuer:           strings.TrimSpace(os.Getenv("JWT_ISSUER")),
		JWTAudience:         strings.TrimSpace(os.Getenv("JWT_AUDIENCE")),
		TokenExpiresMinutes: expiresMinutes,
		AdminAPIKey:         strings.TrimSpace(os.Getenv("ADMIN_API_KEY")),
		SentryDSN:           os.Getenv("SENTRY_DSN"),
		Environment:         envOrDefault("APP_ENV", "development"),
		Port:                envOrDefault("PORT", "8080"),
		DBMaxOpenConns:      envIntOrDefault("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns:      envIntOrDefault("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime:   envMinutesOrDefault("DB_CONN_MAX_LIFETIME_MINUTES", 30),
		DBConnMaxIdleTime:   envMinutesOrDefault("DB_CONN_MAX_IDLE_TIME_MINUTES", 10),
	}, nil
}

func mustEnv(name string) (string, error) {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return "", fmt.Errorf("missing required env: %s", name)
	}
	return value, nil
}

func envOrDefault(name, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func envIntOrDefault(name string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func envMinutesOrDefault(name string, fallback int) time.Duration {
	return time.Duration(envIntOrDefault(name, fallback)) * time.Minute
}

// EnvBoolOrDefault reads a boolean flag from the environment.
func EnvBoolOrDefault(name string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if value == "" {
		return fallback
	}

	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
