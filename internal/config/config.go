package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	DatabaseURL     string
	RedisURL        string
	JWTSecret       string
	Port            string
	AllowedOrigins  []string
	CompanyCode     string
	OpenAIAPIKey    string
	LogLevel        string
	LogFormat       string
	ProductCacheTTL time.Duration
	MigrationsDir   string
}

// Load reads configuration from environment variables and an optional .env file.
// Only DATABASE_URL is required; servers additionally check JWT_SECRET via RequireJWT.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		DatabaseURL:     strings.TrimSpace(k.String("DATABASE_URL")),
		RedisURL:        strings.TrimSpace(k.String("REDIS_URL")),
		JWTSecret:       k.String("JWT_SECRET"),
		Port:            valueOrDefault(k.String("SERVER_PORT"), "8080"),
		AllowedOrigins:  splitAndTrim(valueOrDefault(k.String("ALLOWED_ORIGINS"), "http://localhost:3000")),
		CompanyCode:     valueOrDefault(k.String("COMPANY_CODE"), "1000"),
		OpenAIAPIKey:    k.String("OPENAI_API_KEY"),
		LogLevel:        valueOrDefault(k.String("LOG_LEVEL"), "info"),
		LogFormat:       valueOrDefault(k.String("LOG_FORMAT"), "json"),
		ProductCacheTTL: parseDuration(k.String("PRODUCT_CACHE_TTL"), "5m"),
		MigrationsDir:   valueOrDefault(k.String("MIGRATIONS_DIR"), "migrations"),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	return cfg, nil
}

// RequireJWT fails when JWT_SECRET is unset. Only the HTTP server issues tokens.
func (c *Config) RequireJWT() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	return nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
