package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"DATABASE_URL":      "postgres://localhost/backoffice",
		"SERVER_PORT":       "",
		"ALLOWED_ORIGINS":   "",
		"COMPANY_CODE":      "",
		"LOG_LEVEL":         "",
		"PRODUCT_CACHE_TTL": "",
		"JWT_SECRET":        "",
	})
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr())
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, "1000", cfg.CompanyCode)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 5*time.Minute, cfg.ProductCacheTTL)
	assert.Error(t, cfg.RequireJWT())
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"DATABASE_URL":      "postgres://localhost/backoffice",
		"SERVER_PORT":       ":9090",
		"ALLOWED_ORIGINS":   "https://a.example, https://b.example ,",
		"PRODUCT_CACHE_TTL": "not-a-duration",
		"JWT_SECRET":        "s3cret",
	})
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.ProductCacheTTL)
	assert.NoError(t, cfg.RequireJWT())
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	_, err := LoadForTests(map[string]string{"DATABASE_URL": ""})
	assert.EqualError(t, err, "DATABASE_URL is required")
}
