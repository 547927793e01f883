package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_SitemapConfig(t *testing.T) {
	// Setup environment variables
	os.Setenv("SITEMAP_BASE_URL", "https://staging.localdeck.com")
	os.Setenv("SITEMAP_MAX_URLS", "100")
	os.Setenv("SITEMAP_TIME_BUDGET_SECONDS", "5")
	os.Setenv("SITEMAP_MAX_LOCALITIES", "10")
	defer func() {
		os.Unsetenv("SITEMAP_BASE_URL")
		os.Unsetenv("SITEMAP_MAX_URLS")
		os.Unsetenv("SITEMAP_TIME_BUDGET_SECONDS")
		os.Unsetenv("SITEMAP_MAX_LOCALITIES")
	}()

	// Load config
	cfg, err := Load()
	assert.NoError(t, err)

	// Verify sitemap config
	assert.Equal(t, "https://staging.localdeck.com", cfg.Sitemap.BaseURL)
	assert.Equal(t, 100, cfg.Sitemap.MaxURLs)
	assert.Equal(t, 5, cfg.Sitemap.TimeBudgetSeconds)
	assert.Equal(t, 10, cfg.Sitemap.MaxLocalities)
}

func TestLoad_Defaults(t *testing.T) {
	// Ensure env vars are cleared
	os.Unsetenv("SITEMAP_BASE_URL")
	os.Unsetenv("SITEMAP_MAX_URLS")
	os.Unsetenv("SITEMAP_CACHE_TTL_SECONDS")

	cfg, err := Load()
	assert.NoError(t, err)

	// Verify defaults
	assert.Equal(t, "https://www.localdeck.com", cfg.Sitemap.BaseURL)
	assert.Equal(t, 2500, cfg.Sitemap.MaxURLs)
	assert.Equal(t, 50, cfg.Sitemap.TimeBudgetSeconds)
	assert.Equal(t, 450, cfg.Sitemap.MaxLocalities)
	assert.Equal(t, 86400, cfg.Sitemap.CacheTTLSeconds)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "app",
		Password: "secret",
		Database: "directory",
		SSLMode:  "disable",
	}
	assert.Equal(t, "host=db port=5432 user=app password=secret dbname=directory sslmode=disable", cfg.DatabaseDSN())
}
