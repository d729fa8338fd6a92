package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_CONNECTION_STRING", "")

	cfg := Load()

	assert.Equal(t, "5000", cfg.App.Port)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, time.Hour, cfg.Auth.ResetTokenTTL)
	assert.Equal(t, 30*time.Second, cfg.Advisory.Timeout)
	assert.Equal(t, 10*time.Second, cfg.Advisory.StatusTimeout)
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Equal(t, "test-secret", cfg.Auth.JWTSecret)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "8080")
	t.Setenv("FLASK_API_URL", "http://flask.local:5001/")
	t.Setenv("ADVISORY_TIMEOUT_SECONDS", "5")
	t.Setenv("ADVISORY_BREAKER_MAX_FAILURES", "not-a-number")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("GO_ENV", "production")

	cfg := Load()

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "http://flask.local:5001", cfg.Advisory.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Advisory.Timeout)
	assert.Equal(t, 5, cfg.Advisory.BreakerMaxFailures)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.True(t, cfg.IsProduction())
}

func TestAllowedOrigins(t *testing.T) {
	app := AppConfig{CorsAllowedOrigins: " http://localhost:3000, ,https://unycompass.vercel.app "}

	assert.Equal(t, []string{"http://localhost:3000", "https://unycompass.vercel.app"}, app.AllowedOrigins())
}
