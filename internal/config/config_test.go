package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/ga-dashboard/internal/config"
	apperrors "github.com/jrsteele09/ga-dashboard/internal/errors"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GOOGLE_CLIENT_ID", "client-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "client-secret")
	t.Setenv("REDIRECT_URI", "http://localhost:5000/auth/google/callback")
	t.Setenv("GA4_PROPERTY_ID", "123456")
	t.Setenv("SESSION_SECRET", "0123456789abcdef0123")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, ":5000", cfg.GetPort())
	require.Equal(t, "DEV", cfg.GetEnv())
	require.Equal(t, "http://localhost:3000/dashboard", cfg.GetDashboardURL())
	require.Equal(t, config.AllowedOrigins{"http://localhost:3000"}, cfg.GetAllowedOrigins())
	require.Equal(t, 24*time.Hour, cfg.GetMaxSessionAge())
	require.Equal(t, config.SessionStoreMemory, cfg.GetSessionStore())
	require.Equal(t, "en-US", cfg.GetDisplayLocale())
	require.True(t, cfg.GetExposeUpstreamErrors())
	require.False(t, cfg.GetBreakerEnabled())
	require.False(t, cfg.GetOIDCIdentity())
	require.Equal(t, "123456", cfg.GetPropertyID())
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")
	t.Setenv("FRONTEND_URL", "https://dash.example.com/")
	t.Setenv("DASHBOARD_PATH", "home")
	t.Setenv("SESSION_MAX_AGE", "2h")
	t.Setenv("EXPOSE_UPSTREAM_ERRORS", "false")

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, ":8081", cfg.GetPort())
	require.True(t, cfg.GetAllowedOrigins().IsAllowedOrigin("https://b.example.com"))
	require.False(t, cfg.GetAllowedOrigins().IsAllowedOrigin("https://c.example.com"))
	require.Equal(t, "https://dash.example.com/home", cfg.GetDashboardURL())
	require.Equal(t, 2*time.Hour, cfg.GetMaxSessionAge())
	require.False(t, cfg.GetExposeUpstreamErrors())
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("missing client secret", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("GOOGLE_CLIENT_SECRET", "")

		_, err := config.Load()
		require.ErrorIs(t, err, apperrors.ErrInvalidConfig)
	})

	t.Run("short session secret", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("SESSION_SECRET", "short")

		_, err := config.Load()
		require.ErrorIs(t, err, apperrors.ErrInvalidConfig)
	})

	t.Run("redis store without url", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("SESSION_STORE", "redis")

		_, err := config.Load()
		require.ErrorIs(t, err, apperrors.ErrInvalidConfig)
	})

	t.Run("unknown session store", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("SESSION_STORE", "memcached")

		_, err := config.Load()
		require.ErrorIs(t, err, apperrors.ErrInvalidConfig)
	})
}
