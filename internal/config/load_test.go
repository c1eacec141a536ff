package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TASKAPI_DATABASE_URL", "postgres://localhost:5432/tasklist")
	t.Setenv("TASKAPI_AUTH_JWT_SECRET", "test-jwt-secret-that-is-32-chars-long")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 60, cfg.Auth.TokenLifetimeMinutes)
	assert.Equal(t, 5, cfg.Auth.LoginMaxAttempts)
	assert.Equal(t, 60, cfg.Auth.LoginWindowSeconds)
	assert.Equal(t, 0, cfg.Auth.BcryptCost)
}

func TestLoadEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TASKAPI_SERVER_PORT", "9090")
	t.Setenv("TASKAPI_SERVER_LOG_LEVEL", "debug")
	t.Setenv("TASKAPI_REDIS_ADDR", "redis.internal:6380")
	t.Setenv("TASKAPI_AUTH_LOGIN_MAX_ATTEMPTS", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "redis.internal:6380", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Auth.LoginMaxAttempts)
	assert.Equal(t, "postgres://localhost:5432/tasklist", cfg.Database.URL)
}

func TestLoadValidation(t *testing.T) {
	t.Run("missing database url", func(t *testing.T) {
		t.Setenv("TASKAPI_AUTH_JWT_SECRET", "test-jwt-secret-that-is-32-chars-long")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})

	t.Run("jwt secret too short", func(t *testing.T) {
		t.Setenv("TASKAPI_DATABASE_URL", "postgres://localhost:5432/tasklist")
		t.Setenv("TASKAPI_AUTH_JWT_SECRET", "short")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})

	t.Run("bad log level", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("TASKAPI_SERVER_LOG_LEVEL", "verbose")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})
}
