package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef" // 32 chars, minimum length

func TestLoad(t *testing.T) {
	t.Run("loads from environment with defaults", func(t *testing.T) {
		t.Setenv("REVISION_DATABASE_URL", "postgres://localhost:5432/revision")
		t.Setenv("REVISION_AUTH_JWT_SECRET", testSecret)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, "info", cfg.Server.LogLevel)
		assert.Equal(t, "postgres://localhost:5432/revision", cfg.Database.URL)
		assert.Equal(t, testSecret, cfg.Auth.JWTSecret)
		assert.Equal(t, 10, cfg.Progress.MasteryWindow)
		assert.Equal(t, 300, cfg.Progress.CacheTTLSeconds)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("REVISION_DATABASE_URL", "postgres://localhost:5432/revision")
		t.Setenv("REVISION_AUTH_JWT_SECRET", testSecret)
		t.Setenv("REVISION_SERVER_PORT", "9090")
		t.Setenv("REVISION_SERVER_LOG_LEVEL", "debug")
		t.Setenv("REVISION_PROGRESS_MASTERY_WINDOW", "20")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, "debug", cfg.Server.LogLevel)
		assert.Equal(t, 20, cfg.Progress.MasteryWindow)
	})

	t.Run("missing database URL fails validation", func(t *testing.T) {
		t.Setenv("REVISION_AUTH_JWT_SECRET", testSecret)

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("short JWT secret fails validation", func(t *testing.T) {
		t.Setenv("REVISION_DATABASE_URL", "postgres://localhost:5432/revision")
		t.Setenv("REVISION_AUTH_JWT_SECRET", "too-short")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("invalid log level fails validation", func(t *testing.T) {
		t.Setenv("REVISION_DATABASE_URL", "postgres://localhost:5432/revision")
		t.Setenv("REVISION_AUTH_JWT_SECRET", testSecret)
		t.Setenv("REVISION_SERVER_LOG_LEVEL", "verbose")

		_, err := Load()
		assert.Error(t, err)
	})
}
