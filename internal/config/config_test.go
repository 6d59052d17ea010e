package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:     8080,
			LogLevel: "info",
		},
		Database: DatabaseConfig{
			URL: "postgres://localhost:5432/flashdeck",
		},
		Auth: AuthConfig{
			JWTSecret:        "0123456789abcdef0123456789abcdef",
			TokenLifetimeMin: 60,
		},
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("accepts a fully populated config", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		assert.NoError(t, validate(&cfg))
	})

	t.Run("rejects missing database URL", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Database.URL = ""
		err := validate(&cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Database.URL")
	})

	t.Run("rejects short JWT secret", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Auth.JWTSecret = "too-short"
		err := validate(&cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWTSecret")
	})

	t.Run("rejects out of range port", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Server.Port = 70000
		assert.Error(t, validate(&cfg))
	})

	t.Run("rejects unknown log level", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Server.LogLevel = "verbose"
		err := validate(&cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "LogLevel")
	})
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FLASHDECK_DATABASE_URL", "postgres://localhost:5432/flashdeck")
	t.Setenv("FLASHDECK_AUTH_JWT_SECRET", "0123456789abcdef0123456789abcdef")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, 60, cfg.Auth.TokenLifetimeMin)
	assert.Equal(t, "postgres://localhost:5432/flashdeck", cfg.Database.URL)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("FLASHDECK_DATABASE_URL", "postgres://db:5432/flashdeck")
	t.Setenv("FLASHDECK_AUTH_JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("FLASHDECK_SERVER_PORT", "9090")
	t.Setenv("FLASHDECK_SERVER_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
}

func TestLoadRejectsIncomplete(t *testing.T) {
	t.Setenv("FLASHDECK_DATABASE_URL", "")
	t.Setenv("FLASHDECK_AUTH_JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}
