package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, "stocktracker", cfg.Database.Name)
	assert.Equal(t, "reconciliation-audit", cfg.Storage.Bucket)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_API_KEY", "sekret")
	t.Setenv("DATABASE_HOST", "db.internal")
	t.Setenv("STORAGE_BUCKET", "audit-prod")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "sekret", cfg.Server.ApiKey)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "audit-prod", cfg.Storage.Bucket)
	assert.Equal(t, "debug", cfg.Log.Level)
}
