package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Run from a temp dir so no configs/config.yaml is picked up
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(wd)

	t.Setenv("JWT_SECRET", "test-secret")

	cfg := Load()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "pack_db", cfg.Database.Name)
	assert.Equal(t, "pack-backend", cfg.JWT.Issuer)
	assert.Equal(t, 24, cfg.JWT.ExpirationHours)
	assert.Equal(t, "data/backups", cfg.Backup.Dir)
	assert.Equal(t, "data/customers", cfg.Backup.WorkingRoot)
	assert.False(t, cfg.Backup.Mirror.Enabled)
	assert.Equal(t, "test-secret", cfg.JWT.Secret)
}

func TestLoadDatabaseEnvOverrides(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(wd)

	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_NAME", "pack_test")

	cfg := Load()

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "pack_test", cfg.Database.Name)
}
