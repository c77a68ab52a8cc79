package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("SECRETS_DIR", t.TempDir())
	t.Setenv("CI", "")
	t.Setenv("ENV", "test")
}

func TestLoadConfigDefaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 6, cfg.PageSize)
	assert.Equal(t, []string{"me"}, cfg.ForbiddenUsernameList())
	assert.False(t, cfg.RedisEnabled())
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/foodgram.db")
	t.Setenv("PAGE_SIZE", "10")
	t.Setenv("FORBIDDEN_USERNAMES", "me, admin ,")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, []string{"me", "admin"}, cfg.ForbiddenUsernameList())
	assert.Equal(t, "file:/tmp/foodgram.db?_foreign_keys=1", cfg.DSN())
	assert.True(t, cfg.RedisEnabled())
}

func TestSecretsOverrideEnvironment(t *testing.T) {
	isolate(t)
	dir := os.Getenv("SECRETS_DIR")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jwt_secret"), []byte("from-secret-file\n"), 0o600))
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-secret-file", cfg.JWTSecret)
}

func TestValidateConfig(t *testing.T) {
	isolate(t)

	cfg := &Config{DBDriver: "mysql", ServerPort: "", JWTSecret: "x", PageSize: 0}
	err := ValidateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DRIVER")
	assert.Contains(t, err.Error(), "SERVER_PORT")
	assert.Contains(t, err.Error(), "PAGE_SIZE")
}

func TestValidateConfigProduction(t *testing.T) {
	isolate(t)
	t.Setenv("ENV", "production")

	cfg := &Config{DBDriver: "postgres", DBHost: "db", DBName: "foodgram", ServerPort: "8080", JWTSecret: defaultJWTSecret, PageSize: 6}
	err := ValidateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "DB_PASSWORD")
}

func TestGetEnvironment(t *testing.T) {
	t.Setenv("CI", "true")
	assert.Equal(t, CI, GetEnvironment())
	assert.True(t, IsTest())

	t.Setenv("CI", "")
	t.Setenv("ENV", "production")
	assert.True(t, IsProduction())

	t.Setenv("ENV", "")
	assert.Equal(t, Development, GetEnvironment())
}
