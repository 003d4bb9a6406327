package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFrom(t *testing.T, toml string) (*Config, error) {
	t.Helper()
	dir := t.TempDir()
	if toml != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(toml), 0644))
	}
	t.Chdir(dir)
	return Load()
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := loadFrom(t, "")
	require.NoError(t, err)

	assert.Equal(t, "portal-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, 30*time.Second, cfg.Billing.Timeout)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout)
}

func TestLoadFromFile(t *testing.T) {
	cfg, err := loadFrom(t, `
[app]
port = "9000"

[billing]
base_url = "https://billing.example.com"
client_id = "portal"

[cache]
backend = "memory"
`)
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, "https://billing.example.com", cfg.Billing.BaseURL)
	assert.Equal(t, "memory", cfg.Cache.Backend)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("PORTAL_DATABASE_PASSWORD", "from-env")
	cfg, err := loadFrom(t, `
[database]
password = "from-file"
`)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Database.Password)
}

func TestValidation(t *testing.T) {
	t.Run("rejects unknown cache backend", func(t *testing.T) {
		_, err := loadFrom(t, `
[cache]
backend = "memcached"
`)
		assert.Error(t, err)
	})

	t.Run("production requires a strong jwt secret", func(t *testing.T) {
		_, err := loadFrom(t, `
[app]
env = "production"

[jwt]
secret = "short"
`)
		assert.Error(t, err)
	})

	t.Run("production rejects wildcard cors origins", func(t *testing.T) {
		_, err := loadFrom(t, `
[app]
env = "production"

[jwt]
secret = "0123456789abcdef0123456789abcdef"

[database]
password = "secret"
sslmode = "require"

[billing]
base_url = "https://billing.example.com"

[http]
cors_allow_origins = ["*"]
`)
		assert.Error(t, err)
	})
}

func TestDatabaseDSNEscaping(t *testing.T) {
	d := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "portal",
		Password: "p@ss:word/1",
		DBName:   "portal",
		SSLMode:  "disable",
	}
	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "p%40ss%3Aword%2F1")
	assert.Contains(t, dsn, "sslmode=disable")
}

func TestRedisAddr(t *testing.T) {
	r := RedisConfig{Host: "cache.internal", Port: 6380}
	assert.Equal(t, "cache.internal:6380", r.Addr())
}
