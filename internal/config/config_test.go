package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
server:
  port: 9000
database:
  path: `+filepath.Join(dir, "db", "test.db")+`
redis:
  address: localhost:6379
  cache_ttl_seconds: 60
rate_limit:
  requests_per_second: 5
  burst: 10
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
	assert.Equal(t, 60, cfg.Redis.CacheTTLSeconds)
	assert.Equal(t, 5.0, cfg.RateLimit.RequestsPerSecond)
	assert.DirExists(t, filepath.Join(dir, "db"), "database directory is created")
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "data/utaroom.db", cfg.Database.Path)
	assert.Equal(t, 20.0, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 40, cfg.RateLimit.Burst)
}

func TestLoad_ExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("UTAROOM_TEST_REDIS", "redis.internal:6379")
	path := writeConfig(t, `
redis:
  address: ${UTAROOM_TEST_REDIS}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "redis.internal:6379", cfg.Redis.Address)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a mapping")
	_, err := Load(path)
	assert.Error(t, err)
}
