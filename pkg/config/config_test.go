package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BlockonautAlchemist/ResellrAi-sub001/pkg/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "https://api.ebay.com", cfg.Upstream.BaseURL)
	assert.Equal(t, "EBAY_US", cfg.Upstream.Marketplace)
	assert.Equal(t, 10*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, "newlyListed", cfg.Upstream.Sort)
	assert.Equal(t, uint32(5), cfg.Upstream.BreakerFailures)
	assert.Equal(t, 3, cfg.Engine.Concurrency)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 15*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 100, cfg.Cache.MaxEntries)
	assert.Equal(t, 5*time.Minute, cfg.Cache.CleanupInterval)
	assert.Equal(t, 6379, cfg.Redis.Port)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
upstream:
  marketplace: EBAY_GB
  timeout: 3s
cache:
  backend: redis
  ttl: 5m
redis:
  host: cache.internal
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("COMPS_UPSTREAM_TOKEN", "secret")
	t.Setenv("COMPS_ENGINE_CONCURRENCY", "5")

	cfg, err := config.LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "EBAY_GB", cfg.Upstream.Marketplace)
	assert.Equal(t, 3*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "cache.internal", cfg.Redis.Host)
	assert.Equal(t, "secret", cfg.Upstream.Token)
	assert.Equal(t, 5, cfg.Engine.Concurrency)
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("cache:\n  backend: memcached\n"), 0o600))

	_, err := config.LoadConfig(dir)
	assert.ErrorContains(t, err, "memcached")
}
