package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, 30*time.Second, cfg.HTTP.RequestTimeout)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 100, cfg.Outbox.BatchSize)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("MARKETPLACE_DATABASE_DRIVER", "memory")
	t.Setenv("MARKETPLACE_HTTP_PORT", "9090")
	t.Setenv("MARKETPLACE_REDIS_ADDR", "cache:6379")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, "9090", cfg.HTTP.Port)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marketplace.yaml")
	content := []byte("database:\n  host: db.internal\n  name: shop\nkafka:\n  brokers: [\"k1:9092\", \"k2:9092\"]\noutbox:\n  interval: 3s\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "shop", cfg.Database.Name)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 3*time.Second, cfg.Outbox.Interval)
}

func TestLoad_UnknownDriver(t *testing.T) {
	t.Setenv("MARKETPLACE_DATABASE_DRIVER", "oracle")

	_, err := Load("")
	assert.ErrorContains(t, err, "unknown database driver")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
