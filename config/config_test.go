package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, BackendFile, cfg.Persist.Backend)
	assert.Equal(t, "persist:root", cfg.Persist.Key)
	assert.Equal(t, ".storefront-state", cfg.Persist.Dir)
	assert.False(t, cfg.Kafka.Enabled)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://shop.example.com/api")
	t.Setenv("PERSIST_BACKEND", "redis")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("PERSIST_DIR", "/var/lib/storefront")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://shop.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, BackendRedis, cfg.Persist.Backend)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "/var/lib/storefront", cfg.Persist.Dir)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("PERSIST_BACKEND", "floppy")

	_, err := Load()
	assert.Error(t, err)
}
