package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Engine.MaxResults)
	assert.Equal(t, 1440, cfg.RequestQueue.Window)
	assert.Equal(t, CacheBackendMemory, cfg.Cache.Backend)
	assert.Empty(t, cfg.Engine.StopWords)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
engine:
  stopWords: "and in at"
requestQueue:
  window: 60
cache:
  enabled: true
  backend: redis
  ttl: 30s
kafka:
  brokers: ["kafka-1:9092", "kafka-2:9092"]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "and in at", cfg.Engine.StopWords)
	assert.Equal(t, 5, cfg.Engine.MaxResults)
	assert.Equal(t, 60, cfg.RequestQueue.Window)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, CacheBackendRedis, cfg.Cache.Backend)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SS_ENGINE_STOP_WORDS", "the a")
	t.Setenv("SS_REQUEST_QUEUE_WINDOW", "10")
	t.Setenv("SS_KAFKA_BROKERS", "b1:9092,b2:9092")
	t.Setenv("SS_LOGGING_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "the a", cfg.Engine.StopWords)
	assert.Equal(t, 10, cfg.RequestQueue.Window)
	assert.Equal(t, []string{"b1:9092", "b2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"zero max results": "engine:\n  maxResults: 0\n",
		"negative window":  "requestQueue:\n  window: -1\n",
		"unknown backend":  "cache:\n  backend: memcached\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
