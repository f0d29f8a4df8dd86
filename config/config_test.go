package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "cite")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "citegraph")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5432, cfg.DBPort)
	assert.Equal(t, "8000", cfg.HTTPPort)
	assert.Equal(t, CacheBackendRedis, cfg.CacheBackend)
	assert.Equal(t, 60*time.Second, cfg.CacheTTL)
	assert.Equal(t, 250*time.Millisecond, cfg.CacheTimeout)
	assert.Equal(t, "redis:6379", cfg.RedisAddr())
	assert.Equal(t, 1000, cfg.PaperBatchSize)
	assert.Equal(t, 5000, cfg.CitationBatchSize)
	assert.False(t, cfg.SnapshotsEnabled())
	assert.Equal(t, 4, cfg.KeepBackups)
	assert.Equal(t, "host=localhost user=cite password=secret dbname=citegraph port=5432 sslmode=disable", cfg.DSN())
}

func TestLoadMissingRequired(t *testing.T) {
	for _, key := range []string{"DB_HOST", "DB_USER", "DB_PASSWORD", "DB_NAME"} {
		// Setenv registriert die Wiederherstellung, Unsetenv entfernt den Key danach wirklich.
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownCacheBackend(t *testing.T) {
	setRequired(t)
	t.Setenv("CACHE_BACKEND", "memcached")

	_, err := Load()
	assert.ErrorContains(t, err, "CACHE_BACKEND")
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("CACHE_BACKEND", "memory")
	t.Setenv("CACHE_TTL", "5s")
	t.Setenv("S3_BUCKET", "snapshots")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, CacheBackendMemory, cfg.CacheBackend)
	assert.Equal(t, 5*time.Second, cfg.CacheTTL)
	assert.True(t, cfg.SnapshotsEnabled())
}

func TestLoadRejectsBatchSizesAboveBindLimit(t *testing.T) {
	cases := map[string]string{
		"PAPER_BATCH_SIZE":    "16384",
		"CITATION_BATCH_SIZE": "21846",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(key, value)

			_, err := Load()
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestLoadAcceptsMaximumBatchSizes(t *testing.T) {
	setRequired(t)
	t.Setenv("PAPER_BATCH_SIZE", "16383")
	t.Setenv("CITATION_BATCH_SIZE", "21845")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, MaxPaperBatchSize, cfg.PaperBatchSize)
	assert.Equal(t, MaxCitationBatchSize, cfg.CitationBatchSize)
}
