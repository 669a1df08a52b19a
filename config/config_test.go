package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"PORT", "STORE_BACKEND", "DATABASE_URL", "REDIS_URL", "MONGO_URI",
		"MONGO_DATABASE", "CATALOG_PATH", "CATALOG_LOAD_DELAY", "GEMINI_API_KEY", "GEMINI_MODEL"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8082", cfg.Port)
	assert.Equal(t, "memory", cfg.StoreBackend)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Equal(t, "cartcraft", cfg.MongoDatabase)
	assert.Equal(t, time.Duration(0), cfg.CatalogLoadDelay)
	assert.Empty(t, cfg.CatalogPath)
	assert.Empty(t, cfg.GeminiAPIKey)
	assert.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("CATALOG_LOAD_DELAY", "600ms")
	t.Setenv("GEMINI_API_KEY", "key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "redis", cfg.StoreBackend)
	assert.Equal(t, 600*time.Millisecond, cfg.CatalogLoadDelay)
	assert.Equal(t, "key", cfg.GeminiAPIKey)
}

func TestLoad_BadDelay(t *testing.T) {
	clearEnv(t)
	t.Setenv("CATALOG_LOAD_DELAY", "soon")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("CATALOG_LOAD_DELAY", "-1s")
	_, err = Load()
	assert.Error(t, err)
}
