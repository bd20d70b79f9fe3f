package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OMDB_API_KEY", "testkey")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "testkey", cfg.OMDbAPIKey)
	assert.Equal(t, "http://www.omdbapi.com/", cfg.OMDbAPIBaseURL)
	assert.Equal(t, "models", cfg.ModelsDir)
	assert.Equal(t, 50, cfg.PopularMinRatings)
	assert.Equal(t, 20, cfg.PopularTopN)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
}

func TestLoadMissingOMDbKey(t *testing.T) {
	t.Setenv("OMDB_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OMDB_API_KEY")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("OMDB_API_KEY", "testkey")
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_HOST", "redis.internal")
	t.Setenv("POPULAR_MIN_RATINGS", "10")
	t.Setenv("POPULAR_TOP_N", "5")
	t.Setenv("MODEL_S3_BUCKET", "my-artifacts")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "redis.internal:6379", cfg.RedisAddr())
	assert.Equal(t, 10, cfg.PopularMinRatings)
	assert.Equal(t, 5, cfg.PopularTopN)
	assert.Equal(t, "my-artifacts", cfg.ModelS3Bucket)
}

func TestLoadMalformedIntFallsBack(t *testing.T) {
	t.Setenv("OMDB_API_KEY", "testkey")
	t.Setenv("POPULAR_TOP_N", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.PopularTopN)
}
