package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SKIRMISH_SEED", "")
	t.Setenv("SKIRMISH_MAX_REACTION_DEPTH", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("REDIS_PASSWORD", "")
	t.Setenv("REDIS_DB", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(1), cfg.Engine.Seed)
	assert.Equal(t, 5, cfg.Engine.MaxReactionDepth)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Empty(t, cfg.Redis.Password)
	assert.Equal(t, 0, cfg.Redis.DB)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("SKIRMISH_SEED", "77")
	t.Setenv("SKIRMISH_MAX_REACTION_DEPTH", "2")
	t.Setenv("REDIS_ADDR", "redis.internal:6380")
	t.Setenv("REDIS_PASSWORD", "hunter2")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(77), cfg.Engine.Seed)
	assert.Equal(t, 2, cfg.Engine.MaxReactionDepth)
	assert.Equal(t, "redis.internal:6380", cfg.Redis.Addr)
	assert.Equal(t, "hunter2", cfg.Redis.Password)
	assert.Equal(t, 3, cfg.Redis.DB)
}

func TestLoad_MalformedNumbersFallBack(t *testing.T) {
	t.Setenv("SKIRMISH_SEED", "not-a-number")
	t.Setenv("REDIS_DB", "also-not")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(1), cfg.Engine.Seed)
	assert.Equal(t, 0, cfg.Redis.DB)
}
