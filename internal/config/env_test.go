package config

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv(t *testing.T) {
	t.Setenv("TASKBOARD_SESSION_SECRET", "s3cret")
	t.Setenv("TASKBOARD_CORS_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("TASKBOARD_ACTIVATION_CACHE_TTL", "90s")
	t.Setenv("TASKBOARD_DEMO_MODE", "true")

	env, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", env.SessionSecret)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, env.Origins)
	assert.Equal(t, 90*time.Second, env.CacheTTL)
	assert.True(t, env.DemoMode)
	assert.Equal(t, "sqlite", env.Driver)
	assert.Equal(t, "local", env.Env)
}

func TestLoadEnv_RequiresSessionSecret(t *testing.T) {
	t.Setenv("TASKBOARD_SESSION_SECRET", "")
	require.NoError(t, os.Unsetenv("TASKBOARD_SESSION_SECRET"))
	_, err := LoadEnv()
	assert.Error(t, err)
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, (&BaseEnv{LogLevel: "warn"}).SlogLevel())
	assert.Equal(t, slog.LevelDebug, (&BaseEnv{LogLevel: "nonsense"}).SlogLevel())
	var nilEnv *BaseEnv
	assert.Equal(t, slog.LevelDebug, nilEnv.SlogLevel())
}
