package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"PORT", "ENV", "LOG_LEVEL", "DATABASE_URL", "REDIS_URL", "SESSION_BACKEND", "SESSION_TTL", "SESSION_SWEEP_INTERVAL"} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("does-not-exist.env")
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, BackendMemory, cfg.SessionBackend)
	assert.Equal(t, 120*time.Hour, cfg.SessionTTL)
	assert.False(t, cfg.Production())
}

func TestLoadPicksBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/kg")

	cfg, err := Load("does-not-exist.env")
	require.NoError(t, err)
	assert.Equal(t, BackendPostgres, cfg.SessionBackend)

	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	cfg, err = Load("does-not-exist.env")
	require.NoError(t, err)
	assert.Equal(t, BackendRedis, cfg.SessionBackend)
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_BACKEND", "redis")
	_, err := Load("does-not-exist.env")
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("SESSION_BACKEND", "etcd")
	_, err = Load("does-not-exist.env")
	assert.Error(t, err)

	for _, tc := range []struct{ key, value string }{
		{"SESSION_TTL", "forever"},
		{"SESSION_TTL", "0s"},
		{"SESSION_TTL", "-1h"},
		{"SESSION_SWEEP_INTERVAL", "0s"},
		{"SESSION_SWEEP_INTERVAL", "-5m"},
	} {
		clearEnv(t)
		t.Setenv(tc.key, tc.value)
		_, err = Load("does-not-exist.env")
		assert.Error(t, err, "%s=%s", tc.key, tc.value)
	}
}
