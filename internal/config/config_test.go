package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "STORE_BACKEND", "FEUD_ROUNDS", "GUESS_RATE", "CAFE_TIMEZONE", "NODE_ENV"} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "5175", cfg.Port)
	assert.Equal(t, "sqlite", cfg.StoreBackend)
	assert.Equal(t, 3, cfg.FeudRounds)
	assert.Equal(t, rate.Limit(2), cfg.GuessRate)
	assert.False(t, cfg.SecureCookies)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("FEUD_ROUNDS", "5")
	t.Setenv("CAFE_TIMEZONE", "Asia/Kolkata")
	t.Setenv("NODE_ENV", "production")
	t.Setenv("GUESS_RATE", "0.5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.StoreBackend)
	assert.Equal(t, 5, cfg.FeudRounds)
	assert.Equal(t, "Asia/Kolkata", cfg.Location.String())
	assert.True(t, cfg.SecureCookies)
	assert.Equal(t, rate.Limit(0.5), cfg.GuessRate)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("STORE_BACKEND", "postgres")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("FEUD_ROUNDS", "0")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("FEUD_ROUNDS", "")
	t.Setenv("CAFE_TIMEZONE", "Mars/Olympus")
	_, err = Load()
	assert.Error(t, err)
}
