package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORE_BACKEND", "AUTH_MODE", "INLINE_MODERATION", "TX_MAX_ATTEMPTS", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreFirestore, cfg.StoreBackend)
	assert.Equal(t, AuthFirebase, cfg.AuthMode)
	assert.False(t, cfg.InlineModeration)
	assert.Equal(t, 25, cfg.TxMaxAttempts)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("STORE_BACKEND", "Memory")
	t.Setenv("AUTH_MODE", "jwt")
	t.Setenv("INLINE_MODERATION", "true")
	t.Setenv("TX_MAX_ATTEMPTS", "5")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("EXTRA_BANNED_TERMS", "foo,bar")

	cfg := Load()
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, StoreMemory, cfg.StoreBackend)
	assert.Equal(t, AuthJWT, cfg.AuthMode)
	assert.True(t, cfg.InlineModeration)
	assert.Equal(t, 5, cfg.TxMaxAttempts)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, "foo,bar", cfg.ExtraBannedTerms)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("TX_MAX_ATTEMPTS", "-3")
	t.Setenv("INLINE_MODERATION", "maybe")
	t.Setenv("LOG_LEVEL", "loud")

	cfg := Load()
	assert.Equal(t, 25, cfg.TxMaxAttempts)
	assert.False(t, cfg.InlineModeration)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}
