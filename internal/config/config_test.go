package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "LOG_LEVEL", "LOG_FORMAT", "MAX_ATTEMPTS", "WORDS_FILE", "PUBLIC_URL",
		"DATABASE_URL", "ALLOWED_ORIGINS", "REAP_EMPTY_ROOMS", "EVENT_RATE", "EVENT_BURST"} {
		t.Setenv(k, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, Config{
		Port:           "3000",
		LogLevel:       "info",
		LogFormat:      "json",
		MaxAttempts:    3,
		PublicURL:      "http://localhost:3000",
		AllowedOrigins: []string{"*"},
		ReapEmptyRooms: true,
		EventRate:      10,
		EventBurst:     20,
	}, cfg)
	assert.Equal(t, ":3000", cfg.Addr())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("LOG_FORMAT", "console")
	t.Setenv("MAX_ATTEMPTS", "5")
	t.Setenv("REAP_EMPTY_ROOMS", "false")
	t.Setenv("ALLOWED_ORIGINS", "localhost:5173, devine.example")
	t.Setenv("EVENT_RATE", "2.5")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.False(t, cfg.ReapEmptyRooms)
	assert.Equal(t, []string{"localhost:5173", "devine.example"}, cfg.AllowedOrigins)
	assert.InDelta(t, 2.5, cfg.EventRate, 1e-9)
}

func TestFromEnv_ReportsEveryBadValue(t *testing.T) {
	t.Setenv("MAX_ATTEMPTS", "three")
	t.Setenv("REAP_EMPTY_ROOMS", "maybe")
	t.Setenv("EVENT_BURST", "lots")
	t.Setenv("LOG_FORMAT", "xml")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 4)
	assert.Contains(t, err.Error(), "MAX_ATTEMPTS")
	assert.Contains(t, err.Error(), "LOG_FORMAT")
}

func TestFromEnv_RejectsZeroAttempts(t *testing.T) {
	t.Setenv("MAX_ATTEMPTS", "0")
	_, err := FromEnv()
	assert.ErrorContains(t, err, "at least 1")
}
