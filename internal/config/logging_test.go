package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLogDefaults(t *testing.T) {
	cfg, err := LoadLog()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, 10, cfg.MaxMB)
	assert.Equal(t, 3, cfg.MaxBackups)
}

func TestLoadLogParse(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FILE", "/tmp/farmwatch.log")

	cfg, err := LoadLog()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, "/tmp/farmwatch.log", cfg.File)
}
