package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvOverrides_Source(t *testing.T) {
	t.Run("QUOTEBOARD_SOURCE replaces location", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("QUOTEBOARD_SOURCE", "quotes/2024.csv")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "quotes/2024.csv", cfg.Source.Location)
	})

	t.Run("QUOTEBOARD_SHEET_URL wins over QUOTEBOARD_SOURCE", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("QUOTEBOARD_SOURCE", "local.csv")
		t.Setenv("QUOTEBOARD_SHEET_URL", "https://docs.google.com/spreadsheets/d/x/edit")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "https://docs.google.com/spreadsheets/d/x/edit", cfg.Source.Location)
	})

	t.Run("unset variables leave config alone", func(t *testing.T) {
		clearEnv(t)

		cfg := &Config{Source: SourceConfig{Location: "keep.csv"}}
		cfg.applyEnvOverrides()

		assert.Equal(t, "keep.csv", cfg.Source.Location)
		assert.Empty(t, cfg.UI.Theme)
		assert.False(t, cfg.Logging.DebugMode)
	})
}

func TestEnvOverrides_UIAndLogging(t *testing.T) {
	clearEnv(t)
	t.Setenv("QUOTEBOARD_DARK_MODE", "1")
	t.Setenv("QUOTEBOARD_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	assert.Equal(t, ThemeDark, cfg.UI.Theme)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.DebugMode)
}
