package storage

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"boxbreath/internal/core/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsFileMissingReturnsDefaults(t *testing.T) {
	settings, err := LoadSettingsFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), settings)
}

func TestSettingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boxbreath", settingsFileName)
	settings := model.Settings{
		PhaseSeconds:  6,
		LastLimit:     model.LimitConfig{Duration: 5 * time.Minute, Enabled: true},
		TickInterval:  50 * time.Millisecond,
		GetReadyDelay: 0,
		LogLevel:      "DEBUG",
	}

	require.NoError(t, SaveSettingsFile(path, settings))
	loaded, err := LoadSettingsFile(path)
	require.NoError(t, err)
	assert.Equal(t, settings, loaded)
}

func TestLoadSettingsFileSanitizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), settingsFileName)
	raw := []byte("phase_seconds: 42\nlast_limit_seconds: -5\ntick_interval_ms: 5000\nlog_level: LOUD\n")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	settings, err := LoadSettingsFile(path)
	require.NoError(t, err)

	defaults := model.DefaultSettings()
	assert.Equal(t, model.MaxPhaseSeconds, settings.PhaseSeconds)
	assert.False(t, settings.LastLimit.Enabled)
	assert.Equal(t, defaults.TickInterval, settings.TickInterval)
	assert.Equal(t, defaults.GetReadyDelay, settings.GetReadyDelay)
	assert.Equal(t, defaults.LogLevel, settings.LogLevel)
}

func TestLoadSettingsFileInvalidYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), settingsFileName)
	require.NoError(t, os.WriteFile(path, []byte("phase_seconds: [1, 2"), 0o644))

	settings, err := LoadSettingsFile(path)
	assert.Error(t, err)
	assert.Equal(t, model.DefaultSettings(), settings)
}

func TestSaveSettingsFileUnboundedOmitsLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), settingsFileName)
	require.NoError(t, SaveSettingsFile(path, model.DefaultSettings()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "last_limit_seconds")
	assert.Contains(t, string(raw), "phase_seconds: 4")
}

func TestLoadSettingsFileHugeValuesDoNotWrap(t *testing.T) {
	path := filepath.Join(t.TempDir(), settingsFileName)
	raw := []byte("last_limit_seconds: 10000000000\nget_ready_delay_ms: 10000000000000000\n")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	settings, err := LoadSettingsFile(path)
	require.NoError(t, err)
	assert.True(t, settings.LastLimit.Enabled)
	assert.Equal(t, time.Duration(math.MaxInt64), settings.LastLimit.Duration)
	assert.Equal(t, model.DefaultSettings().GetReadyDelay, settings.GetReadyDelay)
}
