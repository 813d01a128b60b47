package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"boxbreath/internal/core/model"
	"boxbreath/internal/logging"

	"gopkg.in/yaml.v3"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	PhaseSeconds        int    `yaml:"phase_seconds"`
	LastLimitSeconds    *int   `yaml:"last_limit_seconds,omitempty"`
	TickIntervalMillis  int    `yaml:"tick_interval_ms"`
	GetReadyDelayMillis *int   `yaml:"get_ready_delay_ms,omitempty"`
	LogLevel            string `yaml:"log_level"`
}

// LoadSettings reads user preferences from YAML.
// If the config file does not exist, default settings are returned.
func LoadSettings(appName string) (model.Settings, error) {
	configPath, err := SettingsPath(appName)
	if err != nil {
		return model.DefaultSettings(), err
	}
	return LoadSettingsFile(configPath)
}

// LoadSettingsFile reads user preferences from the YAML file at configPath.
func LoadSettingsFile(configPath string) (model.Settings, error) {
	settings := model.DefaultSettings()

	rawData, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes user preferences to YAML.
func SaveSettings(appName string, settings model.Settings) error {
	configPath, err := SettingsPath(appName)
	if err != nil {
		return err
	}
	return SaveSettingsFile(configPath, settings)
}

// SaveSettingsFile writes user preferences to the YAML file at configPath.
func SaveSettingsFile(configPath string, settings model.Settings) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	getReady := int(settings.GetReadyDelay / time.Millisecond)
	fileData := yamlSettings{
		PhaseSeconds:        model.ClampPhaseSeconds(settings.PhaseSeconds),
		TickIntervalMillis:  int(settings.TickInterval / time.Millisecond),
		GetReadyDelayMillis: &getReady,
		LogLevel:            settings.LogLevel,
	}
	if settings.LastLimit.Enabled {
		seconds := int(settings.LastLimit.Duration / time.Second)
		fileData.LastLimitSeconds = &seconds
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(configPath, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

// SettingsPath returns the settings file location for the application.
func SettingsPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

func applyYamlSettings(settings *model.Settings, fileData yamlSettings) {
	if fileData.PhaseSeconds > 0 {
		settings.PhaseSeconds = model.ClampPhaseSeconds(fileData.PhaseSeconds)
	}
	if fileData.LastLimitSeconds != nil && *fileData.LastLimitSeconds > 0 {
		limit, _ := model.ScaleDuration(*fileData.LastLimitSeconds, time.Second)
		settings.LastLimit = model.LimitConfig{Duration: limit, Enabled: true}
	}
	if fileData.TickIntervalMillis >= 10 && fileData.TickIntervalMillis <= 1000 {
		settings.TickInterval = time.Duration(fileData.TickIntervalMillis) * time.Millisecond
	}
	if fileData.GetReadyDelayMillis != nil && *fileData.GetReadyDelayMillis >= 0 {
		if delay, ok := model.ScaleDuration(*fileData.GetReadyDelayMillis, time.Millisecond); ok {
			settings.GetReadyDelay = delay
		}
	}

	switch fileData.LogLevel {
	case logging.LevelDebug, logging.LevelInfo, logging.LevelWarn, logging.LevelError:
		settings.LogLevel = fileData.LogLevel
	}
}
