package model

import "time"

// Settings defines user preferences that survive restarts.
type Settings struct {
	PhaseSeconds  int
	LastLimit     LimitConfig
	TickInterval  time.Duration
	GetReadyDelay time.Duration
	LogLevel      string
}

// DefaultSettings returns default settings for boxbreath.
func DefaultSettings() Settings {
	return Settings{
		PhaseSeconds:  DefaultPhaseSeconds,
		TickInterval:  100 * time.Millisecond,
		GetReadyDelay: 1500 * time.Millisecond,
		LogLevel:      "INFO",
	}
}

// SessionConfig converts settings to a SessionConfig using the last limit.
func (settings Settings) SessionConfig() SessionConfig {
	return SessionConfig{
		PhaseSeconds: ClampPhaseSeconds(settings.PhaseSeconds),
		Limit:        settings.LastLimit,
	}
}
