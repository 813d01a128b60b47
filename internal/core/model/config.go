package model

import (
	"math"
	"time"
)

// Phase duration bounds, in whole seconds.
const (
	MinPhaseSeconds     = 3
	MaxPhaseSeconds     = 6
	DefaultPhaseSeconds = 4
)

// LimitConfig bounds the total length of a session.
type LimitConfig struct {
	Duration time.Duration
	Enabled  bool
}

// Pointer returns the limit duration, or nil when the session is unbounded.
func (limit LimitConfig) Pointer() *time.Duration {
	if !limit.Enabled {
		return nil
	}
	duration := limit.Duration
	return &duration
}

// SessionConfig contains the immutable settings of one breathing session.
type SessionConfig struct {
	PhaseSeconds int
	Limit        LimitConfig
}

// NewSessionConfig builds a clamped configuration. A nil limit means the
// session is unbounded.
func NewSessionConfig(phaseSeconds int, limit *time.Duration) SessionConfig {
	config := SessionConfig{PhaseSeconds: ClampPhaseSeconds(phaseSeconds)}
	if limit != nil {
		config.Limit = LimitConfig{Duration: *limit, Enabled: true}
	}
	return config
}

// PhaseDuration returns the clamped per-phase duration.
func (config SessionConfig) PhaseDuration() time.Duration {
	return time.Duration(ClampPhaseSeconds(config.PhaseSeconds)) * time.Second
}

// ScaleDuration returns value units, saturating at the largest representable
// duration of the same sign. ok is false when the product did not fit.
func ScaleDuration(value int, unit time.Duration) (scaled time.Duration, ok bool) {
	limit := int64(math.MaxInt64 / unit)
	switch {
	case int64(value) > limit:
		return time.Duration(math.MaxInt64), false
	case int64(value) < -limit:
		return time.Duration(-math.MaxInt64), false
	}
	return time.Duration(value) * unit, true
}

// ClampPhaseSeconds forces a phase length into [MinPhaseSeconds, MaxPhaseSeconds].
func ClampPhaseSeconds(seconds int) int {
	if seconds < MinPhaseSeconds {
		return MinPhaseSeconds
	}
	if seconds > MaxPhaseSeconds {
		return MaxPhaseSeconds
	}
	return seconds
}
