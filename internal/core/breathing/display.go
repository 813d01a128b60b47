package breathing

import (
	"fmt"
	"time"
)

// Display holds the values a renderer shows while a session runs.
type Display struct {
	Elapsed   string
	Countdown int
}

// Project computes the displayable values for the given engine times.
func Project(elapsed, phaseRemaining time.Duration) Display {
	return Display{
		Elapsed:   FormatElapsed(elapsed),
		Countdown: PhaseCountdown(phaseRemaining),
	}
}

// FormatElapsed floors the duration to whole seconds and renders it as MM:SS.
// Minutes are not wrapped at 60.
func FormatElapsed(elapsed time.Duration) string {
	if elapsed < 0 {
		elapsed = 0
	}
	seconds := int64(elapsed / time.Second)
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// PhaseCountdown rounds the remaining phase time up to whole seconds so the
// value reaches zero only when the phase actually ends. Negative values read 0.
func PhaseCountdown(remaining time.Duration) int {
	if remaining <= 0 {
		return 0
	}
	seconds := remaining / time.Second
	if remaining%time.Second != 0 {
		seconds++
	}
	return int(seconds)
}
