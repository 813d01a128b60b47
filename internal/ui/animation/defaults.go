package animation

import "time"

// DefaultConfig returns the dot sizes used by the desktop and terminal views.
func DefaultConfig() Config {
	return Config{
		MinScale:      0.35,
		MaxScale:      1,
		FrameInterval: 16 * time.Millisecond,
	}
}
