package breathing

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Ticker is the part of time.Ticker the runner depends on.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock reads wall-clock time and schedules ticks.
type Clock interface {
	Now() time.Time
	NewTicker(interval time.Duration) Ticker
	After(delay time.Duration) <-chan time.Time
}

// SystemClock is the real-time Clock.
type SystemClock struct{}

type systemTicker struct {
	ticker *time.Ticker
}

func (SystemClock) Now() time.Time {
	return time.Now()
}

func (SystemClock) NewTicker(interval time.Duration) Ticker {
	return systemTicker{ticker: time.NewTicker(interval)}
}

func (SystemClock) After(delay time.Duration) <-chan time.Time {
	return time.After(delay)
}

func (ticker systemTicker) C() <-chan time.Time {
	return ticker.ticker.C
}

func (ticker systemTicker) Stop() {
	ticker.ticker.Stop()
}

// RunnerConfig contains the scheduling options of a Runner.
type RunnerConfig struct {
	TickInterval  time.Duration
	GetReadyDelay time.Duration
	Clock         Clock
}

// Runner drives an Engine from a periodic tick source. Each tick feeds the
// engine the wall-clock time measured since the previous tick, so timing
// stays accurate whatever the actual tick cadence is.
type Runner struct {
	engine *Engine
	config RunnerConfig
}

// NewRunner creates a Runner for the engine.
func NewRunner(engine *Engine, config RunnerConfig) *Runner {
	if config.TickInterval <= 0 {
		config.TickInterval = 100 * time.Millisecond
	}
	if config.Clock == nil {
		config.Clock = SystemClock{}
	}
	return &Runner{engine: engine, config: config}
}

// Engine returns the driven engine.
func (runner *Runner) Engine() *Engine {
	return runner.engine
}

// Run waits for the get-ready delay, starts the engine and ticks it until the
// session stops. Cancelling ctx stops the engine with StopCancelled, also
// during the get-ready delay, in which case the session never starts.
func (runner *Runner) Run(ctx context.Context) (StopReason, error) {
	clock := runner.config.Clock

	if runner.config.GetReadyDelay > 0 {
		select {
		case <-ctx.Done():
			runner.engine.Stop()
			return StopCancelled, nil
		case <-clock.After(runner.config.GetReadyDelay):
		}
	}

	if err := runner.engine.Start(); err != nil {
		if errors.Is(err, ErrSessionOver) {
			return runner.engine.Reason(), nil
		}
		return "", fmt.Errorf("start session: %w", err)
	}

	lastTick := clock.Now()
	ticker := clock.NewTicker(runner.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			runner.engine.Stop()
			return runner.engine.Reason(), nil
		case <-ticker.C():
			now := clock.Now()
			delta := now.Sub(lastTick)
			lastTick = now
			if runner.engine.Tick(delta) == TickStopped {
				return runner.engine.Reason(), nil
			}
		}
	}
}
