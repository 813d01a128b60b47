package breathing

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"boxbreath/internal/core/model"

	"github.com/google/uuid"
)

var (
	// ErrAlreadyRunning is reported when Start is called on a running session.
	ErrAlreadyRunning = errors.New("breathing session already running")
	// ErrSessionOver is reported when Start is called after Stop.
	ErrSessionOver = errors.New("breathing session already finished")
)

// Options contains runtime collaborators for Engine.
type Options struct {
	Logger *slog.Logger
	Now    func() time.Time
}

// Engine is the breathing-cycle state machine for a single session.
// It is driven by Tick and never touches presentation directly.
type Engine struct {
	mu             sync.Mutex
	id             string
	config         model.SessionConfig
	phaseDuration  time.Duration
	options        Options
	logger         *slog.Logger
	phaseIndex     int
	phaseRemaining time.Duration
	elapsed        time.Duration
	ending         bool
	running        bool
	finished       bool
	reason         StopReason
	events         []chan Event
}

// Snapshot is a copy of the engine state at one instant.
type Snapshot struct {
	Session        string
	Phase          Phase
	PhaseIndex     int
	PhaseRemaining time.Duration
	Elapsed        time.Duration
	Ending         bool
	Running        bool
	Display        Display
}

// New creates an Engine for one session. The phase length is clamped into
// the supported range regardless of what the caller supplies.
func New(config model.SessionConfig, options Options) *Engine {
	if options.Now == nil {
		options.Now = time.Now
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	config.PhaseSeconds = model.ClampPhaseSeconds(config.PhaseSeconds)

	id := uuid.NewString()
	engine := &Engine{
		id:            id,
		config:        config,
		phaseDuration: config.PhaseDuration(),
		options:       options,
		logger:        logger.With("session", id),
	}
	engine.resetLocked()
	return engine
}

// ID returns the session identifier attached to every event.
func (engine *Engine) ID() string {
	return engine.id
}

// Config returns the effective (clamped) session configuration.
func (engine *Engine) Config() model.SessionConfig {
	return engine.config
}

// Subscribe registers a new observer channel. Channels are closed when the
// session stops; subscribing to a finished session yields a closed channel.
func (engine *Engine) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.finished {
		close(ch)
		return ch
	}
	engine.events = append(engine.events, ch)
	return ch
}

// Start resets the session state and emits the initial phase change.
func (engine *Engine) Start() error {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.running {
		engine.logger.Warn("start ignored: session already running")
		return ErrAlreadyRunning
	}
	if engine.finished {
		engine.logger.Warn("start ignored: session already finished")
		return ErrSessionOver
	}

	engine.resetLocked()
	engine.running = true
	engine.logger.Info("breathing session started",
		"phase_seconds", engine.config.PhaseSeconds,
		"limited", engine.config.Limit.Enabled,
		"limit", engine.config.Limit.Duration,
	)
	engine.emitLocked(Event{
		Type:    EventPhaseChange,
		Phase:   engine.phaseLocked(),
		Display: engine.displayLocked(),
	})
	return nil
}

// Tick advances the session by delta. Non-positive deltas leave the state
// untouched. Ticks on a stopped engine are ignored.
func (engine *Engine) Tick(delta time.Duration) TickOutcome {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if !engine.running {
		return TickStopped
	}

	if delta > 0 {
		engine.phaseRemaining -= delta
		engine.elapsed += delta

		if engine.limitReachedLocked() {
			phase := engine.phaseLocked()
			if phase == PhaseWait || (phase == PhaseExhale && engine.phaseRemaining <= 0) {
				engine.stopLocked(StopCompleted)
				return TickStopped
			}
			engine.ending = true
			engine.logger.Debug("time limit reached mid-cycle, entering ending sequence",
				"phase", phase,
				"elapsed", engine.elapsed,
			)
		}

		if engine.phaseRemaining <= 0 {
			phase := engine.phaseLocked()
			if engine.ending && (phase == PhaseExhale || phase == PhaseWait) {
				engine.stopLocked(StopCompleted)
				return TickStopped
			}
			engine.advanceLocked()
		}
	}

	engine.emitLocked(Event{
		Type:    EventDisplay,
		Phase:   engine.phaseLocked(),
		Display: engine.displayLocked(),
	})
	return TickUpdated
}

// Stop ends the session on external request. It is safe to call at any
// point, including before Start and after a prior Stop. An engine stopped
// before Start is finished without a terminal event and can never start;
// Start then returns ErrSessionOver.
func (engine *Engine) Stop() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.stopLocked(StopCancelled)
}

// Running reports whether the session is between Start and Stop.
func (engine *Engine) Running() bool {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.running
}

// Reason returns why the session stopped, or "" while it has not.
func (engine *Engine) Reason() StopReason {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.reason
}

// Snapshot returns the current engine state.
func (engine *Engine) Snapshot() Snapshot {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return Snapshot{
		Session:        engine.id,
		Phase:          engine.phaseLocked(),
		PhaseIndex:     engine.phaseIndex,
		PhaseRemaining: engine.phaseRemaining,
		Elapsed:        engine.elapsed,
		Ending:         engine.ending,
		Running:        engine.running,
		Display:        engine.displayLocked(),
	}
}

func (engine *Engine) resetLocked() {
	engine.phaseIndex = 0
	engine.phaseRemaining = engine.phaseDuration
	engine.elapsed = 0
	engine.ending = false
}

func (engine *Engine) limitReachedLocked() bool {
	limit := engine.config.Limit
	return limit.Enabled && !engine.ending && engine.elapsed >= limit.Duration
}

// advanceLocked moves to the next phase, carrying the overshoot of the
// finished phase into the new one.
func (engine *Engine) advanceLocked() {
	engine.phaseIndex = (engine.phaseIndex + 1) % len(Phases)
	engine.phaseRemaining += engine.phaseDuration
	engine.emitLocked(Event{
		Type:    EventPhaseChange,
		Phase:   engine.phaseLocked(),
		Display: engine.displayLocked(),
	})
}

func (engine *Engine) stopLocked(reason StopReason) {
	if engine.finished {
		return
	}
	wasRunning := engine.running
	engine.running = false
	engine.finished = true
	engine.reason = reason

	if wasRunning {
		engine.logger.Info("breathing session finished",
			"reason", reason,
			"elapsed", engine.elapsed,
			"phase", engine.phaseLocked(),
		)
		engine.emitLocked(Event{
			Type:    EventFinished,
			Phase:   engine.phaseLocked(),
			Display: engine.displayLocked(),
			Reason:  reason,
		})
	}

	for _, ch := range engine.events {
		close(ch)
	}
	engine.events = nil
}

func (engine *Engine) phaseLocked() Phase {
	return Phases[engine.phaseIndex]
}

func (engine *Engine) displayLocked() Display {
	return Project(engine.elapsed, engine.phaseRemaining)
}

func (engine *Engine) emitLocked(event Event) {
	event.Session = engine.id
	event.At = engine.options.Now()
	for _, ch := range engine.events {
		select {
		case ch <- event:
		default:
			engine.logger.Warn("observer too slow, event dropped", "event", event.Type)
		}
	}
}
