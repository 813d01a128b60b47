package animation

import (
	"context"
	"sync"
	"time"

	"boxbreath/internal/core/breathing"
)

// Config contains dot animation values.
type Config struct {
	MinScale      float32
	MaxScale      float32
	FrameInterval time.Duration
}

// Engine animates the breathing dot. Each phase change restarts the
// transition with a duration equal to the phase length.
type Engine struct {
	mu          sync.Mutex
	config      Config
	updateScale func(float32)
	scale       float32
	cancel      context.CancelFunc
}

// New creates a new animation engine resting at the minimum scale.
func New(config Config, updateScale func(float32)) *Engine {
	if config.FrameInterval <= 0 {
		config.FrameInterval = DefaultConfig().FrameInterval
	}
	return &Engine{
		config:      config,
		updateScale: updateScale,
		scale:       config.MinScale,
	}
}

// Scale returns the last scale pushed to the view.
func (engine *Engine) Scale() float32 {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.scale
}

// StartPhase animates from the current scale to the phase target over duration.
func (engine *Engine) StartPhase(ctx context.Context, phase breathing.Phase, duration time.Duration) {
	target := TargetScale(engine.config, phase)
	engine.start(ctx, func(runCtx context.Context) {
		engine.runTransition(runCtx, target, duration)
	})
}

// Reset cancels any transition and snaps back to the minimum scale.
func (engine *Engine) Reset() {
	engine.Stop()
	engine.setScale(engine.config.MinScale)
}

// Stop terminates any active animation.
func (engine *Engine) Stop() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.cancel != nil {
		engine.cancel()
		engine.cancel = nil
	}
}

func (engine *Engine) start(parent context.Context, run func(context.Context)) {
	engine.mu.Lock()
	if engine.cancel != nil {
		engine.cancel()
	}
	runCtx, cancel := context.WithCancel(parent)
	engine.cancel = cancel
	engine.mu.Unlock()

	go run(runCtx)
}

func (engine *Engine) runTransition(ctx context.Context, target float32, duration time.Duration) {
	from := engine.Scale()
	if duration <= 0 || from == target {
		engine.setScale(target)
		return
	}

	start := time.Now()
	for {
		progress := float32(time.Since(start)) / float32(duration)
		if progress >= 1 {
			engine.setScaleIfLive(ctx, target)
			return
		}
		if !engine.setScaleIfLive(ctx, from+(target-from)*easeInOut(progress)) {
			return
		}
		if !sleepWithContext(ctx, engine.config.FrameInterval) {
			return
		}
	}
}

func (engine *Engine) setScaleIfLive(ctx context.Context, scale float32) bool {
	if ctx.Err() != nil {
		return false
	}
	engine.setScale(scale)
	return true
}

func (engine *Engine) setScale(scale float32) {
	engine.mu.Lock()
	engine.scale = scale
	update := engine.updateScale
	engine.mu.Unlock()
	if update != nil {
		update(scale)
	}
}

// easeInOut matches the CSS ease-in-out feel of the breathing dot.
func easeInOut(progress float32) float32 {
	if progress < 0.5 {
		return 2 * progress * progress
	}
	return 1 - (-2*progress+2)*(-2*progress+2)/2
}

func sleepWithContext(ctx context.Context, duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
