// Package session owns the lifecycle of the breathing session shown by a view.
// At most one session is active: beginning a new one stops the previous one
// and waits for its driver to exit before the new engine is created.
package session

import (
	"context"
	"log/slog"
	"sync"

	"boxbreath/internal/core/breathing"
	"boxbreath/internal/core/model"
)

// Observer receives every engine event of the active session, in order, on a
// dedicated goroutine.
type Observer func(breathing.Event)

// Controller starts and stops breathing sessions for a view.
type Controller struct {
	mu      sync.Mutex
	runner  breathing.RunnerConfig
	logger  *slog.Logger
	current *active
}

type active struct {
	engine *breathing.Engine
	cancel context.CancelFunc
	done   chan struct{}
}

// NewController creates a Controller whose sessions are driven with the
// given runner configuration.
func NewController(runner breathing.RunnerConfig, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{runner: runner, logger: logger}
}

// Begin stops any active session and starts a new one. The returned engine
// may still be in its get-ready delay.
func (controller *Controller) Begin(ctx context.Context, config model.SessionConfig, observer Observer) *breathing.Engine {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	controller.endLocked()

	engine := breathing.New(config, breathing.Options{Logger: controller.logger})
	events := engine.Subscribe(64)
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for event := range events {
			if observer != nil {
				observer(event)
			}
		}
	}()
	go func() {
		defer wg.Done()
		reason, err := breathing.NewRunner(engine, controller.runner).Run(runCtx)
		if err != nil {
			controller.logger.Error("breathing session failed", "session", engine.ID(), "error", err)
			engine.Stop()
			return
		}
		controller.logger.Debug("breathing session driver exited", "session", engine.ID(), "reason", reason)
	}()
	go func() {
		wg.Wait()
		close(done)
	}()

	controller.current = &active{engine: engine, cancel: cancel, done: done}
	return engine
}

// End stops the active session, if any, and waits until its observer has
// seen the last event. Safe to call repeatedly.
func (controller *Controller) End() {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	controller.endLocked()
}

// Active returns the engine of the active session, or nil.
func (controller *Controller) Active() *breathing.Engine {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.current == nil {
		return nil
	}
	return controller.current.engine
}

// Done returns a channel closed when the active session's driver and observer
// have both exited. It returns nil when nothing is active.
func (controller *Controller) Done() <-chan struct{} {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.current == nil {
		return nil
	}
	return controller.current.done
}

func (controller *Controller) endLocked() {
	if controller.current == nil {
		return
	}
	current := controller.current
	controller.current = nil
	current.cancel()
	current.engine.Stop()
	<-current.done
}
