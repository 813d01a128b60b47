package terminal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"boxbreath/internal/core/breathing"
	"boxbreath/internal/core/model"
	"boxbreath/internal/session"
	"boxbreath/internal/ui/animation"

	tea "github.com/charmbracelet/bubbletea"
)

// frameInterval is the dot redraw cadence in the terminal.
const frameInterval = 100 * time.Millisecond

// App wraps the bubbletea program of one session.
type App struct {
	controller *session.Controller
	config     model.SessionConfig
	logger     *slog.Logger
	options    []tea.ProgramOption
}

// New creates a terminal app. Without options the program takes the
// alternate screen.
func New(controller *session.Controller, config model.SessionConfig, logger *slog.Logger, options ...tea.ProgramOption) *App {
	if logger == nil {
		logger = slog.Default()
	}
	if len(options) == 0 {
		options = []tea.ProgramOption{tea.WithAltScreen()}
	}
	return &App{
		controller: controller,
		config:     config,
		logger:     logger,
		options:    options,
	}
}

// Run shows the session until it is stopped from the keyboard or ctx is done,
// and returns why the session ended.
func (a *App) Run(ctx context.Context) (breathing.StopReason, error) {
	sessionCtx, stopSession := context.WithCancel(ctx)
	defer stopSession()

	var program *tea.Program
	animationConfig := animation.DefaultConfig()
	animationConfig.FrameInterval = frameInterval
	animator := animation.New(animationConfig, func(scale float32) {
		program.Send(scaleMsg(scale))
	})

	program = tea.NewProgram(NewModel(a.config, animator, stopSession), append(a.options, tea.WithContext(ctx))...)
	engine := a.controller.Begin(sessionCtx, a.config, func(event breathing.Event) {
		program.Send(eventMsg{event: event})
	})
	a.logger.Debug("terminal session opened", "session", engine.ID())

	_, err := program.Run()
	animator.Stop()
	a.controller.End()

	reason := engine.Reason()
	if err != nil && ctx.Err() == nil {
		return reason, fmt.Errorf("run terminal program: %w", err)
	}
	return reason, nil
}
