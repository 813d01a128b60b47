// Package desktop switches between the home and exercise windows and keeps
// the tray menu in step with the active breathing session.
package desktop

import (
	"context"
	"log/slog"

	"boxbreath/internal/core/breathing"
	"boxbreath/internal/core/model"
	"boxbreath/internal/route"
	"boxbreath/internal/session"
	"boxbreath/internal/ui/animation"
	"boxbreath/internal/ui/exercise"
	"boxbreath/internal/ui/home"
	"boxbreath/internal/ui/tray"

	"fyne.io/fyne/v2"
)

// SaveFunc persists settings after the user starts a session.
type SaveFunc func(model.Settings) error

// Navigator owns the desktop views. All methods must be called on the Fyne
// main goroutine.
type Navigator struct {
	ctx        context.Context
	app        fyne.App
	controller *session.Controller
	home       *home.Window
	exercise   *exercise.Window
	tray       *tray.Manager
	settings   model.Settings
	save       SaveFunc
	logger     *slog.Logger
	view       route.View
	sessionID  string
}

// NewNavigator builds both windows. Sessions are bound to ctx.
func NewNavigator(ctx context.Context, app fyne.App, controller *session.Controller, settings model.Settings, save SaveFunc, logger *slog.Logger) *Navigator {
	if logger == nil {
		logger = slog.Default()
	}
	navigator := &Navigator{
		ctx:        ctx,
		app:        app,
		controller: controller,
		settings:   settings,
		save:       save,
		logger:     logger,
		view:       route.ViewHome,
	}
	navigator.home = home.New(app, settings, navigator.Open)
	navigator.exercise = exercise.New(app, animation.DefaultConfig())
	navigator.exercise.SetOnBack(navigator.OpenHome)
	return navigator
}

// SetTray attaches the tray menu that mirrors session state.
func (navigator *Navigator) SetTray(manager *tray.Manager) {
	navigator.tray = manager
}

// SetOnHomeClose sets the handler for closing the home window.
func (navigator *Navigator) SetOnHomeClose(handler func()) {
	navigator.home.SetOnClose(handler)
}

// View returns the view currently shown.
func (navigator *Navigator) View() route.View {
	return navigator.view
}

// Settings returns the settings as last updated by a started session.
func (navigator *Navigator) Settings() model.Settings {
	return navigator.settings
}

// Open shows the view a link resolves to. Unparseable links show home.
func (navigator *Navigator) Open(link string) {
	resolved, err := route.ParseLink(link)
	if err != nil {
		navigator.logger.Warn("ignoring link", "link", link, "error", err)
		navigator.OpenHome()
		return
	}
	if resolved.View == route.ViewHome {
		navigator.OpenHome()
		return
	}
	navigator.openExercise(resolved.Session)
}

// OpenHome stops any running session and shows the home window.
func (navigator *Navigator) OpenHome() {
	navigator.controller.End()
	navigator.sessionID = ""
	navigator.exercise.Hide()
	navigator.setRunning(false)
	navigator.view = route.ViewHome
	navigator.home.Show()
}

// Hide stops any running session and hides every window.
func (navigator *Navigator) Hide() {
	navigator.StopSession()
	navigator.exercise.Hide()
	navigator.home.Hide()
}

// StartLast starts a session with the last used phase length and limit.
func (navigator *Navigator) StartLast() {
	config := navigator.settings.SessionConfig()
	navigator.Open(route.ExerciseLink(config.Limit.Pointer(), config.PhaseSeconds))
}

// StopSession stops the running session but leaves the exercise view open.
func (navigator *Navigator) StopSession() {
	navigator.controller.End()
	navigator.sessionID = ""
	navigator.setRunning(false)
}

func (navigator *Navigator) openExercise(config model.SessionConfig) {
	navigator.remember(config)
	navigator.home.Hide()
	navigator.exercise.Open(config.PhaseSeconds)
	navigator.view = route.ViewExercise
	navigator.setRunning(true)
	engine := navigator.controller.Begin(navigator.ctx, config, navigator.observe)
	navigator.sessionID = engine.ID()
}

// observe runs on the session goroutine. Events of a replaced session are
// dropped once they reach the main goroutine.
func (navigator *Navigator) observe(event breathing.Event) {
	fyne.Do(func() {
		navigator.render(event)
	})
}

func (navigator *Navigator) render(event breathing.Event) {
	if event.Session != navigator.sessionID {
		return
	}
	navigator.exercise.Render(event)
	if event.Type == breathing.EventFinished {
		navigator.sessionID = ""
	}
	if navigator.tray == nil {
		return
	}
	if event.Type == breathing.EventFinished {
		navigator.tray.SetRunning(false)
		return
	}
	navigator.tray.SetStatus(tray.StatusText(event))
}

func (navigator *Navigator) remember(config model.SessionConfig) {
	navigator.settings.PhaseSeconds = config.PhaseSeconds
	navigator.settings.LastLimit = config.Limit
	navigator.home.UpdateSettings(navigator.settings)
	if navigator.save == nil {
		return
	}
	if err := navigator.save(navigator.settings); err != nil {
		navigator.logger.Warn("save settings", "error", err)
	}
}

func (navigator *Navigator) setRunning(running bool) {
	if navigator.tray != nil {
		navigator.tray.SetRunning(running)
	}
}
