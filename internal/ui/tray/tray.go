package tray

import (
	"fmt"

	"boxbreath/internal/core/breathing"
	"boxbreath/internal/ui/animation"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnOpen      func()
	OnStartLast func()
	OnStop      func()
	OnQuit      func()
}

// Manager handles system tray state.
type Manager struct {
	app         desktop.App
	statusItem  *fyne.MenuItem
	startItem   *fyne.MenuItem
	stopItem    *fyne.MenuItem
	callbacks   Callbacks
	running     bool
	statusLabel string
	activeIcon  fyne.Resource
	idleIcon    fyne.Resource
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:         app,
		callbacks:   callbacks,
		statusLabel: "idle",
	}

	manager.statusItem = fyne.NewMenuItem("", nil)
	manager.statusItem.Disabled = true

	manager.startItem = fyne.NewMenuItem("Start last session", func() {
		if manager.callbacks.OnStartLast != nil {
			manager.callbacks.OnStartLast()
		}
	})

	manager.stopItem = fyne.NewMenuItem("Stop session", func() {
		if manager.callbacks.OnStop != nil {
			manager.callbacks.OnStop()
		}
	})
	manager.stopItem.Disabled = true

	manager.refreshStatus()
	return manager
}

// SetIcons sets the tray icons used while a session runs and while idle.
func (manager *Manager) SetIcons(active, idle fyne.Resource) {
	manager.activeIcon = active
	manager.idleIcon = idle
	manager.refreshIcon()
}

// SetStatus updates the status label.
func (manager *Manager) SetStatus(status string) {
	manager.statusLabel = status
	manager.refreshStatus()
}

// SetRunning toggles session-related menu items.
func (manager *Manager) SetRunning(running bool) {
	manager.running = running
	manager.stopItem.Disabled = !running
	manager.startItem.Disabled = running
	if !running {
		manager.statusLabel = "idle"
	}
	manager.refreshIcon()
	manager.refreshStatus()
}

// Running reports whether the menu is in its session-running state.
func (manager *Manager) Running() bool {
	return manager.running
}

// StatusText renders an engine event as a one-line tray status.
func StatusText(event breathing.Event) string {
	switch event.Type {
	case breathing.EventFinished:
		return fmt.Sprintf("finished after %s", event.Display.Elapsed)
	default:
		return fmt.Sprintf("%s %d · %s", animation.StyleFor(event.Phase).Label, event.Display.Countdown, event.Display.Elapsed)
	}
}

func (manager *Manager) refreshStatus() {
	manager.statusItem.Label = fmt.Sprintf("Status: %s", manager.statusLabel)
	manager.refreshMenu()
}

func (manager *Manager) refreshIcon() {
	if manager.app == nil {
		return
	}
	icon := manager.idleIcon
	if manager.running {
		icon = manager.activeIcon
	}
	if icon != nil {
		manager.app.SetSystemTrayIcon(icon)
	}
}

func (manager *Manager) refreshMenu() {
	if manager.app == nil {
		return
	}
	manager.app.SetSystemTrayMenu(fyne.NewMenu("Box Breathing",
		manager.statusItem,
		fyne.NewMenuItem("Open", func() {
			if manager.callbacks.OnOpen != nil {
				manager.callbacks.OnOpen()
			}
		}),
		manager.startItem,
		manager.stopItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() {
			if manager.callbacks.OnQuit != nil {
				manager.callbacks.OnQuit()
			}
		}),
	))
}
