// Package terminal renders a breathing session in the terminal.
package terminal

import (
	"context"
	"strconv"
	"strings"

	"boxbreath/internal/core/breathing"
	"boxbreath/internal/core/model"
	"boxbreath/internal/ui/animation"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	dotWidth     = 24
	getReadyText = "Get Ready..."
	finishedText = "Finished"
)

type eventMsg struct {
	event breathing.Event
}

type scaleMsg float32

// Model is the bubbletea model of one session.
type Model struct {
	config   model.SessionConfig
	animator *animation.Engine
	cancel   func()
	started  bool
	finished bool
	phase    breathing.Phase
	display  breathing.Display
	reason   breathing.StopReason
	scale    float32
}

// NewModel creates the model. cancel must stop the session without blocking.
func NewModel(config model.SessionConfig, animator *animation.Engine, cancel func()) Model {
	return Model{
		config:   config,
		animator: animator,
		cancel:   cancel,
		phase:    breathing.PhaseInhale,
		display:  breathing.Display{Elapsed: breathing.FormatElapsed(0), Countdown: config.PhaseSeconds},
		scale:    animator.Scale(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quit()
			return m, tea.Quit
		}
	case eventMsg:
		return m.handleEvent(msg.event), nil
	case scaleMsg:
		m.scale = float32(msg)
	}
	return m, nil
}

func (m Model) handleEvent(event breathing.Event) Model {
	switch event.Type {
	case breathing.EventPhaseChange:
		m.started = true
		m.phase = event.Phase
		m.display = event.Display
		m.animator.StartPhase(context.Background(), event.Phase, m.config.PhaseDuration())
	case breathing.EventDisplay:
		m.display = event.Display
	case breathing.EventFinished:
		m.finished = true
		m.reason = event.Reason
		m.display = event.Display
		m.animator.Stop()
	}
	return m
}

func (m Model) quit() {
	m.animator.Stop()
	if m.cancel != nil {
		m.cancel()
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var label, countdown string
	switch {
	case m.finished:
		label = titleStyle.Render(finishedText)
	case !m.started:
		label = titleStyle.Render(getReadyText)
		countdown = countdownStyle.Render(strconv.Itoa(m.config.PhaseSeconds))
	default:
		label = phaseStyle(m.phase).Render(animation.StyleFor(m.phase).Label)
		countdown = countdownStyle.Render(strconv.Itoa(m.display.Countdown))
	}

	lines := []string{
		titleStyle.Render("Box Breathing") + "  " + timerStyle.Render(m.display.Elapsed),
		"",
		label,
		countdown,
		"",
		phaseStyle(m.phase).Render(m.dot()),
		"",
		helpStyle.Render(m.help()),
	}
	return frameStyle.Render(lipgloss.JoinVertical(lipgloss.Center, lines...)) + "\n"
}

func (m Model) dot() string {
	width := int(m.scale*dotWidth + 0.5)
	if width < 1 {
		width = 1
	}
	padding := (dotWidth - width) / 2
	return strings.Repeat(" ", padding) + strings.Repeat("●", width) + strings.Repeat(" ", dotWidth-width-padding)
}

func (m Model) help() string {
	if m.finished {
		return "q to exit"
	}
	if m.config.Limit.Enabled {
		return "session " + breathing.FormatElapsed(m.config.Limit.Duration) + " · q to stop"
	}
	return "q to stop"
}
