package exercise

import (
	"testing"

	"boxbreath/internal/core/breathing"
	"boxbreath/internal/ui/animation"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
)

func newTestWindow(t *testing.T) *Window {
	t.Helper()
	app := test.NewApp()
	t.Cleanup(app.Quit)
	window := New(app, animation.DefaultConfig())
	t.Cleanup(window.Hide)
	return window
}

func TestOpenShowsGetReady(t *testing.T) {
	window := newTestWindow(t)
	window.Open(5)

	assert.Equal(t, getReadyText, window.phaseLabel.Text)
	assert.Equal(t, "5", window.countdownLabel.Text)
	assert.Equal(t, "00:00", window.totalLabel.Text)
}

func TestRenderFollowsEvents(t *testing.T) {
	window := newTestWindow(t)
	window.Open(4)

	window.Render(breathing.Event{
		Type:    breathing.EventPhaseChange,
		Phase:   breathing.PhaseExhale,
		Display: breathing.Display{Elapsed: "00:08", Countdown: 4},
	})
	assert.Equal(t, "Exhale", window.phaseLabel.Text)
	assert.Equal(t, animation.StyleFor(breathing.PhaseExhale).Color, window.dot.FillColor)

	window.Render(breathing.Event{
		Type:    breathing.EventDisplay,
		Phase:   breathing.PhaseExhale,
		Display: breathing.Display{Elapsed: "00:10", Countdown: 2},
	})
	assert.Equal(t, "2", window.countdownLabel.Text)
	assert.Equal(t, "00:10", window.totalLabel.Text)

	window.Render(breathing.Event{
		Type:    breathing.EventFinished,
		Reason:  breathing.StopCompleted,
		Display: breathing.Display{Elapsed: "00:12"},
	})
	assert.Equal(t, finishedText, window.phaseLabel.Text)
	assert.Empty(t, window.countdownLabel.Text)
	assert.Equal(t, "00:12", window.totalLabel.Text)
}

func TestBackRunsHandler(t *testing.T) {
	window := newTestWindow(t)
	called := 0
	window.SetOnBack(func() { called++ })

	test.Tap(window.backButton)
	assert.Equal(t, 1, called)
}
