package exercise

import (
	"context"
	"image/color"
	"strconv"
	"time"

	"boxbreath/internal/core/breathing"
	"boxbreath/internal/ui/animation"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const (
	getReadyText = "Get Ready..."
	finishedText = "Finished"
)

// Window renders a running breathing session.
type Window struct {
	window         fyne.Window
	totalLabel     *canvas.Text
	phaseLabel     *canvas.Text
	countdownLabel *canvas.Text
	dot            *canvas.Circle
	dotLayout      *dotLayout
	dotArea        *fyne.Container
	backButton     *widget.Button
	animator       *animation.Engine
	phaseDuration  time.Duration
	onBack         func()
}

// New creates the exercise window. It stays hidden until Open.
func New(app fyne.App, config animation.Config) *Window {
	window := app.NewWindow("Box Breathing")
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}

	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}

	totalLabel := canvas.NewText("00:00", white)
	totalLabel.Alignment = fyne.TextAlignCenter
	totalLabel.TextStyle = fyne.TextStyle{Monospace: true}
	totalLabel.TextSize = 18

	phaseLabel := canvas.NewText("", white)
	phaseLabel.Alignment = fyne.TextAlignCenter
	phaseLabel.TextStyle = fyne.TextStyle{Bold: true}
	phaseLabel.TextSize = 28

	countdownLabel := canvas.NewText("", white)
	countdownLabel.Alignment = fyne.TextAlignCenter
	countdownLabel.TextStyle = fyne.TextStyle{Bold: true}
	countdownLabel.TextSize = 40

	dot := canvas.NewCircle(animation.StyleFor(breathing.PhaseInhale).Color)
	layout := &dotLayout{scale: config.MinScale}
	dotArea := container.New(layout, dot)

	backButton := widget.NewButton("Back", nil)

	background := canvas.NewRectangle(color.NRGBA{R: 18, G: 24, B: 38, A: 255})
	content := container.NewBorder(
		totalLabel,
		backButton,
		nil,
		nil,
		container.NewStack(dotArea, container.NewVBox(phaseLabel, countdownLabel)),
	)
	window.SetContent(container.NewStack(background, content))
	window.Resize(fyne.NewSize(420, 560))

	exerciseWindow := &Window{
		window:         window,
		totalLabel:     totalLabel,
		phaseLabel:     phaseLabel,
		countdownLabel: countdownLabel,
		dot:            dot,
		dotLayout:      layout,
		dotArea:        dotArea,
		backButton:     backButton,
	}
	exerciseWindow.animator = animation.New(config, exerciseWindow.setDotScale)

	backButton.OnTapped = exerciseWindow.back
	// Closing the window must never leave the session timer running.
	window.SetCloseIntercept(exerciseWindow.back)

	return exerciseWindow
}

// SetOnBack sets the handler for the back button and window close.
func (exercise *Window) SetOnBack(handler func()) {
	exercise.onBack = handler
}

// Open shows the window in its get-ready state for a session.
func (exercise *Window) Open(phaseSeconds int) {
	exercise.phaseDuration = time.Duration(phaseSeconds) * time.Second
	exercise.animator.Reset()
	exercise.setTextUnsafe(exercise.phaseLabel, getReadyText)
	exercise.setTextUnsafe(exercise.countdownLabel, strconv.Itoa(phaseSeconds))
	exercise.setTextUnsafe(exercise.totalLabel, "00:00")
	exercise.window.Show()
	exercise.window.RequestFocus()
}

// Hide closes the window and stops the dot animation.
func (exercise *Window) Hide() {
	exercise.animator.Stop()
	exercise.window.Hide()
}

// HandleEvent renders an engine event. It may be called from any goroutine.
func (exercise *Window) HandleEvent(event breathing.Event) {
	fyne.Do(func() {
		exercise.Render(event)
	})
}

// Render applies an engine event to the window on the Fyne main goroutine.
func (exercise *Window) Render(event breathing.Event) {
	switch event.Type {
	case breathing.EventPhaseChange:
		style := animation.StyleFor(event.Phase)
		exercise.phaseLabel.Color = style.Color
		exercise.setTextUnsafe(exercise.phaseLabel, style.Label)
		exercise.dot.FillColor = style.Color
		exercise.dot.Refresh()
		exercise.setDisplayUnsafe(event.Display)
		exercise.animator.StartPhase(context.Background(), event.Phase, exercise.phaseDuration)
	case breathing.EventDisplay:
		exercise.setDisplayUnsafe(event.Display)
	case breathing.EventFinished:
		exercise.animator.Stop()
		exercise.phaseLabel.Color = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
		exercise.setTextUnsafe(exercise.phaseLabel, finishedText)
		exercise.setTextUnsafe(exercise.countdownLabel, "")
		exercise.setTextUnsafe(exercise.totalLabel, event.Display.Elapsed)
	}
}

func (exercise *Window) setDisplayUnsafe(display breathing.Display) {
	exercise.setTextUnsafe(exercise.totalLabel, display.Elapsed)
	exercise.setTextUnsafe(exercise.countdownLabel, strconv.Itoa(display.Countdown))
}

func (exercise *Window) setTextUnsafe(label *canvas.Text, text string) {
	label.Text = text
	label.Refresh()
}

func (exercise *Window) setDotScale(scale float32) {
	fyne.Do(func() {
		exercise.dotLayout.scale = scale
		exercise.dotArea.Refresh()
	})
}

func (exercise *Window) back() {
	if exercise.onBack != nil {
		exercise.onBack()
		return
	}
	exercise.Hide()
}

// dotLayout centers a single circle whose diameter is scale times the
// smaller side of the available area.
type dotLayout struct {
	scale float32
}

func (layout *dotLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	if len(objects) == 0 {
		return
	}
	side := size.Width
	if size.Height < side {
		side = size.Height
	}
	diameter := side * 0.8 * layout.scale
	if diameter < 0 {
		diameter = 0
	}
	dot := objects[0]
	dot.Resize(fyne.NewSize(diameter, diameter))
	dot.Move(fyne.NewPos((size.Width-diameter)/2, (size.Height-diameter)/2))
}

func (layout *dotLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	return fyne.NewSize(160, 160)
}
