package home

import (
	"errors"
	"fmt"
	"time"

	"boxbreath/internal/core/model"
	"boxbreath/internal/route"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Window is the start screen: phase length slider and session length choices.
type Window struct {
	window      fyne.Window
	settings    model.Settings
	onStart     func(link string)
	slider      *widget.Slider
	sliderValue *widget.Label
	customTime  *widget.Entry
	status      *widget.Label
}

// New creates the home window. onStart receives the exercise link to open.
func New(app fyne.App, settings model.Settings, onStart func(link string)) *Window {
	window := app.NewWindow("Box Breathing")
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}

	slider := widget.NewSlider(model.MinPhaseSeconds, model.MaxPhaseSeconds)
	slider.Step = 1
	slider.Value = float64(model.ClampPhaseSeconds(settings.PhaseSeconds))
	sliderValue := widget.NewLabel("")

	customTime := widget.NewEntry()
	customTime.SetPlaceHolder("minutes")

	status := widget.NewLabel("")

	home := &Window{
		window:      window,
		settings:    settings,
		onStart:     onStart,
		slider:      slider,
		sliderValue: sliderValue,
		customTime:  customTime,
		status:      status,
	}
	slider.OnChanged = func(float64) {
		home.refreshSliderLabel()
	}
	home.refreshSliderLabel()

	presets := container.NewGridWithColumns(len(route.Presets))
	for _, preset := range route.Presets {
		limit := preset.Limit
		presets.Add(widget.NewButton(preset.Label, func() {
			home.start(&limit)
		}))
	}

	startCustom := widget.NewButton("Start", home.startCustom)
	startInfinite := widget.NewButton("No time limit", func() {
		home.start(nil)
	})

	form := container.NewVBox(
		widget.NewLabelWithStyle("Box Breathing", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Phase duration"), layout.NewSpacer(), sliderValue),
		slider,
		widget.NewSeparator(),
		widget.NewLabel("Session length"),
		presets,
		container.NewBorder(nil, nil, nil, startCustom, customTime),
		startInfinite,
		status,
	)

	window.SetContent(container.NewPadded(form))
	window.Resize(fyne.NewSize(420, 380))

	return home
}

// Show displays the home window.
func (home *Window) Show() {
	home.status.SetText("")
	home.window.Show()
	home.window.RequestFocus()
}

// Hide closes the home window.
func (home *Window) Hide() {
	home.window.Hide()
}

// SetOnClose sets the handler run when the user closes the home window.
func (home *Window) SetOnClose(handler func()) {
	home.window.SetCloseIntercept(handler)
}

// UpdateSettings replaces window values.
func (home *Window) UpdateSettings(settings model.Settings) {
	home.settings = settings
	home.slider.SetValue(float64(model.ClampPhaseSeconds(settings.PhaseSeconds)))
	home.refreshSliderLabel()
}

func (home *Window) phaseSeconds() int {
	return model.ClampPhaseSeconds(int(home.slider.Value))
}

func (home *Window) refreshSliderLabel() {
	home.sliderValue.SetText(phaseLabel(home.phaseSeconds()))
}

func (home *Window) startCustom() {
	limit, err := route.CustomLimit(home.customTime.Text)
	if err != nil {
		if errors.Is(err, route.ErrInvalidCustomTime) {
			home.customTime.SetText("")
		}
		home.status.SetText(err.Error())
		return
	}
	home.start(&limit)
}

func (home *Window) start(limit *time.Duration) {
	if home.onStart != nil {
		home.onStart(route.ExerciseLink(limit, home.phaseSeconds()))
	}
}

func phaseLabel(seconds int) string {
	if seconds == 1 {
		return "1 second"
	}
	return fmt.Sprintf("%d seconds", seconds)
}
