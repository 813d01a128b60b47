package animation

import (
	"image/color"

	"boxbreath/internal/core/breathing"
)

// PhaseStyle defines how a phase is presented.
type PhaseStyle struct {
	Label string
	Color color.NRGBA
	Hex   string
}

var phaseStyles = map[breathing.Phase]PhaseStyle{
	breathing.PhaseInhale: {Label: "Inhale", Color: color.NRGBA{R: 102, G: 187, B: 238, A: 255}, Hex: "#66BBEE"},
	breathing.PhaseHold:   {Label: "Hold", Color: color.NRGBA{R: 232, G: 190, B: 66, A: 255}, Hex: "#E8BE42"},
	breathing.PhaseExhale: {Label: "Exhale", Color: color.NRGBA{R: 120, G: 200, B: 140, A: 255}, Hex: "#78C88C"},
	breathing.PhaseWait:   {Label: "Wait", Color: color.NRGBA{R: 170, G: 150, B: 210, A: 255}, Hex: "#AA96D2"},
}

// StyleFor returns the presentation of a phase.
func StyleFor(phase breathing.Phase) PhaseStyle {
	if style, ok := phaseStyles[phase]; ok {
		return style
	}
	return PhaseStyle{Label: string(phase), Color: color.NRGBA{R: 255, G: 255, B: 255, A: 255}, Hex: "#FFFFFF"}
}

// TargetScale returns the dot size a phase animates towards: inhale grows,
// exhale shrinks, hold and wait keep the size reached by the previous phase.
func TargetScale(config Config, phase breathing.Phase) float32 {
	switch phase {
	case breathing.PhaseInhale, breathing.PhaseHold:
		return config.MaxScale
	default:
		return config.MinScale
	}
}
