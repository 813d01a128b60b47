package terminal

import (
	"boxbreath/internal/core/breathing"
	"boxbreath/internal/ui/animation"

	"github.com/charmbracelet/lipgloss"
)

var (
	mutedColor = lipgloss.Color("#9CA3AF")
	textColor  = lipgloss.Color("#F9FAFB")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)

	timerStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	countdownStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(1, 4)
)

func phaseStyle(phase breathing.Phase) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(animation.StyleFor(phase).Hex))
}
