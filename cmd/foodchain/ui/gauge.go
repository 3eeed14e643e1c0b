package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"foodchain/internal/risk"
)

// Gauge renders a horizontal risk gauge of the given width: a filled bar
// proportional to score/100, the numeric score, and the severity label.
// Width is the bar width in cells; anything under 10 is raised to 10.
func Gauge(score float64, width int) string {
	if width < 10 {
		width = 10
	}
	level := risk.Band(score)
	filled := int(risk.ArcFill(score) * float64(width))
	if filled > width {
		filled = width
	}

	bar := lipgloss.NewStyle().Foreground(LevelColor(level)).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(Faint).Render(strings.Repeat("░", width-filled))

	label := LevelStyle(level).Render(strings.ToUpper(level.String()))
	return fmt.Sprintf("%s %3.0f/100 %s", bar, score, label)
}

// Sparkline renders values as a one-line bar chart scaled to the series'
// own min/max. Empty input renders an empty string.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	ramp := []rune("▁▂▃▄▅▆▇█")
	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	span := max - min
	var b strings.Builder
	for _, v := range values {
		idx := 0
		if span > 0 {
			idx = int((v - min) / span * float64(len(ramp)-1))
		}
		b.WriteRune(ramp[idx])
	}
	return b.String()
}
