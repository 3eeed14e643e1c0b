// Package ui provides the shared visual styling for the FoodChain dashboards.
package ui

import (
	"github.com/charmbracelet/lipgloss"

	"foodchain/internal/risk"
)

// Color palette shared by all three dashboards.
var (
	Background = lipgloss.Color("#0a0a0a")
	Foreground = lipgloss.Color("#f2f2f2")
	Muted      = lipgloss.Color("#6b7280")
	Faint      = lipgloss.Color("#3f4652")
	Border     = lipgloss.Color("#2a3850")
	Card       = lipgloss.Color("#141d2b")

	Green  = lipgloss.Color("#8BC34A")
	Yellow = lipgloss.Color("#FFC107")
	Orange = lipgloss.Color("#FF9800")
	Red    = lipgloss.Color("#e53935")
	Blue   = lipgloss.Color("#2196F3")

	// Chart line colors, one per vendor series.
	ChartColors = []lipgloss.Color{
		lipgloss.Color("#4db6ac"),
		lipgloss.Color("#ffd54f"),
		lipgloss.Color("#ff8a65"),
	}
)

// Reusable styles.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Green)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(Muted)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 1)

	ActiveCardStyle = CardStyle.Copy().
			BorderForeground(Green)

	TabStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Padding(0, 1)

	ActiveTabStyle = lipgloss.NewStyle().
			Foreground(Foreground).
			Background(Card).
			Bold(true).
			Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red).
			Bold(true)

	GoodStyle = lipgloss.NewStyle().
			Foreground(Green)

	BadStyle = lipgloss.NewStyle().
			Foreground(Red)

	HelpStyle = lipgloss.NewStyle().
			Foreground(Faint)
)

// LevelColor maps a risk severity to its display color. The same mapping
// colors signal cards, the gauge, and scenario badges.
func LevelColor(l risk.Level) lipgloss.Color {
	switch l {
	case risk.Critical:
		return Red
	case risk.High:
		return Orange
	case risk.Moderate:
		return Yellow
	default:
		return Green
	}
}

// LevelStyle returns a bold style in the severity's color.
func LevelStyle(l risk.Level) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(LevelColor(l))
}
