package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"foodchain/internal/forecast"
)

// PriceChart renders a forecast chart as one line per vendor: the observed
// prices as a solid sparkline, a separator, then the predicted tail. Gaps
// in the observed series are carried forward so the sparkline stays aligned
// with the date axis.
func PriceChart(ch forecast.Chart) string {
	if len(ch.Series) == 0 {
		return SubtitleStyle.Render("no price history yet")
	}

	var b strings.Builder
	for i, s := range ch.Series {
		color := ChartColors[i%len(ChartColors)]
		style := lipgloss.NewStyle().Foreground(color)

		real := fillGaps(s.Real)
		line := style.Render(Sparkline(real)) +
			HelpStyle.Render("┆") +
			style.Faint(true).Render(Sparkline(s.Forecast))

		last := "–"
		if len(real) > 0 {
			last = fmt.Sprintf("₹%.0f", real[len(real)-1])
		}
		end := fmt.Sprintf("₹%.1f", s.Forecast[len(s.Forecast)-1])

		b.WriteString(fmt.Sprintf("%-14s %s  %s → %s\n",
			truncate(s.Vendor, 14), line, last, end))
	}
	if len(ch.Labels) > 0 {
		b.WriteString(HelpStyle.Render(fmt.Sprintf("%s … %s (last %d = forecast)",
			ch.Labels[0], ch.Labels[len(ch.Labels)-1], forecast.Horizon)))
	}
	return strings.TrimRight(b.String(), "\n")
}

// fillGaps replaces nil observations with the previous known price so the
// sparkline keeps one cell per date. Leading gaps collapse to the first
// known value.
func fillGaps(real []*float64) []float64 {
	out := make([]float64, 0, len(real))
	prev := 0.0
	seen := false
	for _, p := range real {
		if p != nil {
			prev = *p
			seen = true
		}
		if seen {
			out = append(out, prev)
		}
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
