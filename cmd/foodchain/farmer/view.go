package farmer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"foodchain/cmd/foodchain/ui"
	"foodchain/internal/dispatch"
	"foodchain/internal/forecast"
	"foodchain/internal/types"
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.viewHeader())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch {
	case m.processing:
		b.WriteString(m.spin.View() + ui.SubtitleStyle.Render(" thinking..."))
	case m.env != nil:
		b.WriteString(m.viewEnvelope(m.env))
	default:
		b.WriteString(ui.SubtitleStyle.Render("Ask about prices, selling, weather or your crops. Ctrl+H for examples."))
	}

	if m.showHelp {
		b.WriteString("\n\n")
		b.WriteString(m.viewHelp())
	}

	b.WriteString("\n\n")
	b.WriteString(ui.HelpStyle.Render(
		"enter send · ctrl+v voice · ctrl+s stop speech · tab vendor · ctrl+h help · esc quit"))
	return b.String()
}

func (m Model) viewHeader() string {
	title := ui.TitleStyle.Render("🌾 FoodChain · Farmer")
	loc := ui.SubtitleStyle.Render(fmt.Sprintf("%.4f, %.4f", m.pos.Lat, m.pos.Lng))

	var flags []string
	if m.pipeline.Listening() {
		flags = append(flags, ui.BadStyle.Render("● listening"))
	}
	if m.pipeline.Speaking() {
		flags = append(flags, ui.GoodStyle.Render("🔊 speaking"))
	}
	line := title + "  " + loc
	if len(flags) > 0 {
		line += "  " + strings.Join(flags, "  ")
	}
	return line
}

// viewEnvelope renders exactly one variant. Each branch is a pure function
// of its variant's fields.
func (m Model) viewEnvelope(env *dispatch.Envelope) string {
	switch env.Variant {
	case dispatch.VariantSellAnalysis:
		return m.viewSellAnalysis(env)
	case dispatch.VariantGrowConfirm:
		return ui.CardStyle.Render(fmt.Sprintf("🌱 Now tracking %s. Ask me for prices or harvest timing anytime.",
			ui.GoodStyle.Render(env.GrowCrop)))
	case dispatch.VariantAdviceCard:
		return viewAdvice(env.Advice)
	case dispatch.VariantWeather:
		return ui.CardStyle.Render("🌦️ " + env.Weather.Summary)
	case dispatch.VariantPriceCheck:
		return m.viewPriceCheck(env)
	default:
		msg := env.Speak
		if msg == "" {
			msg = "Sorry, I could not understand that. Ctrl+H shows what you can ask."
		}
		return ui.ErrorStyle.Render("⚠ " + msg)
	}
}

func (m Model) viewSellAnalysis(env *dispatch.Envelope) string {
	var parts []string

	if env.Offline {
		parts = append(parts, ui.ErrorStyle.Render("⚠ backend unreachable, showing demo data"))
	}

	if a := env.Analysis; a != nil && a.AIRecommendation != nil {
		rec := a.AIRecommendation
		verdict := ui.GoodStyle.Render(rec.Recommendation)
		card := fmt.Sprintf("%s  %s", verdict, rec.PriceTrend)
		if rec.BestMandi != nil {
			card += fmt.Sprintf("\nBest: %s · ₹%.0f/kg · %.0f km",
				rec.BestMandi.Name, rec.BestMandi.PricePerKg, rec.BestMandi.DistanceKm)
		}
		parts = append(parts, ui.ActiveCardStyle.Render(card))
	}

	if t := env.SellTiming; t != nil {
		parts = append(parts, ui.CardStyle.Render(fmt.Sprintf(
			"⏰ %s\n%s\nBest: ₹%.0f/kg on %s", t.Action, t.Reason, t.BestPrice, t.BestDay)))
	}

	if len(env.PriceForecast) > 0 {
		parts = append(parts, viewForecast(env))
	}

	parts = append(parts, m.viewVendors(env.Vendors, env.Quantity))

	if len(env.TimingFactors) > 0 {
		var lines []string
		for _, f := range env.TimingFactors {
			lines = append(lines, fmt.Sprintf("%s %s: %s", f.Icon, f.Factor, f.Impact))
		}
		parts = append(parts, ui.CardStyle.Render(strings.Join(lines, "\n")))
	}

	if m.chart != nil {
		parts = append(parts, ui.CardStyle.Render("📈 "+m.chartCrop+" prices\n"+ui.PriceChart(*m.chart)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// viewForecast renders the week-ahead outlook. The highest predicted price
// marks the recommended day to sell.
func viewForecast(env *dispatch.Envelope) string {
	points := env.PriceForecast
	bestIdx, bestPrice, ok := forecast.BestDay(points)

	values := make([]float64, len(points))
	for i, pt := range points {
		values[i] = pt.PredictedPrice
	}

	var b strings.Builder
	b.WriteString(ui.SubtitleStyle.Render("🔮 7-Day Price Prediction"))
	b.WriteString("\n" + ui.Sparkline(values))
	if env.TodayPrice > 0 {
		b.WriteString(fmt.Sprintf("\n%-8s ₹%.1f/kg", "Today", env.TodayPrice))
	}
	for i, pt := range points {
		line := fmt.Sprintf("%-8s ₹%.1f/kg", pt.DayLabel, pt.PredictedPrice)
		if ok && i == bestIdx {
			line = ui.GoodStyle.Render(line + "  ⭐ best day to sell")
		}
		b.WriteString("\n" + line)
	}
	if ok {
		banner := fmt.Sprintf("💡 Best day: %s · predicted ₹%.1f/kg", points[bestIdx].DayLabel, bestPrice)
		if env.Quantity > 0 {
			banner += fmt.Sprintf(" (revenue ₹%.0f)", env.Quantity*bestPrice)
		}
		b.WriteString("\n" + ui.GoodStyle.Render(banner))
	}
	return ui.CardStyle.Render(b.String())
}

func (m Model) viewPriceCheck(env *dispatch.Envelope) string {
	parts := []string{
		ui.TitleStyle.Render("📊 " + env.Crop + " prices"),
		m.viewVendors(env.Vendors, 0),
	}
	if m.chart != nil {
		parts = append(parts, ui.CardStyle.Render(ui.PriceChart(*m.chart)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// viewVendors renders the quote list with the active vendor highlighted and,
// when a quantity is known, the net take at each vendor.
func (m Model) viewVendors(vendors []types.VendorQuote, qtyKg float64) string {
	if len(vendors) == 0 {
		return ui.SubtitleStyle.Render("no mandis found")
	}
	best := types.BestVendor(vendors)

	var rows []string
	for i, v := range vendors {
		line := fmt.Sprintf("%s  ₹%.0f/kg · %.0f km · %.0f min",
			v.Name, v.PricePerKg, v.DistanceKm, v.TravelTimeMin)
		if qtyKg > 0 {
			line += fmt.Sprintf(" · net ₹%.0f", v.Profit(qtyKg))
		}
		if best != nil && v.ID == best.ID {
			line = "⭐ " + line
		}
		style := ui.CardStyle
		if i == m.activeVendor {
			style = ui.ActiveCardStyle
			line += m.viewRoute()
		}
		rows = append(rows, style.Render(line))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// viewRoute summarizes the resolved path to the active vendor.
func (m Model) viewRoute() string {
	if len(m.routeCoords) == 0 {
		return "\n" + ui.HelpStyle.Render("resolving route...")
	}
	if len(m.routeCoords) == 2 {
		return "\n" + ui.HelpStyle.Render("route: straight line (router offline)")
	}
	return "\n" + ui.HelpStyle.Render(fmt.Sprintf("route: %d road points", len(m.routeCoords)))
}

func viewAdvice(a *types.Advice) string {
	var b strings.Builder
	b.WriteString(ui.TitleStyle.Render("🌿 " + a.Title))
	b.WriteString("\n" + a.Recommendation)
	if a.Timing != "" {
		b.WriteString("\n⏰ " + a.Timing)
	}
	for _, s := range a.Sections {
		b.WriteString(fmt.Sprintf("\n%s %s: %s", s.Icon, s.Heading, s.Content))
	}
	if len(a.Steps) > 0 {
		b.WriteString("\n")
		for i, s := range a.Steps {
			b.WriteString(fmt.Sprintf("\n %d. %s", i+1, s))
		}
	}
	if len(a.RiskFactors) > 0 {
		b.WriteString("\n" + ui.BadStyle.Render("Risks: "+strings.Join(a.RiskFactors, "; ")))
	}
	return ui.CardStyle.Render(b.String())
}

func (m Model) viewHelp() string {
	var lines []string
	for _, h := range helpItems {
		lines = append(lines, fmt.Sprintf("%s %-28s %s",
			h.emoji, ui.GoodStyle.Render(h.cmd), ui.SubtitleStyle.Render(h.desc)))
	}
	return ui.CardStyle.Render("Try asking:\n" + strings.Join(lines, "\n"))
}
