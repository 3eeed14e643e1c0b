package mandi

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"foodchain/cmd/foodchain/ui"
	"foodchain/internal/alert"
	"foodchain/internal/api"
	"foodchain/internal/risk"
	"foodchain/internal/scenario"
	"foodchain/internal/types"
)

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(ui.TitleStyle.Render("🏪 FoodChain · Mandi Operator"))
	b.WriteString("\n")
	b.WriteString(m.viewTabs())
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(m.spin.View() + ui.SubtitleStyle.Render(" loading supply chain data..."))
	} else {
		b.WriteString(m.viewTab())
	}

	b.WriteString("\n\n")
	b.WriteString(ui.HelpStyle.Render(m.footer()))
	return b.String()
}

func (m Model) footer() string {
	switch m.tab {
	case TabScenario:
		return "↑/↓ pick slider · ←/→ adjust · 1-7 tabs · r refresh · q quit"
	case TabAlerts:
		return "↑/↓ severity · enter trigger · 1-7 tabs · r refresh · q quit"
	default:
		return "tab/1-7 switch panel · r refresh · q quit"
	}
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, label := range tabLabels {
		if Tab(i) == m.tab {
			tabs = append(tabs, ui.ActiveTabStyle.Render(label))
		} else {
			tabs = append(tabs, ui.TabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewTab() string {
	switch m.tab {
	case TabOverview:
		return m.viewOverview()
	case TabStress:
		return m.viewStress()
	case TabForecast:
		return m.viewForecast()
	case TabTrucks:
		return m.viewTrucks()
	case TabInterventions:
		return m.viewInterventions()
	case TabScenario:
		return m.viewScenario()
	case TabAlerts:
		return m.viewAlerts()
	}
	return ""
}

func unavailable(panel string) string {
	return ui.ErrorStyle.Render("⚠ " + panel + " unavailable (backend fetch failed), press r to retry")
}

func (m Model) viewOverview() string {
	if m.supply == nil || m.supply.Overview == nil {
		return unavailable("overview")
	}
	o := m.supply.Overview
	k := o.KPIs

	kpis := ui.CardStyle.Render(fmt.Sprintf(
		"Inventory %s kg (₹%s)   Inbound %.0f kg/d   Outbound %.0f kg/d\nFarmers %d   Retailers %d   Trucks %d   Pending orders %d",
		formatQty(k.TotalInventoryKg), formatQty(k.TotalValue),
		k.DailyInboundAvg, k.DailyOutboundAvg,
		k.ActiveFarmers, k.ActiveRetailers, k.TrucksActive, k.PendingOrders))

	flow := ui.CardStyle.Render(fmt.Sprintf("Inbound 7d  %s\nOutbound 7d %s",
		ui.Sparkline(flowValues(o.Inbound7d)), ui.Sparkline(flowValues(o.Outbound7d))))

	var rows []string
	for _, it := range o.Inventory {
		change := ui.GoodStyle.Render(fmt.Sprintf("+%.1f%%", it.ChangePct))
		if it.ChangePct < 0 {
			change = ui.BadStyle.Render(fmt.Sprintf("%.1f%%", it.ChangePct))
		}
		rows = append(rows, fmt.Sprintf("%s %-12s %8s kg  ₹%.0f/kg  %s",
			it.Emoji, it.Crop, formatQty(it.QtyKg), it.PricePerKg, change))
	}
	inv := ui.CardStyle.Render("Live inventory\n" + strings.Join(rows, "\n"))

	return lipgloss.JoinVertical(lipgloss.Left, kpis, flow, inv)
}

func (m Model) viewStress() string {
	s := m.stress()
	if s == nil {
		return unavailable("stress")
	}

	gauge := ui.CardStyle.Render("Supply chain stress\n" + ui.Gauge(s.RiskScore, 40))
	reason := ui.SubtitleStyle.Render(stressReason(s.Signals))

	var cards []string
	for _, sig := range s.Signals {
		sev := risk.ParseLevel(sig.Severity)
		head := ui.LevelStyle(sev).Render(fmt.Sprintf("%s %s", sig.Icon, sig.Title))
		body := sig.Detail
		if sig.Impact != "" {
			body += "\nImpact: " + sig.Impact
		}
		if sig.Action != "" {
			body += "\n→ " + sig.Action
		}
		cards = append(cards, ui.CardStyle.Render(head+"\n"+body))
	}
	if len(cards) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, gauge, reason)
	}
	return lipgloss.JoinVertical(lipgloss.Left, gauge, reason+"\n"+strings.Join(cards, "\n"))
}

// stressReason summarizes the active signals in one line: price disruptions
// are counted together with the crops they hit, every other signal type is
// represented by its first title.
func stressReason(signals []types.RiskSignal) string {
	var price []types.RiskSignal
	firstByType := map[string]string{}
	for _, s := range signals {
		if s.Type == "price" {
			price = append(price, s)
			continue
		}
		if _, ok := firstByType[s.Type]; !ok {
			firstByType[s.Type] = s.Title
		}
	}

	var reasons []string
	if len(price) > 0 {
		var crops []string
		for _, s := range price {
			crop := s.Crop
			if crop == "" {
				if f := strings.Fields(s.Title); len(f) > 1 {
					crop = f[1]
				}
			}
			crops = append(crops, crop)
		}
		noun := "disruption"
		if len(price) > 1 {
			noun = "disruptions"
		}
		reasons = append(reasons, fmt.Sprintf("%d price %s (%s)",
			len(price), noun, strings.Join(crops, ", ")))
	}
	if t, ok := firstByType["weather"]; ok {
		reasons = append(reasons, "Weather: "+t)
	}
	if t, ok := firstByType["demand"]; ok {
		reasons = append(reasons, t)
	}
	if t, ok := firstByType["transport"]; ok {
		reasons = append(reasons, t)
	}
	if len(reasons) == 0 {
		return "No significant disruptions detected; supply chain operating normally"
	}
	return strings.Join(reasons, " · ")
}

func (m Model) viewForecast() string {
	if m.supply == nil || m.supply.Forecast == nil {
		return unavailable("forecast")
	}
	var rows []string
	for _, f := range m.supply.Forecast.Forecasts {
		arrow := "→"
		style := ui.SubtitleStyle
		switch f.Trend {
		case "up":
			arrow, style = "↑", ui.GoodStyle
		case "down":
			arrow, style = "↓", ui.BadStyle
		}
		rows = append(rows, fmt.Sprintf("%s %-10s ₹%.0f %s ₹%.0f (%s)  %s",
			f.Emoji, f.Crop, f.CurrentPrice, arrow, f.PredictedPrice7d,
			style.Render(fmt.Sprintf("%+.1f%%", f.TrendPct)),
			ui.Sparkline(append(datedValues(f.History), datedValues(f.Forecast)...))))
	}
	return ui.CardStyle.Render("7-day price outlook\n" + strings.Join(rows, "\n"))
}

func (m Model) viewTrucks() string {
	if m.supply == nil || m.supply.Trucks == nil {
		return unavailable("trucks")
	}
	t := m.supply.Trucks
	summary := ui.CardStyle.Render(fmt.Sprintf(
		"Fleet %d   Delivering %d   Delayed %s   Idle %d",
		t.Summary.Total, t.Summary.Delivering,
		ui.BadStyle.Render(fmt.Sprintf("%d", t.Summary.Delayed)), t.Summary.Idle))

	var rows []string
	for _, tr := range t.Fleet {
		status := tr.Status
		if tr.Status == "delayed" {
			status = ui.BadStyle.Render(status)
		}
		line := fmt.Sprintf("%-8s %-10s %-10s %5.0f/%5.0f kg  %-14s ETA %3.0fm  %s",
			tr.ID, tr.Driver, status, tr.CargoKg, tr.CapacityKg, tr.Destination, tr.ETAMin, tr.Cargo)
		if tr.Status == "delivering" || tr.Status == "returning" {
			line += "  " + m.viewTruckRoute(tr.ID)
		}
		rows = append(rows, line)
	}
	fleet := ui.CardStyle.Render(strings.Join(rows, "\n"))
	return lipgloss.JoinVertical(lipgloss.Left, summary, fleet)
}

// viewTruckRoute summarizes the resolved path for one truck on the road.
func (m Model) viewTruckRoute(id string) string {
	coords, ok := m.truckRoutes[id]
	if !ok {
		return ui.HelpStyle.Render("route: resolving...")
	}
	if len(coords) <= 2 {
		return ui.HelpStyle.Render("route: straight line (router offline)")
	}
	return ui.HelpStyle.Render(fmt.Sprintf("route: %d road points", len(coords)))
}

func (m Model) viewInterventions() string {
	if m.supply == nil || m.supply.Interventions == nil {
		return unavailable("interventions")
	}
	iv := m.supply.Interventions
	var cards []string
	for _, x := range iv.Interventions {
		urg := risk.ParseLevel(x.Urgency)
		head := fmt.Sprintf("%s %s  %s", x.Icon, x.Title,
			ui.LevelStyle(urg).Render(strings.ToUpper(x.Urgency)))
		body := x.Description
		if x.Impact != "" {
			body += "\nImpact: " + x.Impact
		}
		if x.Cost != "" {
			body += "  Cost: " + x.Cost
		}
		if x.TradeOff != "" {
			body += "\nTrade-off: " + x.TradeOff
		}
		cards = append(cards, ui.CardStyle.Render(head+"\n"+body))
	}
	head := ""
	if iv.TotalPotentialSavings != "" {
		head = ui.GoodStyle.Render("Potential savings: "+iv.TotalPotentialSavings) + "\n"
	}
	return head + strings.Join(cards, "\n")
}

func (m Model) viewScenario() string {
	sliders := ui.CardStyle.Render(strings.Join([]string{
		m.sliderLine(0, "🌧 Rain days", m.inputs.RainDays, maxRainDays),
		m.sliderLine(1, "📈 Demand surge %", m.inputs.DemandSurgePct, maxPercent),
		m.sliderLine(2, "🚚 Transport delay %", m.inputs.TransportDelayPct, maxPercent),
	}, "\n"))

	if m.scenarioErr != nil {
		return lipgloss.JoinVertical(lipgloss.Left, sliders,
			ui.ErrorStyle.Render("⚠ scenario recompute failed, adjust a slider to retry"))
	}
	if m.scenarioRes == nil {
		return lipgloss.JoinVertical(lipgloss.Left, sliders,
			m.spin.View()+ui.SubtitleStyle.Render(" computing..."))
	}

	res := m.scenarioRes
	var metrics []string
	for _, v := range scenario.Classify(res) {
		badge := ui.GoodStyle.Render("✓")
		if !v.Favorable {
			badge = ui.BadStyle.Render("✗")
		}
		metrics = append(metrics, fmt.Sprintf("%s %-9s %8.1f%s → %8.1f%s",
			badge, v.Label, v.Baseline, v.Unit, v.Predicted, v.Unit))
	}
	outcome := ui.CardStyle.Render(strings.Join(metrics, "\n"))

	parts := []string{sliders, outcome}

	if gap, pct, ok := scenario.Shortfall(res); ok {
		parts = append(parts, ui.ErrorStyle.Render("⚠ "+scenario.ShortfallLine(gap, pct)))
	}

	if len(res.CropImpacts) > 0 {
		var rows []string
		for _, c := range res.CropImpacts {
			rows = append(rows, fmt.Sprintf("%s %-10s price %+5.1f%%  supply %+5.1f%%  %s",
				c.Emoji, c.Crop, c.PriceChangePct, c.SupplyChangePct,
				ui.LevelStyle(risk.ParseLevel(c.Risk)).Render(c.Risk)))
		}
		parts = append(parts, ui.CardStyle.Render("Crop impact\n"+strings.Join(rows, "\n")))
	}

	if len(res.Recommendations) > 0 {
		var rows []string
		for _, r := range res.Recommendations {
			rows = append(rows, r.Icon+" "+r.Text)
		}
		parts = append(parts, ui.CardStyle.Render("Recommended actions\n"+strings.Join(rows, "\n")))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) sliderLine(idx int, label string, value, max int) string {
	const width = 20
	filled := 0
	if max > 0 {
		filled = value * width / max
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	line := fmt.Sprintf("%-22s %s %3d", label, bar, value)
	if idx == m.slider {
		return ui.GoodStyle.Render("› " + line)
	}
	return "  " + line
}

func (m Model) viewAlerts() string {
	var levels []string
	for l := risk.Low; l <= risk.Critical; l++ {
		label := strings.ToUpper(l.String())
		if l == m.simLevel {
			levels = append(levels, ui.LevelStyle(l).Render("› "+label))
		} else {
			levels = append(levels, ui.SubtitleStyle.Render("  "+label))
		}
	}
	var channels []string
	for _, ch := range alert.ChannelsFor(m.simLevel) {
		channels = append(channels, string(ch))
	}
	sel := "Severity\n" + strings.Join(levels, "\n") +
		"\n\nChannels: " + strings.Join(channels, ", ")
	if m.simLevel >= risk.High && len(m.numbers) > 0 {
		sel += "\nRecipients: " + strings.Join(m.numbers, ", ")
	}
	selector := ui.CardStyle.Render(sel)

	var result string
	switch {
	case m.alertInFlight:
		result = m.spin.View() + ui.SubtitleStyle.Render(" sending alerts...")
	case m.alertErr != nil:
		result = ui.ErrorStyle.Render("⚠ " + m.alertErr.Error())
	case m.alertRes != nil:
		result = viewDispatch(*m.alertRes)
	default:
		result = ui.SubtitleStyle.Render("Press enter to trigger the selected severity.")
	}

	parts := []string{selector, result}
	if h := m.escalator.History(); len(h) > 0 {
		var rows []string
		for _, d := range h {
			rows = append(rows, fmt.Sprintf("%s  %-8s  %d actions  %d errors",
				d.Timestamp.Format("15:04:05"), d.RiskLevel, len(d.ActionsTaken), len(d.Errors)))
		}
		parts = append(parts, ui.CardStyle.Render("History (last 10)\n"+strings.Join(rows, "\n")))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func viewDispatch(d types.AlertDispatch) string {
	var rows []string
	for _, a := range d.ActionsTaken {
		status := a.Status
		if a.Status == "sent" || a.Status == "initiated" {
			status = ui.GoodStyle.Render(status)
		}
		line := fmt.Sprintf("%-12s %s  %s", a.Type, status, a.Detail)
		if a.SID != "" {
			line += "  (" + a.SID + ")"
		}
		rows = append(rows, line)
	}
	for _, e := range d.Errors {
		rows = append(rows, ui.BadStyle.Render("error: "+e))
	}
	if len(d.NumbersContacted) > 0 {
		rows = append(rows, ui.SubtitleStyle.Render("Contacted: "+strings.Join(d.NumbersContacted, ", ")))
	}
	return ui.CardStyle.Render(strings.Join(rows, "\n"))
}

func flowValues(days []api.FlowDay) []float64 {
	out := make([]float64, len(days))
	for i, d := range days {
		out[i] = d.QtyKg
	}
	return out
}

func datedValues(prices []api.DatedPrice) []float64 {
	out := make([]float64, len(prices))
	for i, p := range prices {
		out[i] = p.Price
	}
	return out
}

func formatQty(v float64) string {
	if v >= 1000 {
		return fmt.Sprintf("%.1fk", v/1000)
	}
	return fmt.Sprintf("%.0f", v)
}
