// Package retailer provides a compact retailer view: current mandi prices
// for a commodity with the 7-day outlook. It rides the same dispatch path
// as the farmer dashboard's price queries.
package retailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"foodchain/cmd/foodchain/ui"
	"foodchain/internal/api"
	"foodchain/internal/config"
	"foodchain/internal/dispatch"
	"foodchain/internal/forecast"
	"foodchain/internal/types"
)

type dispatchMsg struct {
	id  uuid.UUID
	env *dispatch.Envelope
}

type historyMsg struct {
	crop  string
	chart forecast.Chart
}

// Model is the retailer price-check state.
type Model struct {
	client     *api.Client
	dispatcher *dispatch.Dispatcher
	pos        types.LatLng

	input textinput.Model
	spin  spinner.Model

	dispatchID uuid.UUID
	processing bool

	env       *dispatch.Envelope
	chart     *forecast.Chart
	chartCrop string
}

// New builds the retailer view.
func New(cfg *config.Config, client *api.Client) Model {
	in := textinput.New()
	in.Placeholder = "commodity, e.g. tomato"
	in.Prompt = "🛒 "
	in.CharLimit = 40
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = ui.TitleStyle

	return Model{
		client:     client,
		dispatcher: dispatch.NewDispatcher(client),
		pos:        types.LatLng{Lat: cfg.Location.Lat, Lng: cfg.Location.Lng},
		input:      in,
		spin:       sp,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spin.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			crop := strings.TrimSpace(m.input.Value())
			if crop == "" || m.processing {
				return m, nil
			}
			m.dispatchID = uuid.New()
			m.processing = true
			return m, m.checkCmd(m.dispatchID, crop)
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case dispatchMsg:
		if msg.id != m.dispatchID {
			return m, nil
		}
		m.processing = false
		m.env = msg.env
		m.chart = nil
		m.chartCrop = msg.env.FollowupCrop
		if m.chartCrop != "" {
			return m, m.historyCmd(m.chartCrop)
		}
		return m, nil

	case historyMsg:
		if msg.crop != m.chartCrop {
			return m, nil
		}
		chart := msg.chart
		m.chart = &chart
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

// checkCmd dispatches "<crop> price", the same utterance shape the farmer
// help panel suggests for price checks.
func (m Model) checkCmd(id uuid.UUID, crop string) tea.Cmd {
	d, pos := m.dispatcher, m.pos
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		return dispatchMsg{id: id, env: d.Dispatch(ctx, crop+" price", pos)}
	}
}

func (m Model) historyCmd(crop string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		h, err := client.PriceHistory(ctx, crop, 30)
		if err != nil {
			return historyMsg{crop: crop}
		}
		return historyMsg{crop: crop, chart: forecast.Build(*h)}
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(ui.TitleStyle.Render("🛒 FoodChain · Retailer"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch {
	case m.processing:
		b.WriteString(m.spin.View() + ui.SubtitleStyle.Render(" fetching prices..."))
	case m.env != nil:
		b.WriteString(m.viewPrices())
	default:
		b.WriteString(ui.SubtitleStyle.Render("Type a commodity and press enter."))
	}

	b.WriteString("\n\n")
	b.WriteString(ui.HelpStyle.Render("enter check prices · esc quit"))
	return b.String()
}

func (m Model) viewPrices() string {
	env := m.env
	if len(env.Vendors) == 0 {
		return ui.SubtitleStyle.Render("no mandis found for " + env.Crop)
	}

	var parts []string
	if env.Offline {
		parts = append(parts, ui.ErrorStyle.Render("⚠ backend unreachable, showing demo data"))
	}

	best := types.BestVendor(env.Vendors)
	var rows []string
	for _, v := range env.Vendors {
		line := fmt.Sprintf("%-20s ₹%3.0f/kg  %4.0f km", v.Name, v.PricePerKg, v.DistanceKm)
		if best != nil && v.ID == best.ID {
			line = ui.GoodStyle.Render(line + "  ⭐ best")
		}
		rows = append(rows, line)
	}
	parts = append(parts, ui.CardStyle.Render(strings.Join(rows, "\n")))

	if m.chart != nil {
		parts = append(parts, ui.CardStyle.Render("📈 "+m.chartCrop+"\n"+ui.PriceChart(*m.chart)))
	}
	return strings.Join(parts, "\n")
}
