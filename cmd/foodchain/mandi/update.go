package mandi

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"foodchain/internal/risk"
	"foodchain/internal/types"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case supplyMsg:
		m.loading = false
		m.supply = msg.sc
		m.fleetGen++
		m.truckRoutes = map[string][]types.LatLng{}
		return m, tea.Batch(m.truckRouteCmds()...)

	case truckRouteMsg:
		// Routes requested against an older fleet are dropped unread.
		if msg.gen != m.fleetGen {
			return m, nil
		}
		m.truckRoutes[msg.truckID] = msg.coords
		return m, nil

	case scenarioMsg:
		// Only the newest triple's result applies; replies for older
		// slider positions are dropped unread.
		if !m.tracker.Accept(msg.in) {
			return m, nil
		}
		m.scenarioRes, m.scenarioErr = msg.res, msg.err
		return m, nil

	case alertMsg:
		m.alertInFlight = false
		m.alertRes, m.alertErr = msg.res, msg.err
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit

	case "tab", "right":
		if m.tab == TabScenario && msg.String() == "right" {
			return m.adjustSlider(1)
		}
		m.tab = (m.tab + 1) % tabCount
		return m, nil

	case "shift+tab", "left":
		if m.tab == TabScenario && msg.String() == "left" {
			return m.adjustSlider(-1)
		}
		m.tab = (m.tab + tabCount - 1) % tabCount
		return m, nil

	case "1", "2", "3", "4", "5", "6", "7":
		m.tab = Tab(msg.String()[0] - '1')
		return m, nil

	case "r":
		m.loading = true
		return m, m.loadCmd()

	case "up":
		switch m.tab {
		case TabScenario:
			if m.slider > 0 {
				m.slider--
			}
		case TabAlerts:
			if m.simLevel < risk.Critical {
				m.simLevel++
			}
		}
		return m, nil

	case "down":
		switch m.tab {
		case TabScenario:
			if m.slider < 2 {
				m.slider++
			}
		case TabAlerts:
			if m.simLevel > risk.Low {
				m.simLevel--
			}
		}
		return m, nil

	case "enter", " ":
		if m.tab == TabAlerts && !m.alertInFlight {
			m.alertInFlight = true
			m.alertRes, m.alertErr = nil, nil
			return m, m.alertCmd(m.simLevel)
		}
		return m, nil
	}
	return m, nil
}

// adjustSlider moves the selected scenario slider and kicks off a recompute
// for the new triple. Moves that leave the triple unchanged (already at a
// bound) start nothing.
func (m Model) adjustSlider(dir int) (tea.Model, tea.Cmd) {
	in := m.inputs
	switch m.slider {
	case 0:
		in.RainDays = clampInt(in.RainDays+dir, 0, maxRainDays)
	case 1:
		in.DemandSurgePct = clampInt(in.DemandSurgePct+dir*percentStep, 0, maxPercent)
	case 2:
		in.TransportDelayPct = clampInt(in.TransportDelayPct+dir*percentStep, 0, maxPercent)
	}
	m.inputs = in
	return m, m.scenarioCmdIfNew(in)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// stress returns the loaded stress read, or nil before the first load.
func (m Model) stress() *types.RiskState {
	if m.supply == nil {
		return nil
	}
	return m.supply.Stress
}
