// Package mandi provides the mandi operator dashboard: supply-chain panels,
// a what-if scenario simulator, and alert escalation. Split the same way as
// the farmer dashboard: model.go holds state and async commands, update.go
// the event loop, view.go rendering.
package mandi

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"foodchain/cmd/foodchain/ui"
	"foodchain/internal/alert"
	"foodchain/internal/api"
	"foodchain/internal/config"
	"foodchain/internal/risk"
	"foodchain/internal/route"
	"foodchain/internal/scenario"
	"foodchain/internal/types"
)

// Tab is one dashboard panel.
type Tab int

const (
	TabOverview Tab = iota
	TabStress
	TabForecast
	TabTrucks
	TabInterventions
	TabScenario
	TabAlerts
	tabCount
)

var tabLabels = []string{
	"📦 Overview", "⚠️ Stress", "📈 Forecast", "🚚 Trucks",
	"💡 Actions", "🔮 Scenario", "🚨 Alerts",
}

// Slider bounds for the scenario triple.
const (
	maxRainDays = 7
	maxPercent  = 100
	percentStep = 10
)

type supplyMsg struct {
	sc *api.SupplyChain
}

type truckRouteMsg struct {
	gen     int
	truckID string
	coords  []types.LatLng
}

type scenarioMsg struct {
	in  types.ScenarioInputs
	res *types.ScenarioResult
	err error
}

type alertMsg struct {
	res *types.AlertDispatch
	err error
}

// Model is the mandi dashboard state.
type Model struct {
	client    *api.Client
	escalator *alert.Escalator
	tracker   *scenario.Tracker
	resolver  *route.Resolver
	numbers   []string

	tab     Tab
	width   int
	height  int
	spin    spinner.Model
	loading bool

	supply *api.SupplyChain

	// Truck route state. fleetGen advances on every fleet load so that
	// route results for a stale fleet are dropped unread.
	fleetGen    int
	truckRoutes map[string][]types.LatLng

	// Scenario state.
	inputs      types.ScenarioInputs
	slider      int // 0=rain, 1=demand, 2=transport
	scenarioRes *types.ScenarioResult
	scenarioErr error

	// Alerts state.
	simLevel      risk.Level
	alertRes      *types.AlertDispatch
	alertErr      error
	alertInFlight bool
}

// New builds the mandi dashboard.
func New(cfg *config.Config, client *api.Client) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = ui.TitleStyle

	routerTimeout, _ := cfg.RouterTimeout()
	return Model{
		client:    client,
		escalator: alert.NewEscalator(client),
		tracker:   &scenario.Tracker{},
		resolver:  route.NewResolver(cfg.Router.URL, routerTimeout),
		numbers:   cfg.Alerts.Numbers,
		spin:      sp,
		loading:   true,
		simLevel:  risk.Moderate,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.loadCmd(), m.scenarioCmdIfNew(m.inputs))
}

// loadCmd refreshes all five supply-chain panels.
func (m Model) loadCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		sc, _ := client.FetchSupplyChain(ctx)
		return supplyMsg{sc: sc}
	}
}

// truckRouteCmds starts a route fetch for every truck currently on the road.
// Each result is keyed by truck id and by the fleet generation it was
// requested for.
func (m Model) truckRouteCmds() []tea.Cmd {
	if m.supply == nil || m.supply.Trucks == nil {
		return nil
	}
	var cmds []tea.Cmd
	gen, resolver := m.fleetGen, m.resolver
	for _, tr := range m.supply.Trucks.Fleet {
		if tr.Status != "delivering" && tr.Status != "returning" {
			continue
		}
		tr := tr
		cmds = append(cmds, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			origin := types.LatLng{Lat: tr.OriginLat, Lng: tr.OriginLng}
			dest := types.LatLng{Lat: tr.DestLat, Lng: tr.DestLng}
			return truckRouteMsg{gen: gen, truckID: tr.ID, coords: resolver.Resolve(ctx, origin, dest)}
		})
	}
	return cmds
}

// scenarioCmdIfNew starts a recompute for the triple unless it is already
// the registered one. The result message carries the triple so Update can
// discard it if a newer triple has been set meanwhile.
func (m Model) scenarioCmdIfNew(in types.ScenarioInputs) tea.Cmd {
	if !m.tracker.Begin(in) {
		return nil
	}
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		res, err := client.Scenario(ctx, in)
		return scenarioMsg{in: in, res: res, err: err}
	}
}

// alertCmd triggers the escalation ladder at the selected severity, passing
// the live stress read when one is loaded.
func (m Model) alertCmd(level risk.Level) tea.Cmd {
	esc := m.escalator
	var stress *types.RiskState
	if m.supply != nil {
		stress = m.supply.Stress
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		res, err := esc.Trigger(ctx, level, stress)
		return alertMsg{res: res, err: err}
	}
}
