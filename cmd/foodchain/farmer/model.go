// Package farmer provides the farmer dashboard: voice or typed market
// queries, vendor quotes with route preview, and a 7-day price forecast.
// The interface is split across three files:
//   - model.go: types, messages, async commands
//   - update.go: the event loop
//   - view.go: rendering
package farmer

import (
	"context"
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
	"foodchain/internal/route"
	"foodchain/internal/types"
	"foodchain/internal/voice"
)

// historyDays is the trailing window requested for price charts.
const historyDays = 30

// helpItem is one suggested utterance in the help panel.
type helpItem struct {
	emoji string
	cmd   string
	desc  string
}

var helpItems = []helpItem{
	{"💰", "sell 100kg tomato", "Get best selling price & mandi"},
	{"⏰", "sell tomato today or wait?", "Should I sell now or wait?"},
	{"🔮", "tomato price tomorrow", "Predicted price for tomorrow"},
	{"🌱", "I grow wheat", "Track a crop you're growing"},
	{"🌿", "should I harvest onion", "Get harvest timing advice"},
	{"🐛", "how to protect from pests", "Get farming tips & solutions"},
	{"🌦️", "check weather", "Get local weather forecast"},
	{"📊", "carrot price", "Check current mandi prices"},
}

// Messages delivered by async commands. Each carries the identity of the
// request that produced it so stale results can be dropped in Update.

type dispatchMsg struct {
	id  uuid.UUID
	env *dispatch.Envelope
}

type historyMsg struct {
	crop  string
	chart forecast.Chart
}

type routeMsg struct {
	dest   types.LatLng
	coords []types.LatLng
}

type transcriptMsg struct {
	text string
}

type tickMsg time.Time

// Model is the farmer dashboard state.
type Model struct {
	client     *api.Client
	dispatcher *dispatch.Dispatcher
	resolver   *route.Resolver
	pipeline   *voice.Pipeline

	pos      types.LatLng
	input    textinput.Model
	spin     spinner.Model
	width    int
	height   int
	showHelp bool

	// dispatchID keys the in-flight utterance; results for any other id
	// are stale and ignored.
	dispatchID uuid.UUID
	processing bool

	env          *dispatch.Envelope
	activeVendor int
	chart        *forecast.Chart
	chartCrop    string

	// routeDest keys the in-flight route request by destination.
	routeDest   types.LatLng
	routeCoords []types.LatLng

	// transcripts carries finished voice transcripts from the pipeline's
	// callback goroutine into the event loop.
	transcripts chan string

	err error
}

// New builds the farmer dashboard from configuration. synth may be nil when
// no playback engine is available.
func New(cfg *config.Config, client *api.Client, synth voice.Synthesizer) Model {
	in := textinput.New()
	in.Placeholder = "type a command, e.g. sell 100kg tomato"
	in.Prompt = "🎤 "
	in.CharLimit = 120
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = ui.TitleStyle

	timeout, _ := cfg.RouterTimeout()
	transcripts := make(chan string, 4)

	m := Model{
		client:      client,
		dispatcher:  dispatch.NewDispatcher(client),
		resolver:    route.NewResolver(cfg.Router.URL, timeout),
		pos:         types.LatLng{Lat: cfg.Location.Lat, Lng: cfg.Location.Lng},
		input:       in,
		spin:        sp,
		transcripts: transcripts,
	}
	m.pipeline = voice.NewPipeline(nil, synth, cfg.Speech.Language, func(text string) {
		select {
		case transcripts <- text:
		default:
		}
	})
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.waitTranscript())
}

// waitTranscript blocks on the pipeline's transcript channel and surfaces
// the next finished utterance as a message.
func (m Model) waitTranscript() tea.Cmd {
	return func() tea.Msg {
		return transcriptMsg{text: <-m.transcripts}
	}
}

// dispatchCmd sends the utterance and reports back under the given id.
func (m Model) dispatchCmd(id uuid.UUID, text string) tea.Cmd {
	d, pos := m.dispatcher, m.pos
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		return dispatchMsg{id: id, env: d.Dispatch(ctx, text, pos)}
	}
}

// historyCmd fetches the trailing price window and builds the chart. A
// failed fetch yields an empty chart for the crop, which renders as "no
// price history yet".
func (m Model) historyCmd(crop string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		h, err := client.PriceHistory(ctx, crop, historyDays)
		if err != nil {
			return historyMsg{crop: crop}
		}
		return historyMsg{crop: crop, chart: forecast.Build(*h)}
	}
}

// routeCmd resolves the road path to dest, keyed by dest.
func (m Model) routeCmd(dest types.LatLng) tea.Cmd {
	resolver, origin := m.resolver, m.pos
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return routeMsg{dest: dest, coords: resolver.Resolve(ctx, origin, dest)}
	}
}
