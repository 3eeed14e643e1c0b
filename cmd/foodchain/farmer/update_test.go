package farmer

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodchain/internal/api"
	"foodchain/internal/config"
	"foodchain/internal/dispatch"
	"foodchain/internal/forecast"
	"foodchain/internal/types"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	cfg := config.DefaultConfig()
	// Nothing listens here; every network call degrades to its fallback.
	cfg.Backend.URL = "http://127.0.0.1:1"
	cfg.Router.URL = "http://127.0.0.1:1"
	cfg.Backend.Timeout = "200ms"
	cfg.Router.Timeout = "200ms"
	client := api.NewClient(cfg.Backend.URL, 200*time.Millisecond)
	return New(cfg, client, nil)
}

func TestSubmit_UnreachableBackendAppliesFallback(t *testing.T) {
	m := newTestModel(t)

	model, cmd := m.submit("sell 100kg tomato")
	require.NotNil(t, cmd)
	m = model.(Model)
	assert.True(t, m.processing)

	msg, ok := cmd().(dispatchMsg)
	require.True(t, ok)
	assert.Equal(t, m.dispatchID, msg.id)
	assert.True(t, msg.env.Offline)

	model, _ = m.Update(msg)
	m = model.(Model)
	assert.False(t, m.processing)
	require.NotNil(t, m.env)
	assert.Equal(t, dispatch.VariantSellAnalysis, m.env.Variant)
	assert.Len(t, m.env.Vendors, 5)
	assert.Equal(t, 0, m.activeVendor)
}

func TestUpdate_StaleDispatchDropped(t *testing.T) {
	m := newTestModel(t)

	model, _ := m.submit("first question")
	m = model.(Model)
	firstID := m.dispatchID

	model, _ = m.submit("second question")
	m = model.(Model)
	require.NotEqual(t, firstID, m.dispatchID)

	// The older request's result lands after the newer one was issued.
	stale := dispatchMsg{id: firstID, env: dispatch.Fallback(m.pos)}
	model, _ = m.Update(stale)
	m = model.(Model)
	assert.Nil(t, m.env, "stale envelope must not apply")
	assert.True(t, m.processing, "still waiting on the newer dispatch")
}

func TestUpdate_EnvelopeSwapClearsDerivedState(t *testing.T) {
	m := newTestModel(t)

	model, _ := m.applyEnvelope(dispatch.Fallback(m.pos))
	m = model.(Model)
	m.routeCoords = []types.LatLng{{Lat: 1, Lng: 1}}
	m.chart = &forecast.Chart{}

	confirm := &dispatch.Envelope{Variant: dispatch.VariantGrowConfirm, GrowCrop: "wheat"}
	m.dispatchID = uuid.New()
	model, _ = m.Update(dispatchMsg{id: m.dispatchID, env: confirm})
	m = model.(Model)

	assert.Equal(t, dispatch.VariantGrowConfirm, m.env.Variant)
	assert.Nil(t, m.chart)
	assert.Empty(t, m.chartCrop)
	assert.Empty(t, m.routeCoords)
	assert.Equal(t, types.LatLng{}, m.routeDest)
}

func TestUpdate_HistoryKeyedByCrop(t *testing.T) {
	m := newTestModel(t)
	m.chartCrop = "tomato"

	model, _ := m.Update(historyMsg{crop: "onion", chart: forecast.Chart{Labels: []string{"1/9"}}})
	m = model.(Model)
	assert.Nil(t, m.chart, "history for another commodity must not apply")

	model, _ = m.Update(historyMsg{crop: "tomato", chart: forecast.Chart{Labels: []string{"1/9"}}})
	m = model.(Model)
	require.NotNil(t, m.chart)
	assert.Equal(t, []string{"1/9"}, m.chart.Labels)
}

func TestUpdate_RouteKeyedByDestination(t *testing.T) {
	m := newTestModel(t)
	m.routeDest = types.LatLng{Lat: 13.0, Lng: 77.6}

	other := types.LatLng{Lat: 12.5, Lng: 77.0}
	model, _ := m.Update(routeMsg{dest: other, coords: []types.LatLng{other}})
	m = model.(Model)
	assert.Empty(t, m.routeCoords, "route to a deselected vendor must not apply")

	model, _ = m.Update(routeMsg{dest: m.routeDest, coords: []types.LatLng{m.pos, m.routeDest}})
	m = model.(Model)
	assert.Len(t, m.routeCoords, 2)
}

func TestSelectVendor_WrapsAndRekeysRoute(t *testing.T) {
	m := newTestModel(t)
	model, _ := m.applyEnvelope(dispatch.Fallback(m.pos))
	m = model.(Model)

	model, cmd := m.selectVendor(1)
	m = model.(Model)
	assert.Equal(t, 1, m.activeVendor)
	assert.Equal(t, m.env.Vendors[1].Coordinates(), m.routeDest)
	assert.NotNil(t, cmd)

	// Wrap past the end back to the first vendor.
	model, _ = m.selectVendor(5)
	m = model.(Model)
	assert.Equal(t, 0, m.activeVendor)

	// And backwards from the first to the last.
	model, _ = m.selectVendor(-1)
	m = model.(Model)
	assert.Equal(t, 4, m.activeVendor)
}

func TestHandleKey_EnterSubmitsAndClearsInput(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue("check weather")

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = model.(Model)
	assert.True(t, m.processing)
	assert.Empty(t, m.input.Value())
	assert.NotNil(t, cmd)

	// Enter with nothing typed is a no-op.
	m.processing = false
	model, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = model.(Model)
	assert.False(t, m.processing)
	assert.Nil(t, cmd)
}

func TestTranscript_DispatchesLikeTypedInput(t *testing.T) {
	m := newTestModel(t)

	model, cmd := m.Update(transcriptMsg{text: "sell 100kg tomato"})
	m = model.(Model)
	assert.True(t, m.processing)
	assert.NotNil(t, cmd)
}

func TestView_ForecastHighlightsBestDay(t *testing.T) {
	m := newTestModel(t)
	env := &dispatch.Envelope{
		Variant:  dispatch.VariantSellAnalysis,
		Quantity: 100,
		PriceForecast: []types.ForecastPoint{
			{DayLabel: "Tue", PredictedPrice: 42},
			{DayLabel: "Wed", PredictedPrice: 55},
			{DayLabel: "Thu", PredictedPrice: 51},
		},
		TodayPrice: 40,
	}
	model, _ := m.applyEnvelope(env)
	m = model.(Model)

	out := m.View()
	assert.Contains(t, out, "7-Day Price Prediction")
	assert.Contains(t, out, "Today")
	assert.Contains(t, out, "best day to sell")
	assert.Contains(t, out, "Best day: Wed")
	assert.Contains(t, out, "revenue ₹5500")
}

func TestView_RendersWithoutEnvelope(t *testing.T) {
	m := newTestModel(t)
	out := m.View()
	assert.Contains(t, out, "Farmer")
	assert.Contains(t, out, "ctrl+h")
}

func TestView_RendersFallbackEnvelope(t *testing.T) {
	m := newTestModel(t)
	model, _ := m.applyEnvelope(dispatch.Fallback(m.pos))
	m = model.(Model)

	out := m.View()
	assert.Contains(t, out, "demo data")
	assert.Contains(t, out, "APMC Yeshwanthpur")
	assert.Contains(t, out, "SELL_NOW")
}
