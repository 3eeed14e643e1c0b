package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"foodchain/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoiceIntent_DecodesSellAnalysis(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/farmer/voice", r.URL.Path)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "sell 100kg tomato", req["text"])
		assert.InDelta(t, 12.9716, req["lat"], 1e-9)

		fmt.Fprint(w, `{
			"response_type": "sell_analysis",
			"analysis": {
				"mandis": [{"id":1,"name":"KR Market","price_per_kg":48,"distance_km":8}],
				"request": {"crop":"tomato","quantity":100},
				"ai_recommendation": {"recommendation":"SELL_NOW","spoken_summary":"sell now"}
			}
		}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	reply, err := c.VoiceIntent(context.Background(), "sell 100kg tomato", types.LatLng{Lat: 12.9716, Lng: 77.5946})
	require.NoError(t, err)

	assert.Equal(t, "sell_analysis", reply.ResponseType)
	require.NotNil(t, reply.Analysis)
	require.Len(t, reply.Analysis.Mandis, 1)
	assert.Equal(t, 48.0, reply.Analysis.Mandis[0].PricePerKg)
	assert.Equal(t, "tomato", reply.Analysis.Request.Crop)
	assert.Equal(t, "SELL_NOW", reply.Analysis.AIRecommendation.Recommendation)
}

func TestVoiceIntent_MissingTypeBecomesError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	reply, err := NewClient(srv.URL, time.Second).VoiceIntent(context.Background(), "hello", types.LatLng{})
	require.NoError(t, err)
	assert.Equal(t, "error", reply.ResponseType)
}

func TestVoiceIntent_TransportFailure(t *testing.T) {
	_, err := NewClient("http://127.0.0.1:1", 200*time.Millisecond).
		VoiceIntent(context.Background(), "hello", types.LatLng{})
	assert.Error(t, err)
}

func TestPriceHistory_QueryAndDecode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/farmer/price-history", r.URL.Path)
		assert.Equal(t, "tomato", r.URL.Query().Get("crop"))
		assert.Equal(t, "30", r.URL.Query().Get("days"))
		fmt.Fprint(w, `{"history":[{"date":"2026-08-01","mandi_name":"KR Market","price_per_kg":42.5}]}`)
	}))
	defer srv.Close()

	h, err := NewClient(srv.URL, time.Second).PriceHistory(context.Background(), "tomato", 30)
	require.NoError(t, err)
	assert.Equal(t, "tomato", h.Crop)
	require.Len(t, h.History, 1)
	assert.Equal(t, 42.5, h.History[0].PricePerKg)
}

func TestScenario_RoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in types.ScenarioInputs
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, 3, in.RainDays)
		assert.Equal(t, 40, in.DemandSurgePct)
		fmt.Fprint(w, `{
			"baseline": {"supply_kg":5000,"demand_kg":4500,"price_index":100,"risk_score":30,"spoilage_pct":5},
			"predicted": {"supply_kg":4200,"demand_kg":5100,"price_index":118,"risk_score":62,"spoilage_pct":9,"gap_kg":900},
			"crop_impacts": [{"crop":"Tomato","price_change_pct":14,"supply_change_pct":-18,"risk":"high"}],
			"recommendations": [{"icon":"x","text":"Pre-order from Kolar belt"}]
		}`)
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL, time.Second).Scenario(context.Background(),
		types.ScenarioInputs{RainDays: 3, DemandSurgePct: 40, TransportDelayPct: 10})
	require.NoError(t, err)
	assert.Equal(t, 900.0, res.Predicted.GapKg)
	require.Len(t, res.CropImpacts, 1)
	assert.Equal(t, "high", res.CropImpacts[0].Risk)
}

func TestAlertSimulate_RoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req AlertRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "critical", req.RiskLevel)
		require.Len(t, req.Signals, 1)
		fmt.Fprint(w, `{
			"risk_level": "critical",
			"risk_score": 75,
			"actions_taken": [
				{"type":"notification","status":"sent","detail":"In-app notification dispatched"},
				{"type":"sms","status":"sent","detail":"SMS sent","sid":"SM123"},
				{"type":"call","status":"initiated","detail":"Call placed"}
			],
			"numbers_contacted": ["+919620146061"]
		}`)
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL, time.Second).AlertSimulate(context.Background(), AlertRequest{
		RiskLevel: "critical",
		RiskScore: 75,
		Message:   "FoodChain Alert",
		Signals:   []AlertSignalRef{{Title: "Heavy rain"}},
	})
	require.NoError(t, err)
	assert.Len(t, res.ActionsTaken, 3)
	assert.Equal(t, "SM123", res.ActionsTaken[1].SID)
}

func TestFetchSupplyChain_PartialFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/mandi/supply-chain/overview":
			fmt.Fprint(w, `{"kpis":{"total_inventory_kg":12000,"active_farmers":40},"inventory":[{"crop":"Tomato","qty_kg":900}]}`)
		case "/api/mandi/supply-chain/stress":
			fmt.Fprint(w, `{"risk_score":55,"risk_level":"High","signals":[{"type":"weather","severity":"high","title":"Heavy rain"}]}`)
		case "/api/mandi/supply-chain/trucks":
			http.Error(w, "down", http.StatusBadGateway)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	sc, err := NewClient(srv.URL, time.Second).FetchSupplyChain(context.Background())
	require.NoError(t, err)

	// Successful panels populate.
	require.NotNil(t, sc.Overview)
	assert.Equal(t, 12000.0, sc.Overview.KPIs.TotalInventoryKg)
	require.NotNil(t, sc.Stress)
	assert.Equal(t, 55.0, sc.Stress.RiskScore)

	// Failed or missing panels stay nil without failing the rest.
	assert.Nil(t, sc.Trucks)
	assert.Nil(t, sc.Forecast)
	assert.Nil(t, sc.Interventions)
}
