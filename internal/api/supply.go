package api

import (
	"context"

	"foodchain/internal/logging"
	"foodchain/internal/types"

	"golang.org/x/sync/errgroup"
)

// KPIs are the mandi overview headline numbers.
type KPIs struct {
	TotalInventoryKg float64 `json:"total_inventory_kg"`
	TotalValue       float64 `json:"total_value"`
	DailyInboundAvg  float64 `json:"daily_inbound_avg"`
	DailyOutboundAvg float64 `json:"daily_outbound_avg"`
	ActiveFarmers    int     `json:"active_farmers"`
	ActiveRetailers  int     `json:"active_retailers"`
	TrucksActive     int     `json:"trucks_active"`
	PendingOrders    int     `json:"pending_orders"`
}

// FlowDay is one day of inbound or outbound tonnage.
type FlowDay struct {
	Date  string  `json:"date"`
	QtyKg float64 `json:"qty_kg"`
}

// InventoryItem is one live stock line.
type InventoryItem struct {
	Crop       string  `json:"crop"`
	Emoji      string  `json:"emoji"`
	QtyKg      float64 `json:"qty_kg"`
	PricePerKg float64 `json:"price_per_kg"`
	Value      float64 `json:"value"`
	ChangePct  float64 `json:"change_pct"`
}

// Overview is the mandi overview read.
type Overview struct {
	KPIs       KPIs            `json:"kpis"`
	Inbound7d  []FlowDay       `json:"inbound_7d"`
	Outbound7d []FlowDay       `json:"outbound_7d"`
	Inventory  []InventoryItem `json:"inventory"`
}

// CropForecast is one commodity's history and 7-day prediction, as computed
// by the backend for the standalone forecast panel.
type CropForecast struct {
	Crop             string       `json:"crop"`
	Emoji            string       `json:"emoji"`
	CurrentPrice     float64      `json:"current_price"`
	PredictedPrice7d float64      `json:"predicted_price_7d"`
	Trend            string       `json:"trend"` // up, down, flat
	TrendPct         float64      `json:"trend_pct"`
	History          []DatedPrice `json:"history"`
	Forecast         []DatedPrice `json:"forecast"`
}

// DatedPrice is a (date, price) pair in a crop forecast.
type DatedPrice struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// ForecastSet is the forecast panel read.
type ForecastSet struct {
	Forecasts []CropForecast `json:"forecasts"`
}

// Truck is one fleet vehicle.
type Truck struct {
	ID             string  `json:"id"`
	Type           string  `json:"type"`
	Driver         string  `json:"driver"`
	Status         string  `json:"status"` // delivering, returning, loading, idle, delayed
	Cargo          string  `json:"cargo"`
	CargoKg        float64 `json:"cargo_kg"`
	CapacityKg     float64 `json:"capacity_kg"`
	UtilizationPct float64 `json:"utilization_pct"`
	Destination    string  `json:"destination"`
	ETAMin         float64 `json:"eta_min"`
	OriginLat      float64 `json:"origin_lat"`
	OriginLng      float64 `json:"origin_lng"`
	DestLat        float64 `json:"dest_lat"`
	DestLng        float64 `json:"dest_lng"`
	CurrentLat     float64 `json:"current_lat"`
	CurrentLng     float64 `json:"current_lng"`
}

// FleetSummary counts trucks by state.
type FleetSummary struct {
	Total      int `json:"total"`
	Delivering int `json:"delivering"`
	Delayed    int `json:"delayed"`
	Idle       int `json:"idle"`
}

// RetailPoint is a retailer demand location on the trucks panel.
type RetailPoint struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Demand string  `json:"demand"`
}

// TruckFleet is the trucks panel read.
type TruckFleet struct {
	Summary   FleetSummary  `json:"summary"`
	Mandi     types.LatLng  `json:"mandi"`
	Retailers []RetailPoint `json:"retailers"`
	Fleet     []Truck       `json:"fleet"`
}

// Intervention is one recommended supply-chain action.
type Intervention struct {
	ID          int    `json:"id"`
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Urgency     string `json:"urgency"` // low, medium, high, critical
	Description string `json:"description"`
	Impact      string `json:"impact"`
	Cost        string `json:"cost"`
	TradeOff    string `json:"trade_off"`
}

// Interventions is the interventions panel read.
type Interventions struct {
	TotalPotentialSavings string         `json:"total_potential_savings"`
	Interventions         []Intervention `json:"interventions"`
}

// SupplyChain aggregates the five independent panel reads. A nil field means
// that panel's fetch failed; the others render from whatever succeeded.
type SupplyChain struct {
	Overview      *Overview
	Stress        *types.RiskState
	Forecast      *ForecastSet
	Trucks        *TruckFleet
	Interventions *Interventions
}

// FetchSupplyChain issues the five supply-chain reads concurrently. Each is
// tolerant of individual failure: a failed endpoint leaves its field nil and
// never fails the aggregate. The returned error is always nil and exists only
// to keep the call shape honest about the network underneath.
func (c *Client) FetchSupplyChain(ctx context.Context) (*SupplyChain, error) {
	log := logging.Get(logging.CategoryAPI)
	sc := &SupplyChain{}

	g, ctx := errgroup.WithContext(ctx)
	fetch := func(name string, out interface{}, assign func()) func() error {
		return func() error {
			if err := c.get(ctx, "/api/mandi/supply-chain/"+name, out); err != nil {
				log.Warn("supply-chain %s unavailable: %v", name, err)
				return nil
			}
			assign()
			return nil
		}
	}

	var (
		overview      Overview
		stress        types.RiskState
		forecast      ForecastSet
		trucks        TruckFleet
		interventions Interventions
	)
	g.Go(fetch("overview", &overview, func() { sc.Overview = &overview }))
	g.Go(fetch("stress", &stress, func() { sc.Stress = &stress }))
	g.Go(fetch("forecast", &forecast, func() { sc.Forecast = &forecast }))
	g.Go(fetch("trucks", &trucks, func() { sc.Trucks = &trucks }))
	g.Go(fetch("interventions", &interventions, func() { sc.Interventions = &interventions }))

	_ = g.Wait()
	return sc, nil
}
