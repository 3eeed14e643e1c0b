// Package types defines the shared domain model for the FoodChain dashboards:
// vendor quotes, price history, forecasts, scenario inputs/results, risk state,
// and alert dispatch records. All JSON tags mirror the backend wire format.
package types

import "time"

// LatLng is a geographic coordinate in consumer order (latitude first).
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// VendorQuote is one market's offer for a commodity. Quotes arrive ranked by
// price and are immutable once received; the active selection is UI state.
type VendorQuote struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
	DistanceKm    float64 `json:"distance_km"`
	PricePerKg    float64 `json:"price_per_kg"`
	TransportCost float64 `json:"transport_cost"`
	TravelTimeMin float64 `json:"travel_time_min"`
}

// Coordinates returns the quote's location as a LatLng.
func (v VendorQuote) Coordinates() LatLng {
	return LatLng{Lat: v.Lat, Lng: v.Lng}
}

// Revenue is the gross take for selling qty kilograms at this vendor.
func (v VendorQuote) Revenue(qtyKg float64) float64 {
	return qtyKg * v.PricePerKg
}

// Profit is revenue minus the transport cost to reach this vendor.
func (v VendorQuote) Profit(qtyKg float64) float64 {
	return v.Revenue(qtyKg) - v.TransportCost
}

// BestVendor returns the highest-priced quote, or nil for an empty list.
// Ties resolve to the earliest entry.
func BestVendor(quotes []VendorQuote) *VendorQuote {
	if len(quotes) == 0 {
		return nil
	}
	best := 0
	for i := 1; i < len(quotes); i++ {
		if quotes[i].PricePerKg > quotes[best].PricePerKg {
			best = i
		}
	}
	return &quotes[best]
}

// PricePoint is one observed market price on one calendar date.
type PricePoint struct {
	Date       string  `json:"date"`
	MandiName  string  `json:"mandi_name"`
	PricePerKg float64 `json:"price_per_kg"`
}

// PriceHistory is the trailing price window for one commodity across vendors.
type PriceHistory struct {
	Crop    string       `json:"crop"`
	History []PricePoint `json:"history"`
}

// ForecastPoint is one predicted price on the 7-day horizon.
type ForecastPoint struct {
	DayLabel       string  `json:"day_label"`
	PredictedPrice float64 `json:"predicted_price"`
}

// TimingFactor is one market condition influencing the sell/wait verdict.
type TimingFactor struct {
	Icon       string `json:"icon"`
	Factor     string `json:"factor"`
	Impact     string `json:"impact"`
	Suggestion string `json:"suggestion"`
}

// SellTiming is the backend's timing verdict for a sell request.
type SellTiming struct {
	Action    string  `json:"action"` // SELL_TODAY, WAIT_2_DAYS, WAIT_NEXT_WEEK
	Reason    string  `json:"reason"`
	BestPrice float64 `json:"best_price"`
	BestDay   string  `json:"best_day"`
}

// BestMandi is the recommendation's pick, a reduced vendor view.
type BestMandi struct {
	Name       string  `json:"name"`
	PricePerKg float64 `json:"price_per_kg"`
	DistanceKm float64 `json:"distance_km"`
}

// Recommendation is the AI verdict attached to a sell analysis.
type Recommendation struct {
	Recommendation string     `json:"recommendation"` // SELL_NOW or WAIT
	BestMandi      *BestMandi `json:"best_mandi,omitempty"`
	SpokenSummary  string     `json:"spoken_summary,omitempty"`
	PriceTrend     string     `json:"price_trend,omitempty"`
}

// SellRequest echoes the parsed crop and quantity of a sell utterance.
type SellRequest struct {
	Crop     string  `json:"crop"`
	Quantity float64 `json:"quantity"`
}

// SellAnalysis is the full payload of a sell_analysis response.
type SellAnalysis struct {
	AIRecommendation *Recommendation `json:"ai_recommendation,omitempty"`
	Mandis           []VendorQuote   `json:"mandis"`
	Request          *SellRequest    `json:"request,omitempty"`
	TimingFactors    []TimingFactor  `json:"timing_factors,omitempty"`
	SellTiming       *SellTiming     `json:"sell_timing,omitempty"`
	PriceForecast    []ForecastPoint `json:"price_forecast,omitempty"`
	TodayPrice       float64         `json:"today_price,omitempty"`
	Weather          *Weather        `json:"weather,omitempty"`
}

// AdviceSection is one themed block of an advice card.
type AdviceSection struct {
	Icon    string `json:"icon"`
	Heading string `json:"heading"`
	Content string `json:"content"`
}

// Advice is the payload of an advice_card response.
type Advice struct {
	Title          string          `json:"title"`
	Recommendation string          `json:"recommendation"`
	Timing         string          `json:"timing,omitempty"`
	Sections       []AdviceSection `json:"sections,omitempty"`
	Steps          []string        `json:"steps,omitempty"`
	RiskFactors    []string        `json:"risk_factors,omitempty"`
	SpokenSummary  string          `json:"spoken_summary,omitempty"`
}

// Weather is the payload of a weather response.
type Weather struct {
	Summary string `json:"summary"`
}

// ScenarioInputs is the what-if simulator's slider triple. The triple is the
// sole recompute key: identical triples must not refetch within a burst.
type ScenarioInputs struct {
	RainDays          int `json:"rain_days"`           // 0..7
	DemandSurgePct    int `json:"demand_surge_pct"`    // 0..100
	TransportDelayPct int `json:"transport_delay_pct"` // 0..100
}

// ScenarioMetrics holds the five headline metrics of a scenario run.
type ScenarioMetrics struct {
	SupplyKg    float64 `json:"supply_kg"`
	DemandKg    float64 `json:"demand_kg"`
	PriceIndex  float64 `json:"price_index"`
	RiskScore   float64 `json:"risk_score"`
	SpoilagePct float64 `json:"spoilage_pct"`
	GapKg       float64 `json:"gap_kg"`
}

// CropImpact is the per-commodity effect of a scenario.
type CropImpact struct {
	Crop            string  `json:"crop"`
	Emoji           string  `json:"emoji"`
	PriceChangePct  float64 `json:"price_change_pct"`
	SupplyChangePct float64 `json:"supply_change_pct"`
	Risk            string  `json:"risk"` // low, medium, high
}

// ScenarioTip is one recommendation emitted by the simulator backend.
type ScenarioTip struct {
	Icon string `json:"icon"`
	Text string `json:"text"`
}

// ScenarioResult is the backend's answer for one input triple.
type ScenarioResult struct {
	Baseline        ScenarioMetrics `json:"baseline"`
	Predicted       ScenarioMetrics `json:"predicted"`
	CropImpacts     []CropImpact    `json:"crop_impacts"`
	Recommendations []ScenarioTip   `json:"recommendations"`
}

// RiskSignal is one active disruption signal.
type RiskSignal struct {
	Type     string `json:"type"`     // price, weather, demand, transport
	Severity string `json:"severity"` // low, medium, high, critical
	Icon     string `json:"icon,omitempty"`
	Title    string `json:"title"`
	Detail   string `json:"detail"`
	Impact   string `json:"impact,omitempty"`
	Action   string `json:"action,omitempty"`
	Crop     string `json:"crop,omitempty"`
}

// RiskState is the supply-chain stress read.
type RiskState struct {
	RiskScore   float64      `json:"risk_score"` // 0..100
	RiskLevel   string       `json:"risk_level"`
	Signals     []RiskSignal `json:"signals"`
	LastUpdated string       `json:"last_updated"`
}

// AlertAction records one notification channel's dispatch outcome.
type AlertAction struct {
	Type   string `json:"type"` // notification, sms, call
	Status string `json:"status"`
	Detail string `json:"detail"`
	SID    string `json:"sid,omitempty"`
}

// AlertDispatch is the result of one alert trigger.
type AlertDispatch struct {
	RiskLevel        string        `json:"risk_level"`
	RiskScore        float64       `json:"risk_score"`
	ActionsTaken     []AlertAction `json:"actions_taken"`
	Errors           []string      `json:"errors,omitempty"`
	NumbersContacted []string      `json:"numbers_contacted,omitempty"`
	Timestamp        time.Time     `json:"-"`
}
