// Package dispatch turns a finished utterance into exactly one response
// envelope. The envelope is a tagged union over the backend's response
// variants; building a fresh envelope per dispatch is what guarantees no
// field from a previous variant survives into the next one.
package dispatch

import (
	"context"
	"math"

	"foodchain/internal/api"
	"foodchain/internal/logging"
	"foodchain/internal/types"
)

// Variant tags the active case of an Envelope.
type Variant string

const (
	VariantSellAnalysis Variant = "sell_analysis"
	VariantGrowConfirm  Variant = "grow_confirm"
	VariantAdviceCard   Variant = "advice_card"
	VariantWeather      Variant = "weather"
	VariantPriceCheck   Variant = "price_check"
	VariantError        Variant = "error"
)

const (
	// maxVendors caps the vendor list shown for a sell or price reply.
	maxVendors = 5
	// defaultCrop backs the follow-up price fetch when the reply names none.
	defaultCrop     = "tomato"
	defaultQuantity = 100
)

// Envelope is the result of one dispatch. Exactly the fields of the active
// Variant are populated; everything else is zero. Replacing the model's
// envelope pointer with a new one clears all prior derived state at once.
type Envelope struct {
	Variant Variant

	// sell_analysis
	Analysis      *types.SellAnalysis
	TimingFactors []types.TimingFactor
	SellTiming    *types.SellTiming
	PriceForecast []types.ForecastPoint
	TodayPrice    float64
	Quantity      float64

	// sell_analysis and price_check
	Vendors []types.VendorQuote
	Crop    string

	// grow_confirm
	GrowCrop string

	// advice_card
	Advice *types.Advice

	// weather (also attached to sell_analysis replies that carry one)
	Weather *types.Weather

	// Speak is the summary routed to playback, when the variant has one.
	Speak string

	// FollowupCrop, when set, names the commodity whose price history
	// should be refetched after this envelope is applied.
	FollowupCrop string

	// Offline marks a locally synthesized fallback envelope.
	Offline bool
}

// A Backend answers voice intents. Satisfied by *api.Client.
type Backend interface {
	VoiceIntent(ctx context.Context, text string, pos types.LatLng) (*api.VoiceReply, error)
}

// Dispatcher classifies backend replies into envelopes.
type Dispatcher struct {
	backend Backend
}

func NewDispatcher(backend Backend) *Dispatcher {
	return &Dispatcher{backend: backend}
}

// Dispatch sends the utterance and classifies the reply. It never returns
// an error: any transport failure degrades to the offline fallback built
// from the caller's position, which downstream consumers render exactly
// like a genuine sell analysis.
func (d *Dispatcher) Dispatch(ctx context.Context, text string, pos types.LatLng) *Envelope {
	reply, err := d.backend.VoiceIntent(ctx, text, pos)
	if err != nil {
		logging.Warn(logging.CategoryDispatch, "voice intent failed, serving fallback: %v", err)
		return Fallback(pos)
	}
	env := Classify(reply)
	logging.Info(logging.CategoryDispatch, "dispatched %q as %s", text, env.Variant)
	return env
}

// Classify maps a backend reply onto its envelope variant. Replies whose
// tag is unknown, or whose required payload is missing, classify as error.
func Classify(reply *api.VoiceReply) *Envelope {
	switch reply.ResponseType {
	case string(VariantSellAnalysis):
		if reply.Analysis == nil {
			break
		}
		a := reply.Analysis
		env := &Envelope{
			Variant:       VariantSellAnalysis,
			Analysis:      a,
			Vendors:       capVendors(a.Mandis),
			TimingFactors: a.TimingFactors,
			SellTiming:    a.SellTiming,
			PriceForecast: a.PriceForecast,
			TodayPrice:    a.TodayPrice,
			Weather:       a.Weather,
			Crop:          cropOf(a.Request, reply.ParsedCommand),
			Quantity:      quantityOf(a.Request, reply.ParsedCommand),
		}
		env.FollowupCrop = env.Crop
		if env.FollowupCrop == "" {
			env.FollowupCrop = defaultCrop
		}
		if a.AIRecommendation != nil {
			env.Speak = a.AIRecommendation.SpokenSummary
		}
		return env

	case string(VariantGrowConfirm):
		return &Envelope{
			Variant:  VariantGrowConfirm,
			GrowCrop: reply.Crop,
			Speak:    reply.SpokenSummary,
		}

	case string(VariantAdviceCard):
		if reply.Advice == nil {
			break
		}
		return &Envelope{
			Variant: VariantAdviceCard,
			Advice:  reply.Advice,
			Speak:   reply.Advice.SpokenSummary,
		}

	case string(VariantWeather):
		if reply.Weather == nil {
			break
		}
		return &Envelope{
			Variant: VariantWeather,
			Weather: reply.Weather,
			Speak:   reply.Weather.Summary,
		}

	case string(VariantPriceCheck):
		env := &Envelope{
			Variant:      VariantPriceCheck,
			Crop:         reply.Crop,
			Vendors:      capVendors(reply.Mandis),
			FollowupCrop: reply.Crop,
		}
		if env.FollowupCrop == "" {
			env.FollowupCrop = defaultCrop
		}
		return env
	}
	return &Envelope{Variant: VariantError, Speak: reply.SpokenSummary}
}

func capVendors(mandis []types.VendorQuote) []types.VendorQuote {
	if len(mandis) > maxVendors {
		return mandis[:maxVendors]
	}
	return mandis
}

func cropOf(req, parsed *types.SellRequest) string {
	if req != nil && req.Crop != "" {
		return req.Crop
	}
	if parsed != nil {
		return parsed.Crop
	}
	return ""
}

func quantityOf(req, parsed *types.SellRequest) float64 {
	if req != nil && req.Quantity > 0 {
		return req.Quantity
	}
	if parsed != nil && parsed.Quantity > 0 {
		return parsed.Quantity
	}
	return defaultQuantity
}

// fallbackApology is spoken when the backend cannot be reached.
const fallbackApology = "बैकेंड से कनेक्ट नहीं हो पा रहा। डेमो डाटा दिखा रहे हैं।"

var fallbackVendorNames = []string{
	"APMC Yeshwanthpur",
	"KR Market",
	"Binny Mill APMC",
	"Chikkaballapur",
	"Kolar Mandi",
}

// Fallback builds the offline sell-analysis envelope from the caller's
// position. Vendors fan out around the caller with strictly descending
// prices and growing distances, so every downstream component renders the
// fallback exactly like a live reply.
func Fallback(pos types.LatLng) *Envelope {
	vendors := FallbackVendors(pos)
	best := vendors[0]
	env := &Envelope{
		Variant:  VariantSellAnalysis,
		Vendors:  vendors,
		Crop:     defaultCrop,
		Quantity: defaultQuantity,
		Analysis: &types.SellAnalysis{
			AIRecommendation: &types.Recommendation{
				Recommendation: "SELL_NOW",
				BestMandi: &types.BestMandi{
					Name:       best.Name,
					PricePerKg: best.PricePerKg,
					DistanceKm: best.DistanceKm,
				},
				SpokenSummary: "अभी बेचना अच्छा रहेगा।",
				PriceTrend:    "Prices trending UP",
			},
			Mandis:  vendors,
			Request: &types.SellRequest{Crop: defaultCrop, Quantity: defaultQuantity},
		},
		TimingFactors: []types.TimingFactor{
			{Icon: "☀️", Factor: "Clear weather", Impact: "Good time for transport", Suggestion: "sell"},
			{Icon: "📈", Factor: "Price trend UP", Impact: "Prices rising this week", Suggestion: "sell now"},
		},
		Speak:   fallbackApology,
		Offline: true,
	}
	return env
}

// FallbackVendors synthesizes the five demo quotes. Offsets alternate
// direction so the vendors spread around the caller instead of lining up.
func FallbackVendors(pos types.LatLng) []types.VendorQuote {
	vendors := make([]types.VendorQuote, len(fallbackVendorNames))
	for i, name := range fallbackVendorNames {
		latOff, lngOff := 0.08, -0.05
		if i%2 == 1 {
			latOff, lngOff = -0.06, 0.07
		}
		vendors[i] = types.VendorQuote{
			ID:            i + 1,
			Name:          name,
			Lat:           pos.Lat + latOff*float64(i+1),
			Lng:           pos.Lng + lngOff*float64(i+1),
			DistanceKm:    math.Round(8 + float64(i)*12),
			PricePerKg:    math.Round(48 - float64(i)*4),
			TransportCost: math.Round(300 + float64(i)*250),
			TravelTimeMin: math.Round(20 + float64(i)*15),
		}
	}
	return vendors
}
