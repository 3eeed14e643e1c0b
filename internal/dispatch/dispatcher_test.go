package dispatch

import (
	"context"
	"errors"
	"testing"

	"foodchain/internal/api"
	"foodchain/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBackend struct {
	reply *api.VoiceReply
	err   error
	texts []string
}

func (s *stubBackend) VoiceIntent(_ context.Context, text string, _ types.LatLng) (*api.VoiceReply, error) {
	s.texts = append(s.texts, text)
	return s.reply, s.err
}

func quotes(n int) []types.VendorQuote {
	out := make([]types.VendorQuote, n)
	for i := range out {
		out[i] = types.VendorQuote{ID: i + 1, Name: "M", PricePerKg: float64(50 - i)}
	}
	return out
}

func TestClassify_SellAnalysis(t *testing.T) {
	reply := &api.VoiceReply{
		ResponseType: "sell_analysis",
		Analysis: &types.SellAnalysis{
			AIRecommendation: &types.Recommendation{Recommendation: "SELL_NOW", SpokenSummary: "sell now"},
			Mandis:           quotes(7),
			Request:          &types.SellRequest{Crop: "onion", Quantity: 250},
			TimingFactors:    []types.TimingFactor{{Factor: "Rain ahead"}},
			TodayPrice:       44,
		},
	}
	env := Classify(reply)

	assert.Equal(t, VariantSellAnalysis, env.Variant)
	assert.Len(t, env.Vendors, 5)
	assert.Equal(t, "onion", env.Crop)
	assert.Equal(t, 250.0, env.Quantity)
	assert.Equal(t, "onion", env.FollowupCrop)
	assert.Equal(t, "sell now", env.Speak)
	assert.Equal(t, 44.0, env.TodayPrice)

	// Fields of other variants stay zero.
	assert.Nil(t, env.Advice)
	assert.Empty(t, env.GrowCrop)
	assert.False(t, env.Offline)
}

func TestClassify_SellAnalysisFallsBackToParsedCommand(t *testing.T) {
	reply := &api.VoiceReply{
		ResponseType:  "sell_analysis",
		Analysis:      &types.SellAnalysis{Mandis: quotes(2)},
		ParsedCommand: &types.SellRequest{Crop: "carrot", Quantity: 80},
	}
	env := Classify(reply)
	assert.Equal(t, "carrot", env.Crop)
	assert.Equal(t, 80.0, env.Quantity)
	assert.Empty(t, env.Speak)
}

func TestClassify_GrowConfirm(t *testing.T) {
	env := Classify(&api.VoiceReply{
		ResponseType:  "grow_confirm",
		Crop:          "wheat",
		SpokenSummary: "noted",
	})
	assert.Equal(t, VariantGrowConfirm, env.Variant)
	assert.Equal(t, "wheat", env.GrowCrop)
	assert.Equal(t, "noted", env.Speak)
	assert.Empty(t, env.FollowupCrop)
	assert.Nil(t, env.Vendors)
}

func TestClassify_AdviceCard(t *testing.T) {
	env := Classify(&api.VoiceReply{
		ResponseType: "advice_card",
		Advice:       &types.Advice{Title: "Pest control", SpokenSummary: "use neem"},
	})
	assert.Equal(t, VariantAdviceCard, env.Variant)
	require.NotNil(t, env.Advice)
	assert.Equal(t, "use neem", env.Speak)
	assert.Nil(t, env.Analysis)
}

func TestClassify_Weather(t *testing.T) {
	env := Classify(&api.VoiceReply{
		ResponseType: "weather",
		Weather:      &types.Weather{Summary: "clear skies"},
	})
	assert.Equal(t, VariantWeather, env.Variant)
	assert.Equal(t, "clear skies", env.Speak)
}

func TestClassify_PriceCheck(t *testing.T) {
	env := Classify(&api.VoiceReply{
		ResponseType: "price_check",
		Crop:         "carrot",
		Mandis:       quotes(6),
	})
	assert.Equal(t, VariantPriceCheck, env.Variant)
	assert.Len(t, env.Vendors, 5)
	assert.Equal(t, "carrot", env.FollowupCrop)
	assert.Nil(t, env.Analysis)
	assert.Empty(t, env.Speak)
}

func TestClassify_PriceCheckWithoutCropUsesDefault(t *testing.T) {
	env := Classify(&api.VoiceReply{ResponseType: "price_check"})
	assert.Equal(t, "tomato", env.FollowupCrop)
}

func TestClassify_MissingPayloadIsError(t *testing.T) {
	for _, reply := range []*api.VoiceReply{
		{ResponseType: "sell_analysis"},
		{ResponseType: "advice_card"},
		{ResponseType: "weather"},
		{ResponseType: "error", SpokenSummary: "samajh nahi aaya"},
		{ResponseType: "something_new"},
	} {
		env := Classify(reply)
		assert.Equal(t, VariantError, env.Variant, "type %q", reply.ResponseType)
		assert.Nil(t, env.Analysis)
		assert.Nil(t, env.Vendors)
	}
}

func TestDispatch_TransportFailureServesFallback(t *testing.T) {
	d := NewDispatcher(&stubBackend{err: errors.New("connection refused")})
	pos := types.LatLng{Lat: 12.9716, Lng: 77.5946}
	env := d.Dispatch(context.Background(), "sell 100kg tomato", pos)

	assert.True(t, env.Offline)
	assert.Equal(t, VariantSellAnalysis, env.Variant)
	assert.Equal(t, fallbackApology, env.Speak)

	require.Len(t, env.Vendors, 5)
	for i := 1; i < len(env.Vendors); i++ {
		assert.Less(t, env.Vendors[i].PricePerKg, env.Vendors[i-1].PricePerKg)
		assert.Greater(t, env.Vendors[i].DistanceKm, env.Vendors[i-1].DistanceKm)
	}

	// Shape matches a live sell analysis: everything downstream needs is set.
	require.NotNil(t, env.Analysis)
	require.NotNil(t, env.Analysis.AIRecommendation)
	assert.Equal(t, "SELL_NOW", env.Analysis.AIRecommendation.Recommendation)
	assert.Equal(t, env.Vendors[0].Name, env.Analysis.AIRecommendation.BestMandi.Name)
	assert.Equal(t, "tomato", env.Analysis.Request.Crop)
	assert.Len(t, env.TimingFactors, 2)
}

func TestFallbackVendors_OffsetsFanOut(t *testing.T) {
	pos := types.LatLng{Lat: 12.9716, Lng: 77.5946}
	v := FallbackVendors(pos)
	require.Len(t, v, 5)

	assert.InDelta(t, pos.Lat+0.08, v[0].Lat, 1e-9)
	assert.InDelta(t, pos.Lng-0.05, v[0].Lng, 1e-9)
	assert.InDelta(t, pos.Lat-0.06*2, v[1].Lat, 1e-9)
	assert.InDelta(t, pos.Lng+0.07*2, v[1].Lng, 1e-9)

	assert.Equal(t, 8.0, v[0].DistanceKm)
	assert.Equal(t, 48.0, v[0].PricePerKg)
	assert.Equal(t, 300.0, v[0].TransportCost)
	assert.Equal(t, 20.0, v[0].TravelTimeMin)
	assert.Equal(t, 56.0, v[4].DistanceKm)
	assert.Equal(t, 32.0, v[4].PricePerKg)
}

func TestDispatch_SuccessClassifies(t *testing.T) {
	sb := &stubBackend{reply: &api.VoiceReply{ResponseType: "grow_confirm", Crop: "wheat"}}
	env := NewDispatcher(sb).Dispatch(context.Background(), "I grow wheat", types.LatLng{})

	assert.Equal(t, VariantGrowConfirm, env.Variant)
	assert.False(t, env.Offline)
	assert.Equal(t, []string{"I grow wheat"}, sb.texts)
}
