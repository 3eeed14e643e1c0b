// Package forecast derives short-horizon price forecasts from trailing price
// history. The extrapolation is a linear trend over the last five observed
// points, floored so predictions never fall below a physical minimum.
package forecast

import (
	"math"
	"sort"
	"time"

	"foodchain/internal/types"
)

const (
	// Horizon is the fixed number of forecast points, independent of how
	// much history is available.
	Horizon = 7

	// trendWindow is the trailing-window size for the per-step trend.
	trendWindow = 5

	// priceFloor keeps extrapolated prices physical.
	priceFloor = 5

	// seedPrice anchors the forecast when a vendor has no history at all.
	seedPrice = 30

	// maxVendors caps how many vendor series are charted.
	maxVendors = 3
)

// Series is the chartable output for one vendor: the real observations (nil
// where the vendor has no quote that day) followed by exactly Horizon forecast
// points. ForecastFrom is the index of the last real point; the segment
// leaving it is the first one drawn dashed.
type Series struct {
	Vendor       string
	Real         []*float64
	Forecast     []float64
	ForecastFrom int
}

// Chart holds aligned per-vendor series plus the shared day labels
// (history dates then Horizon future dates, "D/M" format).
type Chart struct {
	Labels []string
	Series []Series
}

// Build assembles the combined history+forecast chart for a price history.
// Vendors chart in first-appearance order, capped at three; dates are the
// sorted set of calendar dates present in the history.
func Build(h types.PriceHistory) Chart {
	vendors := vendorOrder(h.History, maxVendors)
	dates := dateOrder(h.History)

	chart := Chart{Labels: labels(dates)}
	for _, name := range vendors {
		real := realSeries(h.History, name, dates)
		chart.Series = append(chart.Series, Series{
			Vendor:       name,
			Real:         real,
			Forecast:     Extrapolate(real),
			ForecastFrom: len(real) - 1,
		})
	}
	return chart
}

// Extrapolate produces exactly Horizon forecast points from a real series.
// The trend is (last - first) / count over the last trendWindow non-nil
// points, zero when fewer than two points exist; each forecast value is
// max(priceFloor, round(last + trend*i, 1)). An empty series seeds from
// seedPrice with zero trend.
func Extrapolate(real []*float64) []float64 {
	var window []float64
	for _, p := range real {
		if p != nil {
			window = append(window, *p)
		}
	}
	if len(window) > trendWindow {
		window = window[len(window)-trendWindow:]
	}

	last := float64(seedPrice)
	trend := 0.0
	if len(window) > 0 {
		last = window[len(window)-1]
	}
	if len(window) > 1 {
		trend = (window[len(window)-1] - window[0]) / float64(len(window))
	}

	out := make([]float64, Horizon)
	for i := 1; i <= Horizon; i++ {
		out[i-1] = math.Max(priceFloor, round1(last+trend*float64(i)))
	}
	return out
}

// BestDay returns the index and value of the maximum predicted price across
// a forecast. Ties resolve to the earliest day. ok is false for an empty
// forecast.
func BestDay(points []types.ForecastPoint) (idx int, price float64, ok bool) {
	if len(points) == 0 {
		return 0, 0, false
	}
	idx, price = 0, points[0].PredictedPrice
	for i, p := range points[1:] {
		if p.PredictedPrice > price {
			idx, price = i+1, p.PredictedPrice
		}
	}
	return idx, price, true
}

func vendorOrder(history []types.PricePoint, max int) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range history {
		if seen[p.MandiName] {
			continue
		}
		seen[p.MandiName] = true
		out = append(out, p.MandiName)
		if len(out) == max {
			break
		}
	}
	return out
}

func dateOrder(history []types.PricePoint) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range history {
		if !seen[p.Date] {
			seen[p.Date] = true
			out = append(out, p.Date)
		}
	}
	sort.Strings(out)
	return out
}

func realSeries(history []types.PricePoint, vendor string, dates []string) []*float64 {
	byDate := make(map[string]float64)
	for _, p := range history {
		if p.MandiName == vendor {
			byDate[p.Date] = p.PricePerKg
		}
	}
	out := make([]*float64, len(dates))
	for i, d := range dates {
		if price, ok := byDate[d]; ok {
			v := price
			out[i] = &v
		}
	}
	return out
}

// labels renders history dates as "D/M" and appends Horizon future labels
// counted from the last known date. Unparseable dates pass through verbatim.
func labels(dates []string) []string {
	out := make([]string, 0, len(dates)+Horizon)
	var lastDay time.Time
	for _, d := range dates {
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			out = append(out, d)
			continue
		}
		lastDay = t
		out = append(out, dayLabel(t))
	}
	if lastDay.IsZero() {
		lastDay = time.Now()
	}
	for i := 1; i <= Horizon; i++ {
		out = append(out, dayLabel(lastDay.AddDate(0, 0, i)))
	}
	return out
}

func dayLabel(t time.Time) string {
	return t.Format("2/1")
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
