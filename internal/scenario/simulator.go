// Package scenario runs the what-if simulator: every slider movement is a
// full recompute request keyed by its input triple, and only the reply for
// the newest triple is applied. Verdicts over the returned metrics use fixed
// per-metric predicates so the outcome badges never drift from one panel to
// another.
package scenario

import (
	"fmt"
	"sync"

	"foodchain/internal/logging"
	"foodchain/internal/types"
)

// Tracker decides which recompute results are still relevant. The slider
// triple is the request key: Begin registers a new triple, Accept admits a
// result only when its triple is still the newest one. Repeating the current
// triple is reported as a duplicate so callers skip the refetch.
type Tracker struct {
	mu      sync.Mutex
	current types.ScenarioInputs
	active  bool
}

// Begin registers in as the newest input triple. It returns false when in
// equals the triple already registered, meaning no new request is needed.
func (t *Tracker) Begin(in types.ScenarioInputs) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active && in == t.current {
		logging.Debug(logging.CategoryScenario, "duplicate triple %+v, skipping", in)
		return false
	}
	t.current = in
	t.active = true
	return true
}

// Accept reports whether a result computed for in should be applied.
// Results for any triple other than the newest are stale and dropped.
func (t *Tracker) Accept(in types.ScenarioInputs) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	ok := t.active && in == t.current
	if !ok {
		logging.Debug(logging.CategoryScenario, "dropping stale result for %+v", in)
	}
	return ok
}

// Current returns the newest registered triple.
func (t *Tracker) Current() types.ScenarioInputs {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Metric verdict thresholds. Price is favorable up to 110% of the implicit
// index baseline of 100; demand growth is always read as favorable since
// more demand means more trade.
const (
	priceIndexCeiling  = 110.0
	riskScoreCeiling   = 50.0
	spoilagePctCeiling = 8.0
)

// Verdict is one headline metric's favorable/unfavorable read.
type Verdict struct {
	Label     string
	Unit      string
	Baseline  float64
	Predicted float64
	Favorable bool
}

// Classify derives the five headline verdicts from a scenario result.
func Classify(res *types.ScenarioResult) []Verdict {
	b, p := res.Baseline, res.Predicted
	return []Verdict{
		{Label: "Supply", Unit: "kg/d", Baseline: b.SupplyKg, Predicted: p.SupplyKg, Favorable: p.SupplyKg >= b.SupplyKg},
		{Label: "Demand", Unit: "kg/d", Baseline: b.DemandKg, Predicted: p.DemandKg, Favorable: true},
		{Label: "Price", Unit: "", Baseline: b.PriceIndex, Predicted: p.PriceIndex, Favorable: p.PriceIndex <= priceIndexCeiling},
		{Label: "Risk", Unit: "/100", Baseline: b.RiskScore, Predicted: p.RiskScore, Favorable: p.RiskScore < riskScoreCeiling},
		{Label: "Spoilage", Unit: "%", Baseline: b.SpoilagePct, Predicted: p.SpoilagePct, Favorable: p.SpoilagePct < spoilagePctCeiling},
	}
}

// Shortfall reports whether predicted demand outstrips predicted supply,
// and by how much, for the warning banner.
func Shortfall(res *types.ScenarioResult) (gapKg float64, pctOfDemand float64, ok bool) {
	p := res.Predicted
	if p.GapKg <= 0 {
		return 0, 0, false
	}
	pct := 0.0
	if p.DemandKg > 0 {
		pct = p.GapKg / p.DemandKg * 100
	}
	return p.GapKg, pct, true
}

// ShortfallLine formats the banner text for a shortfall.
func ShortfallLine(gapKg, pctOfDemand float64) string {
	return fmt.Sprintf("Supply Shortfall: %.0fkg/day (demand exceeds supply by %.1f%%)", gapKg, pctOfDemand)
}
