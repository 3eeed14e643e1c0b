// Package risk is the single source of truth for severity banding of numeric
// risk scores. Signal cards, the gauge, and scenario badges all color through
// these thresholds; nothing else in the tree may hard-code them.
package risk

// Level is an ordered severity band.
type Level int

const (
	Low Level = iota
	Moderate
	High
	Critical
)

// Band thresholds over a 0..100 score.
const (
	lowMax      = 20
	moderateMax = 45
	highMax     = 70
)

// Band maps a 0..100 risk score to its severity level.
func Band(score float64) Level {
	switch {
	case score > highMax:
		return Critical
	case score > moderateMax:
		return High
	case score > lowMax:
		return Moderate
	default:
		return Low
	}
}

// String returns the lowercase band name used on the wire and in the UI.
func (l Level) String() string {
	switch l {
	case Critical:
		return "critical"
	case High:
		return "high"
	case Moderate:
		return "moderate"
	default:
		return "low"
	}
}

// Ordinal returns the escalation rank (0..3) of the level.
func (l Level) Ordinal() int { return int(l) }

// ParseLevel maps a wire-format level name to its Level. Unknown names,
// including the signal-card spelling "medium", fold to the nearest band.
func ParseLevel(s string) Level {
	switch s {
	case "critical":
		return Critical
	case "high":
		return High
	case "moderate", "medium":
		return Moderate
	default:
		return Low
	}
}

// NeedleAngle linearly maps a 0..100 score to a gauge needle angle in degrees,
// -90 at zero through +90 at full scale.
func NeedleAngle(score float64) float64 {
	return clamp(score, 0, 100)/100*180 - 90
}

// ArcFill returns the filled fraction of the gauge arc for a score.
func ArcFill(score float64) float64 {
	return clamp(score, 0, 100) / 100
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
