package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGauge_FillTracksScore(t *testing.T) {
	full := Gauge(100, 20)
	assert.Equal(t, 20, strings.Count(full, "█"))
	assert.Equal(t, 0, strings.Count(full, "░"))
	assert.Contains(t, full, "CRITICAL")

	half := Gauge(50, 20)
	assert.Equal(t, 10, strings.Count(half, "█"))
	assert.Equal(t, 10, strings.Count(half, "░"))
	assert.Contains(t, half, "HIGH")

	empty := Gauge(0, 20)
	assert.Equal(t, 0, strings.Count(empty, "█"))
	assert.Contains(t, empty, "LOW")
}

func TestGauge_SeverityLabels(t *testing.T) {
	assert.Contains(t, Gauge(15, 10), "LOW")
	assert.Contains(t, Gauge(30, 10), "MODERATE")
	assert.Contains(t, Gauge(60, 10), "HIGH")
	assert.Contains(t, Gauge(85, 10), "CRITICAL")
}

func TestSparkline(t *testing.T) {
	assert.Empty(t, Sparkline(nil))
	assert.Equal(t, "▁", Sparkline([]float64{42}))

	s := []rune(Sparkline([]float64{1, 2, 3, 4}))
	assert.Len(t, s, 4)
	assert.Equal(t, '▁', s[0])
	assert.Equal(t, '█', s[3])

	// Flat series stays at the bottom rather than dividing by zero.
	flat := Sparkline([]float64{7, 7, 7})
	assert.Equal(t, "▁▁▁", flat)
}
