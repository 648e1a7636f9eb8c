package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinear(t *testing.T) {
	// delta_to_best over laps 10..14, rate 0.2 s/lap
	xs := []float64{10, 11, 12, 13, 14}
	ys := []float64{0.0, 0.2, 0.4, 0.6, 0.8}
	fit, ok := Linear(xs, ys)
	assert.True(t, ok)
	assert.InDelta(t, 0.2, fit.Slope, 1e-9)
	assert.InDelta(t, -2.0, fit.Intercept, 1e-9)
	assert.InDelta(t, 0.8, fit.At(14), 1e-9)
}

func TestLinearGuards(t *testing.T) {
	_, ok := Linear([]float64{1}, []float64{2})
	assert.False(t, ok, "single sample")

	_, ok = Linear([]float64{1, 2}, []float64{1})
	assert.False(t, ok, "length mismatch")

	_, ok = Linear([]float64{3, 3, 3}, []float64{1, 2, 3})
	assert.False(t, ok, "degenerate x")
}

func TestDescriptive(t *testing.T) {
	xs := []float64{96.0, 96.2, 96.4}
	assert.InDelta(t, 96.2, Mean(xs), 1e-9)
	assert.InDelta(t, 0.2, StdDev(xs), 1e-9)
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, StdDev([]float64{1}))

	mn, ok := Min(xs)
	assert.True(t, ok)
	assert.Equal(t, 96.0, mn)
	mx, ok := Max(xs)
	assert.True(t, ok)
	assert.Equal(t, 96.4, mx)
	_, ok = Min(nil)
	assert.False(t, ok)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1.23, Round(1.2345, 2))
	assert.Equal(t, -1.235, Round(-1.23456, 3))
	assert.True(t, math.Abs(Round(0.005, 2)-0.01) < 1e-9)
}
