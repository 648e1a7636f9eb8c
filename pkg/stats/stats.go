// Package stats wraps the small set of descriptive statistics the
// analyzers share: an ordinary-least-squares fit over paired samples
// plus mean/stddev with empty-input guards.
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// LinearFit is the result of an ordinary least squares fit y = Intercept + Slope*x.
type LinearFit struct {
	Slope     float64
	Intercept float64
}

// At evaluates the fitted line at x.
func (f LinearFit) At(x float64) float64 {
	return f.Intercept + f.Slope*x
}

// Linear fits y = a + b*x over the paired samples. It reports ok=false
// when fewer than two samples exist, the lengths differ, or all x
// values coincide (degenerate fit).
func Linear(xs, ys []float64) (fit LinearFit, ok bool) {
	if len(xs) != len(ys) || len(xs) < 2 {
		return LinearFit{}, false
	}
	distinct := false
	for i := 1; i < len(xs); i++ {
		if xs[i] != xs[0] {
			distinct = true
			break
		}
	}
	if !distinct {
		return LinearFit{}, false
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	return LinearFit{Slope: beta, Intercept: alpha}, true
}

// Mean returns the arithmetic mean, 0 for empty input.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// StdDev returns the sample standard deviation, 0 for fewer than two
// samples.
func StdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return stat.StdDev(xs, nil)
}

// Min returns the smallest value; ok=false for empty input.
func Min(xs []float64) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	ret := xs[0]
	for _, v := range xs[1:] {
		if v < ret {
			ret = v
		}
	}
	return ret, true
}

// Max returns the largest value; ok=false for empty input.
func Max(xs []float64) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	ret := xs[0]
	for _, v := range xs[1:] {
		if v > ret {
			ret = v
		}
	}
	return ret, true
}

// Round rounds v to the given number of decimal places. Results are
// rounded once at the record boundary for presentation.
func Round(v float64, places int) float64 {
	f := math.Pow(10, float64(places))
	return math.Round(v*f) / f
}
