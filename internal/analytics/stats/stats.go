// Package stats holds the numeric primitives shared by the analysis engines.
// Every function accepts empty or degenerate input and returns a neutral value.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Percentile returns the p-th percentile of values using linear interpolation
// between the closest ranks. p is clamped to [0, 100]. The input is not modified.
func Percentile(values []float64, p float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	p = math.Max(0, math.Min(100, p))
	index := p / 100 * float64(n-1)
	lower := math.Floor(index)
	upper := math.Ceil(index)
	if lower == upper {
		return sorted[int(index)]
	}

	weight := index - lower
	return sorted[int(lower)]*(1-weight) + sorted[int(upper)]*weight
}

// Quintiles returns the 20th, 40th, 60th and 80th percentile cut points.
func Quintiles(values []float64) [4]float64 {
	return [4]float64{
		Percentile(values, 20),
		Percentile(values, 40),
		Percentile(values, 60),
		Percentile(values, 80),
	}
}

// Mean is the arithmetic mean, 0 for empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// StandardDeviation is the sample standard deviation (n-1 denominator).
func StandardDeviation(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return finiteOrZero(stat.StdDev(values, nil))
}

// Correlation is the Pearson coefficient over the first min(len(x), len(y)) pairs.
func Correlation(x, y []float64) float64 {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	if n < 2 {
		return 0
	}
	return finiteOrZero(stat.Correlation(x[:n], y[:n], nil))
}

// MovingAverage returns the mean of every contiguous window of the given size.
// The result has max(0, len(values)-window+1) entries; window <= 0 yields none.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 0 || len(values) < window {
		return []float64{}
	}

	out := make([]float64, 0, len(values)-window+1)
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out = append(out, sum/float64(window))
		}
	}
	return out
}

// PercentageChange is (new-old)/|old|*100. Growth from zero reports 100.
func PercentageChange(oldValue, newValue float64) float64 {
	if oldValue == 0 {
		if newValue > 0 {
			return 100
		}
		return 0
	}
	return (newValue - oldValue) / math.Abs(oldValue) * 100
}

// GrowthRate is the compound growth rate per period, as a percentage.
func GrowthRate(start, end float64, periods int) float64 {
	if start <= 0 || periods <= 0 {
		return 0
	}
	return finiteOrZero((math.Pow(end/start, 1/float64(periods)) - 1) * 100)
}

// Fit is the result of an ordinary least-squares fit against position.
type Fit struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"r_squared"`
}

// LinearTrend regresses series against its index 0..n-1.
func LinearTrend(series []float64) Fit {
	n := len(series)
	if n < 2 {
		return Fit{}
	}

	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}

	intercept, slope := stat.LinearRegression(xs, series, nil, false)
	fit := Fit{
		Slope:     finiteOrZero(slope),
		Intercept: finiteOrZero(intercept),
	}

	// A flat series has no variance to explain.
	if stat.Variance(series, nil) == 0 {
		return fit
	}
	r2 := finiteOrZero(stat.RSquared(xs, series, nil, intercept, slope))
	fit.RSquared = math.Max(0, math.Min(1, r2))
	return fit
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
