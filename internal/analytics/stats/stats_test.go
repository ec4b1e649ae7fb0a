package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func TestPercentileBounds(t *testing.T) {
	values := []float64{7, 3, 9, 1, 5}
	if got := Percentile(values, 0); got != 1 {
		t.Fatalf("p0 expected min 1, got %v", got)
	}
	if got := Percentile(values, 100); got != 9 {
		t.Fatalf("p100 expected max 9, got %v", got)
	}
	if values[0] != 7 {
		t.Fatalf("input must not be reordered")
	}
}

func TestPercentileInterpolates(t *testing.T) {
	values := []float64{10, 20, 30, 40}
	// index = 0.5*3 = 1.5 -> halfway between 20 and 30
	assert.InDelta(t, 25, Percentile(values, 50), eps)
	// index = 0.2*3 = 0.6 -> 10 + 0.6*10
	assert.InDelta(t, 16, Percentile(values, 20), eps)
	assert.Equal(t, 0.0, Percentile(nil, 50))
	assert.Equal(t, 10.0, Percentile(values, -5))
}

func TestQuintiles(t *testing.T) {
	q := Quintiles([]float64{1, 2, 3, 4, 5, 6})
	assert.InDelta(t, 2, q[0], eps)
	assert.InDelta(t, 3, q[1], eps)
	assert.InDelta(t, 4, q[2], eps)
	assert.InDelta(t, 5, q[3], eps)
}

func TestStandardDeviation(t *testing.T) {
	assert.Equal(t, 0.0, StandardDeviation(nil))
	assert.Equal(t, 0.0, StandardDeviation([]float64{42}))
	// sample variance of 2,4,4,4,5,5,7,9 is 32/7
	assert.InDelta(t, math.Sqrt(32.0/7.0), StandardDeviation([]float64{2, 4, 4, 4, 5, 5, 7, 9}), eps)
}

func TestCorrelation(t *testing.T) {
	assert.InDelta(t, 1, Correlation([]float64{1, 2, 3}, []float64{2, 4, 6, 100}), eps)
	assert.InDelta(t, -1, Correlation([]float64{1, 2, 3}, []float64{3, 2, 1}), eps)
	assert.Equal(t, 0.0, Correlation([]float64{1}, []float64{1}))
	assert.Equal(t, 0.0, Correlation([]float64{1, 1, 1}, []float64{1, 2, 3}))
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{1, 2, 3, 4, 5}, 3)
	require.Len(t, got, 3)
	assert.InDelta(t, 2, got[0], eps)
	assert.InDelta(t, 3, got[1], eps)
	assert.InDelta(t, 4, got[2], eps)

	assert.Empty(t, MovingAverage([]float64{1, 2}, 3))
	assert.Empty(t, MovingAverage([]float64{1, 2}, 0))
	assert.Len(t, MovingAverage([]float64{1, 2}, 2), 1)
}

func TestPercentageChange(t *testing.T) {
	tests := []struct {
		old, new, want float64
	}{
		{0, 50, 100},
		{0, 0, 0},
		{0, -10, 0},
		{100, 100, 0},
		{100, 150, 50},
		{-200, -100, 50},
		{80, 20, -75},
	}
	for _, tt := range tests {
		if got := PercentageChange(tt.old, tt.new); math.Abs(got-tt.want) > eps {
			t.Fatalf("PercentageChange(%v, %v) = %v, want %v", tt.old, tt.new, got, tt.want)
		}
	}
}

func TestGrowthRate(t *testing.T) {
	assert.InDelta(t, 10, GrowthRate(100, 121, 2), 1e-6)
	assert.Equal(t, 0.0, GrowthRate(0, 100, 2))
	assert.Equal(t, 0.0, GrowthRate(100, 200, 0))
	assert.Equal(t, 0.0, GrowthRate(100, -50, 2))
}

func TestLinearTrend(t *testing.T) {
	fit := LinearTrend([]float64{100, 200, 300, 400})
	assert.InDelta(t, 100, fit.Slope, eps)
	assert.InDelta(t, 100, fit.Intercept, eps)
	assert.InDelta(t, 1, fit.RSquared, eps)

	assert.Equal(t, Fit{}, LinearTrend([]float64{5}))
	assert.Equal(t, Fit{}, LinearTrend(nil))

	flat := LinearTrend([]float64{5, 5, 5})
	assert.InDelta(t, 0, flat.Slope, eps)
	assert.InDelta(t, 5, flat.Intercept, eps)
	assert.Equal(t, 0.0, flat.RSquared)

	noisy := LinearTrend([]float64{3, 1, 4, 1, 5, 9, 2, 6})
	assert.GreaterOrEqual(t, noisy.RSquared, 0.0)
	assert.LessOrEqual(t, noisy.RSquared, 1.0)
}
