// Package trend fits a straight line through period aggregates.
//
// Periods are regressed against their position in the sequence, not the time
// elapsed between them, so gaps between periods do not change the slope.
package trend

import (
	"github.com/andresuchdata/retail-insights/internal/analytics/stats"
	"github.com/andresuchdata/retail-insights/internal/domain"
	apperrors "github.com/andresuchdata/retail-insights/pkg/errors"
)

// DefaultWindow is the moving average window used when none is given.
const DefaultWindow = 3

// Direction maps the sign of a slope to a direction.
func Direction(slope float64) domain.Direction {
	switch {
	case slope > 0:
		return domain.DirectionUp
	case slope < 0:
		return domain.DirectionDown
	default:
		return domain.DirectionStable
	}
}

// Fit regresses values against their index.
func Fit(values []float64) domain.TrendResult {
	fit := stats.LinearTrend(values)
	return domain.TrendResult{
		Slope:     fit.Slope,
		Intercept: fit.Intercept,
		RSquared:  fit.RSquared,
		Direction: Direction(fit.Slope),
	}
}

// Series extracts the chosen metric from each period, in order.
func Series(periods []domain.PeriodAggregate, metric domain.TrendMetric) ([]float64, error) {
	metric, err := domain.ParseTrendMetric(string(metric))
	if err != nil {
		return nil, err
	}

	values := make([]float64, len(periods))
	for i, p := range periods {
		if metric == domain.MetricOrders {
			values[i] = float64(p.Orders)
		} else {
			values[i] = p.Revenue
		}
	}
	return values, nil
}

// Summarize fits a trend over the chosen metric and adds a moving average.
// A window of 0 uses DefaultWindow; a negative one is rejected.
func Summarize(periods []domain.PeriodAggregate, metric domain.TrendMetric, granularity domain.Granularity, window int) (domain.SalesTrend, error) {
	metric, err := domain.ParseTrendMetric(string(metric))
	if err != nil {
		return domain.SalesTrend{}, err
	}
	values, err := Series(periods, metric)
	if err != nil {
		return domain.SalesTrend{}, err
	}
	switch {
	case window < 0:
		return domain.SalesTrend{}, apperrors.Newf(apperrors.CodeValidation, "moving average window must be positive, got %d", window)
	case window == 0:
		window = DefaultWindow
	}
	if periods == nil {
		periods = []domain.PeriodAggregate{}
	}

	return domain.SalesTrend{
		Metric:        metric,
		Granularity:   granularity,
		Periods:       periods,
		MovingAverage: stats.MovingAverage(values, window),
		Trend:         Fit(values),
	}, nil
}
