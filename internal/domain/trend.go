package domain

import (
	"strings"

	apperrors "github.com/andresuchdata/retail-insights/pkg/errors"
)

// PeriodAggregate is the sales total of one period, in period order.
type PeriodAggregate struct {
	Period  string  `json:"period" db:"period"`
	Revenue float64 `json:"revenue" db:"revenue"`
	Orders  int     `json:"orders" db:"orders"`
}

type Direction string

const (
	DirectionUp     Direction = "up"
	DirectionDown   Direction = "down"
	DirectionStable Direction = "stable"
)

type TrendResult struct {
	Slope     float64   `json:"slope"`
	Intercept float64   `json:"intercept"`
	RSquared  float64   `json:"r_squared"`
	Direction Direction `json:"direction"`
}

// TrendMetric selects which aggregate column a trend is fitted on.
type TrendMetric string

const (
	MetricRevenue TrendMetric = "revenue"
	MetricOrders  TrendMetric = "orders"
)

// ParseTrendMetric defaults an empty value to revenue.
func ParseTrendMetric(raw string) (TrendMetric, error) {
	switch TrendMetric(strings.ToLower(strings.TrimSpace(raw))) {
	case "", MetricRevenue:
		return MetricRevenue, nil
	case MetricOrders:
		return MetricOrders, nil
	}
	return "", apperrors.Newf(apperrors.CodeValidation, "unknown trend metric %q", raw)
}

type SalesTrend struct {
	Metric        TrendMetric       `json:"metric"`
	Granularity   Granularity       `json:"granularity"`
	Periods       []PeriodAggregate `json:"periods"`
	MovingAverage []float64         `json:"moving_average"`
	Trend         TrendResult       `json:"trend"`
}

// Granularity is the bucket size used to aggregate sales into periods.
type Granularity string

const (
	GranularityHour  Granularity = "hour"
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
	GranularityYear  Granularity = "year"
)

// ParseGranularity defaults an empty value to day.
func ParseGranularity(raw string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(raw))); g {
	case "":
		return GranularityDay, nil
	case GranularityHour, GranularityDay, GranularityWeek, GranularityMonth, GranularityYear:
		return g, nil
	}
	return "", apperrors.Newf(apperrors.CodeValidation, "unknown granularity %q", raw)
}
