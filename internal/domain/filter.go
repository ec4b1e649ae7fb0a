package domain

import "time"

// AnalysisFilter carries the caller-supplied parameters of an analysis.
// Zero-valued thresholds are replaced with configured defaults by the service.
type AnalysisFilter struct {
	Start        time.Time
	End          time.Time
	AnalysisDate time.Time

	StoreIDs   []int64
	BrandIDs   []int64
	Categories []string

	Granularity Granularity
	Metric      TrendMetric
	Window      int

	ChurnThresholdDays int
	SlowMovingDays     int
	DeadStockDays      int
	LeadTimeDays       int
	SafetyStockDays    int
	TrailingDays       int
}

// Range returns the filter's period as a DateRange.
func (f AnalysisFilter) Range() DateRange {
	return DateRange{Start: f.Start, End: f.End}
}
