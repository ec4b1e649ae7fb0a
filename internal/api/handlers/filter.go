package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/retail-insights/internal/analytics/sales"
	"github.com/andresuchdata/retail-insights/internal/domain"
	apperrors "github.com/andresuchdata/retail-insights/pkg/errors"
	"github.com/gin-gonic/gin"
)

var dateLayouts = []string{"2006-01-02", time.RFC3339}

func parseDate(param, raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperrors.Newf(apperrors.CodeValidation, "%s must be YYYY-MM-DD or RFC3339, got %q", param, raw)
}

// queryList supports both ?p=A&p=B and ?p=A,B.
func queryList(c *gin.Context, param string) []string {
	var out []string
	for _, v := range c.QueryArray(param) {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parseInt64List(c *gin.Context, param string) []int64 {
	values := queryList(c, param)
	if len(values) == 0 {
		return nil
	}
	result := make([]int64, 0, len(values))
	for _, v := range values {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			result = append(result, id)
		}
	}
	return result
}

func parseInt(c *gin.Context, param string) (int, error) {
	raw := strings.TrimSpace(c.Query(param))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.Newf(apperrors.CodeValidation, "%s must be an integer, got %q", param, raw)
	}
	return v, nil
}

// parseFilter reads the shared analysis parameters. A range preset is
// resolved against the current time when no explicit start is given.
func parseFilter(c *gin.Context, now time.Time) (domain.AnalysisFilter, error) {
	var filter domain.AnalysisFilter

	dates := []struct {
		param string
		dest  *time.Time
	}{
		{"start", &filter.Start},
		{"end", &filter.End},
		{"analysis_date", &filter.AnalysisDate},
	}
	for _, d := range dates {
		if raw := strings.TrimSpace(c.Query(d.param)); raw != "" {
			t, err := parseDate(d.param, raw)
			if err != nil {
				return filter, err
			}
			*d.dest = t
		}
	}

	if preset := strings.TrimSpace(c.Query("range")); preset != "" && filter.Start.IsZero() {
		r, err := sales.ResolvePreset(preset, now)
		if err != nil {
			return filter, err
		}
		filter.Start, filter.End = r.Start, r.End
	}
	if !filter.Start.IsZero() && !filter.End.IsZero() && filter.End.Before(filter.Start) {
		return filter, apperrors.New(apperrors.CodeValidation, "end must not be before start")
	}

	filter.StoreIDs = parseInt64List(c, "store_ids")
	filter.BrandIDs = parseInt64List(c, "brand_ids")
	filter.Categories = queryList(c, "category")

	filter.Granularity = domain.Granularity(strings.TrimSpace(c.Query("granularity")))
	filter.Metric = domain.TrendMetric(strings.TrimSpace(c.Query("metric")))

	ints := []struct {
		param string
		dest  *int
	}{
		{"window", &filter.Window},
		{"churn_days", &filter.ChurnThresholdDays},
		{"slow_moving_days", &filter.SlowMovingDays},
		{"dead_stock_days", &filter.DeadStockDays},
		{"lead_time_days", &filter.LeadTimeDays},
		{"safety_stock_days", &filter.SafetyStockDays},
		{"trailing_days", &filter.TrailingDays},
	}
	for _, i := range ints {
		v, err := parseInt(c, i.param)
		if err != nil {
			return filter, err
		}
		if v < 0 {
			return filter, apperrors.Newf(apperrors.CodeValidation, "%s must not be negative, got %d", i.param, v)
		}
		*i.dest = v
	}
	return filter, nil
}
