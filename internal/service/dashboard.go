package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/andresuchdata/retail-insights/internal/domain"
	"github.com/andresuchdata/retail-insights/internal/report"
	"golang.org/x/sync/errgroup"
)

// Dashboard fetches the overview, trend, ABC and cohort analyses concurrently
// and lays them out as report sections.
func (s *AnalyticsService) Dashboard(ctx context.Context, filter domain.AnalysisFilter) (report.Dashboard, error) {
	filter, err := s.withDefaults(filter)
	if err != nil {
		return report.Dashboard{}, err
	}

	var (
		overview domain.SalesOverview
		salesTr  domain.SalesTrend
		products domain.AbcAnalysis
		cohorts  domain.CohortAnalysis
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		overview, err = s.SalesOverview(gctx, filter)
		return err
	})
	g.Go(func() (err error) {
		salesTr, err = s.SalesTrend(gctx, filter)
		return err
	})
	g.Go(func() (err error) {
		products, err = s.ABC(gctx, filter)
		return err
	})
	g.Go(func() (err error) {
		cohorts, err = s.Cohorts(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return report.Dashboard{}, err
	}

	return report.Dashboard{
		Title:       "Retail overview",
		GeneratedAt: s.now(),
		Sections: []report.Section{
			revenueKPI(overview),
			trendChart(salesTr),
			abcTable(products),
			retentionGauge(cohorts),
			trendText(salesTr),
		},
	}, nil
}

func revenueKPI(o domain.SalesOverview) report.KPI {
	return report.KPI{
		Header:   report.Header{ID: "revenue", Title: "Revenue"},
		Value:    o.Revenue.Current,
		Previous: o.Revenue.Previous,
		Change:   o.Revenue.ChangePercent,
		Format:   report.FormatCurrency,
	}
}

func trendChart(t domain.SalesTrend) report.Chart {
	labels := make([]string, len(t.Periods))
	values := make([]float64, len(t.Periods))
	for i, p := range t.Periods {
		labels[i] = p.Period
		if t.Metric == domain.MetricOrders {
			values[i] = float64(p.Orders)
		} else {
			values[i] = p.Revenue
		}
	}

	// moving average points line up with the end of each window
	offset := len(values) - len(t.MovingAverage)
	avg := make([]float64, len(values))
	for i := range avg {
		if j := i - offset; j >= 0 && j < len(t.MovingAverage) {
			avg[i] = t.MovingAverage[j]
		}
	}

	return report.Chart{
		Header:    report.Header{ID: "sales_trend", Title: "Sales trend"},
		ChartType: "line",
		Labels:    labels,
		Series: []report.Series{
			{Name: string(t.Metric), Values: values},
			{Name: "moving_average", Values: avg},
		},
	}
}

func abcTable(a domain.AbcAnalysis) report.Table {
	rows := make([][]string, 0, len(a.Summary))
	for _, c := range a.Summary {
		rows = append(rows, []string{
			string(c.Category),
			fmt.Sprintf("%d", c.Count),
			report.FormatValue(c.Percentage, report.FormatPercentage),
			report.FormatValue(c.Revenue, report.FormatDecimal),
		})
	}
	return report.Table{
		Header:  report.Header{ID: "abc_summary", Title: "ABC classification"},
		Columns: []string{"category", "products", "share", "revenue"},
		Rows:    rows,
	}
}

func retentionGauge(c domain.CohortAnalysis) report.Gauge {
	return report.Gauge{
		Header: report.Header{ID: "month_1_retention", Title: "Month 1 retention"},
		Value:  c.Summary.Month1Retention,
		Min:    0,
		Max:    100,
		Target: 80,
	}
}

func trendText(t domain.SalesTrend) report.Text {
	var direction string
	switch t.Trend.Direction {
	case domain.DirectionUp:
		direction = "increasing"
	case domain.DirectionDown:
		direction = "decreasing"
	default:
		direction = "stable"
	}
	content := report.Expand("{metric} is {direction} over {periods} {granularity} periods (R² {r2}).", map[string]string{
		"metric":      capitalize(string(t.Metric)),
		"direction":   direction,
		"periods":     fmt.Sprintf("%d", len(t.Periods)),
		"granularity": string(t.Granularity),
		"r2":          fmt.Sprintf("%.2f", t.Trend.RSquared),
	})
	return report.Text{Header: report.Header{ID: "trend_summary", Title: "Trend"}, Content: content}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
