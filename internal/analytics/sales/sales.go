// Package sales compares sales periods and breaks revenue down by brand and season.
package sales

import (
	"sort"
	"strings"
	"time"

	"github.com/andresuchdata/retail-insights/internal/analytics/stats"
	"github.com/andresuchdata/retail-insights/internal/domain"
	apperrors "github.com/andresuchdata/retail-insights/pkg/errors"
)

const (
	// DefaultPreset is used when no range preset is supplied.
	DefaultPreset = "30d"

	DefaultTopProducts = 10
)

// ResolvePreset turns a named range (1d, 7d, 30d, 90d, 1y, mtd, ytd) into a
// concrete range ending at the close of now's day.
func ResolvePreset(preset string, now time.Time) (domain.DateRange, error) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := day.Add(24*time.Hour - time.Second)

	var start time.Time
	switch strings.ToLower(strings.TrimSpace(preset)) {
	case "1d":
		start = day
	case "7d":
		start = day.AddDate(0, 0, -7)
	case "", "30d":
		start = day.AddDate(0, 0, -30)
	case "90d":
		start = day.AddDate(0, 0, -90)
	case "1y":
		start = day.AddDate(-1, 0, 0)
	case "mtd":
		start = time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
	case "ytd":
		start = time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, day.Location())
	default:
		return domain.DateRange{}, apperrors.Newf(apperrors.CodeValidation, "unknown date range preset %q", preset)
	}
	return domain.DateRange{Start: start, End: end}, nil
}

// PreviousRange is the equally long range that ends the day before r starts.
func PreviousRange(r domain.DateRange) domain.DateRange {
	end := r.Start.AddDate(0, 0, -1)
	return domain.DateRange{Start: end.Add(-r.End.Sub(r.Start)), End: end}
}

// AvgOrderValue is revenue per order, 0 without orders.
func AvgOrderValue(t domain.SalesTotals) float64 {
	if t.Orders <= 0 {
		return 0
	}
	return t.Revenue / float64(t.Orders)
}

func compare(previous, current float64) domain.KPIComparison {
	return domain.KPIComparison{
		Current:       current,
		Previous:      previous,
		ChangePercent: stats.PercentageChange(previous, current),
	}
}

// Overview compares the current period's totals against the previous period's.
func Overview(period domain.DateRange, current, previous domain.SalesTotals) domain.SalesOverview {
	return domain.SalesOverview{
		Period:         period,
		PreviousPeriod: PreviousRange(period),
		Revenue:        compare(previous.Revenue, current.Revenue),
		Orders:         compare(float64(previous.Orders), float64(current.Orders)),
		Customers:      compare(float64(previous.Customers), float64(current.Customers)),
		AvgOrderValue:  compare(AvgOrderValue(previous), AvgOrderValue(current)),
	}
}

// BrandShares computes each brand's share of total revenue, largest first.
func BrandShares(brands []domain.BrandRevenue) []domain.BrandShare {
	var total float64
	for _, b := range brands {
		total += b.Revenue
	}

	out := make([]domain.BrandShare, 0, len(brands))
	for _, b := range brands {
		share := domain.BrandShare{BrandRevenue: b}
		if total > 0 {
			share.MarketShare = b.Revenue / total * 100
		}
		out = append(out, share)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Revenue > out[j].Revenue
	})
	return out
}

// RankProducts fills each product's average selling price and orders the
// list by revenue, highest first.
func RankProducts(products []domain.ProductSales) []domain.ProductSales {
	out := make([]domain.ProductSales, len(products))
	copy(out, products)
	for i := range out {
		if out[i].UnitsSold > 0 {
			out[i].AvgPrice = out[i].Revenue / out[i].UnitsSold
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Revenue > out[j].Revenue
	})
	return out
}

// TopProducts keeps the first limit products of a ranked list. A limit of 0
// uses DefaultTopProducts.
func TopProducts(ranked []domain.ProductSales, limit int) ([]domain.ProductSales, error) {
	switch {
	case limit < 0:
		return nil, apperrors.Newf(apperrors.CodeValidation, "limit must not be negative, got %d", limit)
	case limit == 0:
		limit = DefaultTopProducts
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// StorePerformances adds average order value and revenue share to each
// store's totals, largest revenue first.
func StorePerformances(stores []domain.StoreSales) []domain.StorePerformance {
	var total float64
	for _, st := range stores {
		total += st.Revenue
	}

	out := make([]domain.StorePerformance, 0, len(stores))
	for _, st := range stores {
		perf := domain.StorePerformance{
			StoreSales:    st,
			AvgOrderValue: AvgOrderValue(domain.SalesTotals{Revenue: st.Revenue, Orders: st.Orders}),
		}
		if total > 0 {
			perf.RevenueShare = st.Revenue / total * 100
		}
		out = append(out, perf)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Revenue > out[j].Revenue
	})
	return out
}

// SeasonalIndices compares each calendar month against the average month.
// Months missing from the input count as zero revenue.
func SeasonalIndices(monthly []domain.MonthlyRevenue) []domain.SeasonalIndex {
	var revenue [12]float64
	var total float64
	for _, m := range monthly {
		if m.Month < 1 || m.Month > 12 {
			continue
		}
		revenue[m.Month-1] += m.Revenue
		total += m.Revenue
	}

	avg := total / 12
	out := make([]domain.SeasonalIndex, 12)
	for i := range out {
		idx := 100.0
		if avg > 0 {
			idx = revenue[i] / avg * 100
		}
		out[i] = domain.SeasonalIndex{Month: i + 1, Revenue: revenue[i], Index: idx}
	}
	return out
}
