// Package abc ranks products by revenue and buckets them into Pareto tiers.
package abc

import (
	"sort"

	"github.com/andresuchdata/retail-insights/internal/domain"
	"github.com/shopspring/decimal"
)

// Cumulative share boundaries, inclusive.
var (
	boundaryA = decimal.NewFromInt(80)
	boundaryB = decimal.NewFromInt(95)
	hundred   = decimal.NewFromInt(100)
)

// Categorize maps a cumulative revenue share to its tier.
func Categorize(cumulativeShare decimal.Decimal) domain.AbcCategory {
	switch {
	case cumulativeShare.LessThanOrEqual(boundaryA):
		return domain.CategoryA
	case cumulativeShare.LessThanOrEqual(boundaryB):
		return domain.CategoryB
	default:
		return domain.CategoryC
	}
}

// Classify sorts products by revenue descending, keeping input order for ties,
// and assigns each a tier from its cumulative share. Negative revenue counts as 0.
func Classify(products []domain.ProductRevenue) domain.AbcAnalysis {
	result := domain.AbcAnalysis{
		Products: []domain.AbcRecord{},
		Summary:  []domain.AbcCategorySummary{},
	}
	if len(products) == 0 {
		return result
	}

	ranked := make([]domain.ProductRevenue, len(products))
	for i, p := range products {
		if p.Revenue < 0 {
			p.Revenue = 0
		}
		ranked[i] = p
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Revenue > ranked[j].Revenue
	})

	total := decimal.Zero
	for _, p := range ranked {
		total = total.Add(decimal.NewFromFloat(p.Revenue))
	}

	running := decimal.Zero
	result.Products = make([]domain.AbcRecord, 0, len(ranked))
	for i, p := range ranked {
		revenue := decimal.NewFromFloat(p.Revenue)
		running = running.Add(revenue)

		share := decimal.Zero
		cumulative := hundred
		if total.IsPositive() {
			share = revenue.Div(total).Mul(hundred)
			cumulative = running.Div(total).Mul(hundred)
			if i == len(ranked)-1 {
				cumulative = hundred
			}
		}

		result.Products = append(result.Products, domain.AbcRecord{
			ProductRevenue:  p,
			RevenueShare:    share.InexactFloat64(),
			CumulativeShare: cumulative.InexactFloat64(),
			Category:        Categorize(cumulative),
		})
	}

	result.TotalRevenue = total.InexactFloat64()
	result.Summary = Summarize(result.Products)
	return result
}

// Summarize counts products per tier with their share of the product count.
func Summarize(records []domain.AbcRecord) []domain.AbcCategorySummary {
	byCategory := make(map[domain.AbcCategory]*domain.AbcCategorySummary, len(domain.AbcCategories))
	summary := make([]domain.AbcCategorySummary, len(domain.AbcCategories))
	for i, c := range domain.AbcCategories {
		summary[i].Category = c
		byCategory[c] = &summary[i]
	}

	revenue := make(map[domain.AbcCategory]decimal.Decimal, len(domain.AbcCategories))
	for _, r := range records {
		s, ok := byCategory[r.Category]
		if !ok {
			continue
		}
		s.Count++
		revenue[r.Category] = revenue[r.Category].Add(decimal.NewFromFloat(r.Revenue))
	}

	for i := range summary {
		summary[i].Revenue = revenue[summary[i].Category].InexactFloat64()
		if len(records) > 0 {
			summary[i].Percentage = float64(summary[i].Count) / float64(len(records)) * 100
		}
	}
	return summary
}

// Filter keeps only records in the given tier.
func Filter(records []domain.AbcRecord, category domain.AbcCategory) []domain.AbcRecord {
	out := make([]domain.AbcRecord, 0, len(records))
	for _, r := range records {
		if r.Category == category {
			out = append(out, r)
		}
	}
	return out
}
