// Package rfm scores customers on recency, frequency and monetary value and
// assigns each one to exactly one named segment.
package rfm

import (
	"fmt"

	"github.com/andresuchdata/retail-insights/internal/analytics/stats"
	"github.com/andresuchdata/retail-insights/internal/domain"
)

type rule struct {
	segment domain.Segment
	match   func(r, f, m int) bool
}

// rules are evaluated top to bottom and the first match wins. Several of them
// overlap, so the order is part of the classification.
var rules = []rule{
	{domain.SegmentChampions, func(r, f, m int) bool { return r >= 5 && f >= 5 && m >= 5 }},
	{domain.SegmentLoyalCustomers, func(r, f, m int) bool { return r >= 4 && f >= 4 && m >= 4 }},
	{domain.SegmentPotentialLoyalists, func(r, f, m int) bool { return r >= 4 && f >= 3 && m >= 3 }},
	{domain.SegmentNewCustomers, func(r, f, m int) bool { return r >= 4 && f <= 2 && m <= 2 }},
	{domain.SegmentPromising, func(r, f, m int) bool { return r >= 3 && f <= 2 && m <= 2 }},
	{domain.SegmentNeedAttention, func(r, f, m int) bool { return r >= 3 && f >= 3 && m >= 3 }},
	{domain.SegmentAboutToSleep, func(r, f, m int) bool { return r >= 2 && f >= 2 && m >= 2 }},
	{domain.SegmentAtRisk, func(r, f, m int) bool { return r <= 2 && f >= 3 && m >= 3 }},
	{domain.SegmentCannotLoseThem, func(r, f, m int) bool { return r <= 2 && f >= 4 && m >= 4 }},
	{domain.SegmentHibernating, func(r, f, m int) bool { return r <= 2 && f <= 2 && m >= 2 }},
}

// Classify returns the segment for a score triple.
func Classify(r, f, m int) domain.Segment {
	for _, rl := range rules {
		if rl.match(r, f, m) {
			return rl.segment
		}
	}
	return domain.SegmentLost
}

// Score counts how many thresholds value strictly exceeds, plus one.
func Score(value float64, thresholds [4]float64) int {
	score := 1
	for _, t := range thresholds {
		if value > t {
			score++
		}
	}
	return score
}

// Code concatenates the three scores in R, F, M order.
func Code(r, f, m int) string {
	return fmt.Sprintf("%d%d%d", r, f, m)
}

// Thresholds computes quintile cut points for each dimension across the population.
func Thresholds(customers []domain.CustomerMetric) domain.RFMThresholds {
	recency := make([]float64, len(customers))
	frequency := make([]float64, len(customers))
	monetary := make([]float64, len(customers))
	for i, c := range customers {
		recency[i] = float64(c.RecencyDays)
		frequency[i] = float64(c.Frequency)
		monetary[i] = c.Monetary
	}
	return domain.RFMThresholds{
		Recency:   stats.Quintiles(recency),
		Frequency: stats.Quintiles(frequency),
		Monetary:  stats.Quintiles(monetary),
	}
}

// Analyze scores and segments customers. Customers without orders are dropped
// before thresholds are computed.
func Analyze(customers []domain.CustomerMetric) domain.RFMAnalysis {
	active := make([]domain.CustomerMetric, 0, len(customers))
	for _, c := range customers {
		if c.Frequency > 0 {
			active = append(active, c)
		}
	}

	result := domain.RFMAnalysis{
		Customers: []domain.ScoredCustomer{},
		Segments:  map[domain.Segment][]domain.ScoredCustomer{},
		Summary:   []domain.SegmentSummary{},
	}
	if len(active) == 0 {
		return result
	}

	thresholds := Thresholds(active)
	result.Thresholds = thresholds
	for _, seg := range domain.Segments {
		result.Segments[seg] = []domain.ScoredCustomer{}
	}

	for _, c := range active {
		// Lower recency means a more recent purchase, so the score is inverted.
		r := 6 - Score(float64(c.RecencyDays), thresholds.Recency)
		f := Score(float64(c.Frequency), thresholds.Frequency)
		m := Score(c.Monetary, thresholds.Monetary)

		scored := domain.ScoredCustomer{
			CustomerMetric: c,
			RecencyScore:   r,
			FrequencyScore: f,
			MonetaryScore:  m,
			RFMCode:        Code(r, f, m),
			Segment:        Classify(r, f, m),
		}
		result.Customers = append(result.Customers, scored)
		result.Segments[scored.Segment] = append(result.Segments[scored.Segment], scored)
	}

	result.Summary = Summarize(result.Segments, len(active))
	return result
}

// Summarize reports count, share and monetary totals per segment in rule order.
func Summarize(segments map[domain.Segment][]domain.ScoredCustomer, total int) []domain.SegmentSummary {
	summary := make([]domain.SegmentSummary, 0, len(domain.Segments))
	for _, seg := range domain.Segments {
		members := segments[seg]
		s := domain.SegmentSummary{Segment: seg, Count: len(members)}
		for _, c := range members {
			s.TotalMonetary += c.Monetary
		}
		if s.Count > 0 {
			s.AvgMonetary = s.TotalMonetary / float64(s.Count)
		}
		if total > 0 {
			s.Percentage = float64(s.Count) / float64(total) * 100
		}
		summary = append(summary, s)
	}
	return summary
}
