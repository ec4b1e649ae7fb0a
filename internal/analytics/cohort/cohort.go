// Package cohort builds month-by-offset retention tables for registration cohorts.
package cohort

import (
	"sort"
	"time"

	"github.com/andresuchdata/retail-insights/internal/domain"
)

// MaxOffset is the last month offset tracked for every cohort.
const MaxOffset = 12

// Build groups customers by registration month and counts, for offsets
// 0..MaxOffset, how many of them have activity in the matching calendar month.
// When window is non-nil, customers registered outside it are ignored.
func Build(customers []domain.CohortCustomer, activity []domain.MonthlyActivity, window *domain.DateRange) domain.CohortAnalysis {
	active := make(map[string]map[string]struct{})
	for _, a := range activity {
		month, ok := normalizeMonth(a.Month)
		if !ok {
			continue
		}
		if active[a.CustomerID] == nil {
			active[a.CustomerID] = make(map[string]struct{})
		}
		active[a.CustomerID][month] = struct{}{}
	}

	members := make(map[string][]string)
	starts := make(map[string]time.Time)
	seen := make(map[string]struct{}, len(customers))
	for _, c := range customers {
		if window != nil && !inWindow(c.RegisteredAt, *window) {
			continue
		}
		if _, dup := seen[c.CustomerID]; dup {
			continue
		}
		seen[c.CustomerID] = struct{}{}

		start := monthStart(c.RegisteredAt)
		key := start.Format(domain.MonthLayout)
		starts[key] = start
		members[key] = append(members[key], c.CustomerID)
	}

	keys := make([]string, 0, len(members))
	for k := range members {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	records := make([]domain.CohortRecord, 0, len(keys))
	for _, key := range keys {
		records = append(records, buildRecord(key, starts[key], members[key], active))
	}

	return domain.CohortAnalysis{
		Cohorts: records,
		Summary: Summarize(records),
	}
}

func buildRecord(key string, start time.Time, ids []string, active map[string]map[string]struct{}) domain.CohortRecord {
	record := domain.CohortRecord{
		CohortMonth: key,
		CohortSize:  len(ids),
		Periods:     make([]domain.CohortPeriod, 0, MaxOffset+1),
	}

	for offset := 0; offset <= MaxOffset; offset++ {
		month := start.AddDate(0, offset, 0).Format(domain.MonthLayout)
		count := 0
		for _, id := range ids {
			if _, ok := active[id][month]; ok {
				count++
			}
		}

		var rate float64
		if record.CohortSize > 0 {
			rate = float64(count) / float64(record.CohortSize) * 100
		}
		record.Periods = append(record.Periods, domain.CohortPeriod{
			Offset:          offset,
			CalendarMonth:   month,
			ActiveCustomers: count,
			RetentionRate:   rate,
		})
	}
	return record
}

// Summarize averages retention per offset across cohorts.
func Summarize(records []domain.CohortRecord) domain.CohortSummary {
	summary := domain.CohortSummary{
		TotalCohorts: len(records),
		AvgRetention: make([]float64, MaxOffset+1),
	}
	if len(records) == 0 {
		return summary
	}

	for _, r := range records {
		summary.TotalCustomers += r.CohortSize
		for _, p := range r.Periods {
			if p.Offset >= 0 && p.Offset <= MaxOffset {
				summary.AvgRetention[p.Offset] += p.RetentionRate
			}
		}
	}
	for i := range summary.AvgRetention {
		summary.AvgRetention[i] /= float64(len(records))
	}

	summary.Month1Retention = summary.AvgRetention[1]
	summary.Month6Retention = summary.AvgRetention[6]
	summary.Month12Retention = summary.AvgRetention[12]
	return summary
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func inWindow(t time.Time, w domain.DateRange) bool {
	if !w.Start.IsZero() && t.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && t.After(w.End) {
		return false
	}
	return true
}

func normalizeMonth(raw string) (string, bool) {
	for _, layout := range []string{domain.MonthLayout, "2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(domain.MonthLayout), true
		}
	}
	return "", false
}
