package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/retail-insights/internal/domain"
	"github.com/lib/pq"
)

// whereBuilder accumulates positional-parameter clauses.
type whereBuilder struct {
	clauses []string
	args    []interface{}
}

// arg appends a value and returns its placeholder.
func (w *whereBuilder) arg(value interface{}) string {
	w.args = append(w.args, value)
	return fmt.Sprintf("$%d", len(w.args))
}

// add appends a clause; format must contain exactly one %s for the placeholder.
func (w *whereBuilder) add(format string, value interface{}) {
	w.clauses = append(w.clauses, fmt.Sprintf(format, w.arg(value)))
}

// nested collects the clauses added by build apart from w's own, sharing
// w's placeholder numbering. It returns them joined for a subquery.
func (w *whereBuilder) nested(build func()) string {
	outer := w.clauses
	w.clauses = nil
	build()
	inner := w.sql()
	w.clauses = outer
	return inner
}

func (w *whereBuilder) sql() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " AND " + strings.Join(w.clauses, " AND ")
}

// columns names the filterable columns of a query.
type columns struct {
	store    string
	brand    string
	category string
}

func (w *whereBuilder) scope(filter domain.AnalysisFilter, cols columns) {
	if cols.store != "" && len(filter.StoreIDs) > 0 {
		w.add(cols.store+" = ANY(%s::bigint[])", pq.Array(filter.StoreIDs))
	}
	if cols.brand != "" && len(filter.BrandIDs) > 0 {
		w.add(cols.brand+" = ANY(%s::bigint[])", pq.Array(filter.BrandIDs))
	}
	if cols.category != "" && len(filter.Categories) > 0 {
		normalized := make([]string, 0, len(filter.Categories))
		for _, c := range filter.Categories {
			if c = strings.TrimSpace(c); c != "" {
				normalized = append(normalized, strings.ToUpper(c))
			}
		}
		if len(normalized) > 0 {
			w.add("UPPER("+cols.category+") = ANY(%s::text[])", pq.Array(normalized))
		}
	}
}

func (w *whereBuilder) between(column string, r domain.DateRange) {
	if !r.Start.IsZero() {
		w.add(column+" >= %s", r.Start)
	}
	if !r.End.IsZero() {
		w.through(column, r.End)
	}
}

// through bounds column to the calendar day of t, inclusive.
func (w *whereBuilder) through(column string, t time.Time) {
	w.add(column+" < %s", nextDay(t))
}

// nextDay is midnight after t's calendar day.
func nextDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, t.Location())
}

func analysisDate(filter domain.AnalysisFilter) time.Time {
	if filter.AnalysisDate.IsZero() {
		return time.Now()
	}
	return filter.AnalysisDate
}

var periodLabels = map[domain.Granularity]string{
	domain.GranularityHour:  "YYYY-MM-DD HH24:00",
	domain.GranularityDay:   "YYYY-MM-DD",
	domain.GranularityWeek:  `IYYY-"W"IW`,
	domain.GranularityMonth: "YYYY-MM",
	domain.GranularityYear:  "YYYY",
}
