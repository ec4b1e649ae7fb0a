// Package report assembles typed dashboard sections.
package report

import (
	"strings"

	apperrors "github.com/andresuchdata/retail-insights/pkg/errors"
)

type Kind string

const (
	KindKPI   Kind = "kpi"
	KindChart Kind = "chart"
	KindTable Kind = "table"
	KindText  Kind = "text"
	KindGauge Kind = "gauge"
	KindMap   Kind = "map"
)

var Kinds = []Kind{KindKPI, KindChart, KindTable, KindText, KindGauge, KindMap}

func ParseKind(raw string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", apperrors.Newf(apperrors.CodeValidation, "unknown section kind %q", raw)
}

// Section is implemented only by the section types of this package.
type Section interface {
	Kind() Kind
	Heading() Header
	isSection()
}

// Header is shared by every section.
type Header struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func (h Header) Heading() Header { return h }

type KPI struct {
	Header
	Value    float64 `json:"value"`
	Previous float64 `json:"previous_value"`
	Change   float64 `json:"change"`
	Format   Format  `json:"format"`
}

func (KPI) Kind() Kind { return KindKPI }
func (KPI) isSection() {}

// Trend reports up, down or stable from the sign of Change.
func (k KPI) Trend() string {
	switch {
	case k.Change > 0:
		return "up"
	case k.Change < 0:
		return "down"
	default:
		return "stable"
	}
}

type Series struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

type Chart struct {
	Header
	ChartType string   `json:"chart_type"`
	Labels    []string `json:"labels"`
	Series    []Series `json:"series"`
}

func (Chart) Kind() Kind { return KindChart }
func (Chart) isSection() {}

type Table struct {
	Header
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

func (Table) Kind() Kind { return KindTable }
func (Table) isSection() {}

type Text struct {
	Header
	Content string `json:"content"`
}

func (Text) Kind() Kind { return KindText }
func (Text) isSection() {}

type Gauge struct {
	Header
	Value  float64 `json:"value"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Target float64 `json:"target"`
}

func (Gauge) Kind() Kind { return KindGauge }
func (Gauge) isSection() {}

// Percentage places Value within [Min, Max]; 0 for a degenerate range.
func (g Gauge) Percentage() float64 {
	if g.Max == g.Min {
		return 0
	}
	return (g.Value - g.Min) / (g.Max - g.Min) * 100
}

// Status is good at or above target, warning from 70% of target, else critical.
func (g Gauge) Status() string {
	switch {
	case g.Value >= g.Target:
		return "good"
	case g.Value >= g.Target*0.7:
		return "warning"
	default:
		return "critical"
	}
}

type MapPoint struct {
	Label string  `json:"label"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Value float64 `json:"value"`
}

type Map struct {
	Header
	Center [2]float64 `json:"center"`
	Zoom   int        `json:"zoom"`
	Points []MapPoint `json:"points"`
}

func (Map) Kind() Kind { return KindMap }
func (Map) isSection() {}
