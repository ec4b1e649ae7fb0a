package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Rendered is the wire form of a section.
type Rendered struct {
	Kind  Kind   `json:"kind"`
	ID    string `json:"id"`
	Title string `json:"title"`
	Data  any    `json:"data"`
}

// Render resolves the payload of a section.
func Render(s Section) Rendered {
	h := s.Heading()
	out := Rendered{Kind: s.Kind(), ID: h.ID, Title: h.Title}

	switch v := s.(type) {
	case KPI:
		out.Data = map[string]any{
			"value":           v.Value,
			"previous_value":  v.Previous,
			"change":          v.Change,
			"trend":           v.Trend(),
			"formatted_value": FormatValue(v.Value, v.Format),
		}
	case Chart:
		out.Data = map[string]any{
			"chart_type": v.ChartType,
			"labels":     nonNil(v.Labels),
			"series":     v.Series,
		}
	case Table:
		out.Data = map[string]any{
			"columns":    v.Columns,
			"rows":       v.Rows,
			"total_rows": len(v.Rows),
		}
	case Text:
		out.Data = map[string]any{"content": v.Content}
	case Gauge:
		out.Data = map[string]any{
			"value":      v.Value,
			"min":        v.Min,
			"max":        v.Max,
			"target":     v.Target,
			"percentage": v.Percentage(),
			"status":     v.Status(),
		}
	case Map:
		out.Data = map[string]any{
			"center": v.Center,
			"zoom":   v.Zoom,
			"points": v.Points,
		}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

type Dashboard struct {
	Title       string
	GeneratedAt time.Time
	Sections    []Section
}

func (d Dashboard) MarshalJSON() ([]byte, error) {
	sections := make([]Rendered, 0, len(d.Sections))
	for _, s := range d.Sections {
		sections = append(sections, Render(s))
	}
	return json.Marshal(struct {
		Title       string     `json:"title"`
		GeneratedAt time.Time  `json:"generated_at"`
		Sections    []Rendered `json:"sections"`
	}{d.Title, d.GeneratedAt, sections})
}

// WriteText prints a plain-text rendition of the dashboard.
func WriteText(w io.Writer, d Dashboard) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", d.Title, d.GeneratedAt.Format(time.RFC3339))

	for _, s := range d.Sections {
		fmt.Fprintf(&b, "\n## %s\n", s.Heading().Title)
		switch v := s.(type) {
		case KPI:
			fmt.Fprintf(&b, "%s (%s %s)\n", FormatValue(v.Value, v.Format), v.Trend(), FormatValue(v.Change, FormatPercentage))
		case Chart:
			for _, series := range v.Series {
				fmt.Fprintf(&b, "%s:", series.Name)
				for i, value := range series.Values {
					label := ""
					if i < len(v.Labels) {
						label = v.Labels[i] + "="
					}
					fmt.Fprintf(&b, " %s%s", label, FormatValue(value, FormatDecimal))
				}
				b.WriteString("\n")
			}
		case Table:
			b.WriteString(strings.Join(v.Columns, "\t") + "\n")
			for _, row := range v.Rows {
				b.WriteString(strings.Join(row, "\t") + "\n")
			}
		case Text:
			b.WriteString(v.Content + "\n")
		case Gauge:
			fmt.Fprintf(&b, "%s of %s [%s]\n", FormatValue(v.Value, FormatDecimal), FormatValue(v.Max, FormatDecimal), v.Status())
		case Map:
			for _, p := range v.Points {
				fmt.Fprintf(&b, "%s (%.4f, %.4f): %s\n", p.Label, p.Lat, p.Lng, FormatValue(p.Value, FormatNumber))
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
