package report

import (
	"math"
	"sort"
	"strings"

	apperrors "github.com/andresuchdata/retail-insights/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

type Format string

const (
	FormatNumber     Format = "number"
	FormatDecimal    Format = "decimal"
	FormatCurrency   Format = "currency"
	FormatPercentage Format = "percentage"
)

// CurrencySymbol prefixes currency-formatted values.
var CurrencySymbol = "$"

// FormatValue renders v with thousands separators. Unknown formats fall back
// to the plain decimal representation.
func FormatValue(v float64, format Format) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	d := decimal.NewFromFloat(v)
	switch format {
	case FormatNumber:
		return group(d.StringFixed(0))
	case FormatDecimal:
		return group(d.StringFixed(2))
	case FormatCurrency:
		return CurrencySymbol + group(d.StringFixed(2))
	case FormatPercentage:
		return d.StringFixed(2) + "%"
	default:
		return d.String()
	}
}

func group(fixed string) string {
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	whole, frac, hasFrac := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		return sign + b.String() + "." + frac
	}
	return sign + b.String()
}

// Expand substitutes {name} placeholders in content.
func Expand(content string, params map[string]string) string {
	if len(params) == 0 {
		return content
	}
	pairs := make([]string, 0, len(params)*2)
	for k, v := range params {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(content)
}

type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// ParseSortDirection defaults an empty value to ascending.
func ParseSortDirection(raw string) (SortDirection, error) {
	switch d := SortDirection(strings.ToLower(strings.TrimSpace(raw))); d {
	case "":
		return Ascending, nil
	case Ascending, Descending:
		return d, nil
	}
	return "", apperrors.Newf(apperrors.CodeValidation, "unknown sort direction %q", raw)
}

// SortBy orders rows by the named column. Cells that parse as numbers compare
// numerically; the sort is stable.
func (t Table) SortBy(column string, dir SortDirection) (Table, error) {
	idx := -1
	for i, c := range t.Columns {
		if c == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return t, apperrors.Newf(apperrors.CodeValidation, "unknown column %q", column)
	}

	rows := make([][]string, len(t.Rows))
	copy(rows, t.Rows)
	sort.SliceStable(rows, func(i, j int) bool {
		c := compareCells(cell(rows[i], idx), cell(rows[j], idx))
		if dir == Descending {
			return c > 0
		}
		return c < 0
	})
	t.Rows = rows
	return t, nil
}

// Page keeps at most limit rows starting at offset; limit <= 0 keeps the rest.
func (t Table) Page(offset, limit int) Table {
	if offset < 0 {
		offset = 0
	}
	if offset > len(t.Rows) {
		offset = len(t.Rows)
	}
	end := len(t.Rows)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	t.Rows = t.Rows[offset:end]
	return t
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func compareCells(a, b string) int {
	fa, errA := cast.ToFloat64E(strings.ReplaceAll(a, ",", ""))
	fb, errB := cast.ToFloat64E(strings.ReplaceAll(b, ",", ""))
	if errA == nil && errB == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	return strings.Compare(a, b)
}
