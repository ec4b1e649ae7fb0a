// Package rows maps generic query rows (column name to value) into the typed
// inputs of the analysis engines. Malformed cells become zero values.
package rows

import (
	"time"

	"github.com/spf13/cast"
)

// Row is one result row keyed by column alias.
type Row map[string]any

// value unwraps driver byte slices so numeric columns sent as text still parse.
func (r Row) value(name string) any {
	v := r[name]
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

// Has reports whether the column is present and not NULL.
func (r Row) Has(name string) bool {
	v, ok := r[name]
	return ok && v != nil
}

func (r Row) String(name string) string {
	return cast.ToString(r.value(name))
}

func (r Row) Float(name string) float64 {
	f, err := cast.ToFloat64E(r.value(name))
	if err != nil {
		return 0
	}
	return f
}

func (r Row) Int(name string) int {
	v := r.value(name)
	if i, err := cast.ToIntE(v); err == nil {
		return i
	}
	// numeric columns arrive as decimal text
	return int(r.Float(name))
}

// Time returns the zero time for NULL or unparseable cells.
func (r Row) Time(name string) time.Time {
	t, err := cast.ToTimeE(r.value(name))
	if err != nil {
		return time.Time{}
	}
	return t
}

// TimePtr is Time with NULL mapped to nil.
func (r Row) TimePtr(name string) *time.Time {
	if !r.Has(name) {
		return nil
	}
	t := r.Time(name)
	if t.IsZero() {
		return nil
	}
	return &t
}
