// Package pipeline implements the derived-metric and time-windowed
// aggregation pipeline: window/meter filtering, hourly resampling, min-max
// normalization, long-to-wide pivoting, expense and cost-effectiveness
// metrics, and timezone localization. All operations are pure: they take a
// Frame and return a new one.
package pipeline

import (
	"math"
	"time"
)

// Missing marks an absent value inside a Frame column. Absent means "no
// data", never zero.
var Missing = math.NaN()

// IsMissing reports whether v is the missing-data marker.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// Frame is a columnar slice of a measurement series: parallel timestamps,
// optional per-row meter identifiers and named float64 columns. Frames are
// built once and treated as immutable by every pipeline stage.
type Frame struct {
	Times  []time.Time
	Meters []string // nil when the frame has no meter dimension (wide frames)

	order []string
	cols  map[string][]float64
}

func NewFrame() *Frame {
	return &Frame{cols: make(map[string][]float64)}
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.Times)
}

// Columns returns the column names in insertion order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

// Column returns the values of a named column.
func (f *Frame) Column(name string) ([]float64, bool) {
	vals, ok := f.cols[name]
	return vals, ok
}

// HasColumn reports whether the frame carries the named column.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.cols[name]
	return ok
}

// AddColumn appends a column. The values slice must match the row count;
// a mismatched length is a programming error and panics.
func (f *Frame) AddColumn(name string, vals []float64) {
	if len(vals) != len(f.Times) {
		panic("pipeline: column length does not match row count")
	}
	if _, exists := f.cols[name]; !exists {
		f.order = append(f.order, name)
	}
	f.cols[name] = vals
}

// Value returns the value at (row, column), or the missing marker when the
// column does not exist.
func (f *Frame) Value(row int, name string) float64 {
	vals, ok := f.cols[name]
	if !ok {
		return Missing
	}
	return vals[row]
}

// take builds a new frame from the given row indices, copying every column.
func (f *Frame) take(idx []int) *Frame {
	out := NewFrame()
	out.Times = make([]time.Time, len(idx))
	for i, j := range idx {
		out.Times[i] = f.Times[j]
	}
	if f.Meters != nil {
		out.Meters = make([]string, len(idx))
		for i, j := range idx {
			out.Meters[i] = f.Meters[j]
		}
	}
	for _, name := range f.order {
		src := f.cols[name]
		vals := make([]float64, len(idx))
		for i, j := range idx {
			vals[i] = src[j]
		}
		out.AddColumn(name, vals)
	}
	return out
}

// clone copies the frame so a stage can rewrite columns without touching
// its input.
func (f *Frame) clone() *Frame {
	idx := make([]int, f.Len())
	for i := range idx {
		idx[i] = i
	}
	return f.take(idx)
}

// meterSet returns the distinct meter identifiers in row order of first
// appearance.
func (f *Frame) meterSet() []string {
	seen := make(map[string]bool)
	var out []string
	for _, id := range f.Meters {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
