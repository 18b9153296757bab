package pipeline

import "math"

// ColumnStats summarizes one column over a frame.
type ColumnStats struct {
	Column string  `json:"column"`
	Count  int     `json:"count"` // non-missing values
	Mean   float64 `json:"mean"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Describe computes per-column summary statistics. Columns with no finite
// values report Count 0 and zeroed stats.
func Describe(f *Frame) []ColumnStats {
	stats := make([]ColumnStats, 0, len(f.order))
	for _, name := range f.order {
		vals := f.cols[name]
		s := ColumnStats{Column: name, Min: math.Inf(1), Max: math.Inf(-1)}
		var sum float64
		for _, v := range vals {
			if IsMissing(v) {
				continue
			}
			s.Count++
			sum += v
			if v < s.Min {
				s.Min = v
			}
			if v > s.Max {
				s.Max = v
			}
		}
		if s.Count == 0 {
			s.Min, s.Max = 0, 0
		} else {
			s.Mean = sum / float64(s.Count)
		}
		stats = append(stats, s)
	}
	return stats
}

// Sample returns up to n evenly spaced rows, for the dashboard's row
// preview.
func Sample(f *Frame, n int) *Frame {
	if n <= 0 || f.Len() == 0 {
		return f.take(nil)
	}
	if f.Len() <= n {
		return f.clone()
	}
	idx := make([]int, n)
	step := float64(f.Len()) / float64(n)
	for i := range idx {
		idx[i] = int(float64(i) * step)
	}
	return f.take(idx)
}
