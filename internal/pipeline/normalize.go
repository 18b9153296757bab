package pipeline

import "math"

// MissingPolicy controls how NormalizeColumns treats missing values before
// scaling.
type MissingPolicy int

const (
	// ZeroFill replaces missing values with 0 before scaling. Used by the
	// line-chart path, where a missing reading renders at the minimum.
	ZeroFill MissingPolicy = iota

	// KeepMissing leaves missing values missing. Used by the expense path:
	// zero is a valid expense, so a gap must not be turned into one.
	KeepMissing
)

// NormalizeColumns rescales each selected column independently to [0, 1]
// by min-max over the rows of f — the filtered window only, so the same
// sensor can carry a different visual scale in different windows. A column
// with a single distinct finite value maps to the constant 0.
//
// Non-finite values other than the missing marker must be sanitized by the
// caller first (SanitizeNonFinite); an infinity would corrupt the min/max.
func NormalizeColumns(f *Frame, columns []string, policy MissingPolicy) (*Frame, error) {
	if len(columns) == 0 {
		return nil, ErrNoColumns
	}
	if f.Len() == 0 {
		return nil, ErrEmptyResult
	}

	out := f.clone()
	for _, name := range columns {
		src, ok := out.Column(name)
		if !ok {
			continue
		}

		vals := make([]float64, len(src))
		copy(vals, src)
		if policy == ZeroFill {
			for i, v := range vals {
				if IsMissing(v) {
					vals[i] = 0
				}
			}
		}

		lo, hi := math.Inf(1), math.Inf(-1)
		for _, v := range vals {
			if IsMissing(v) {
				continue
			}
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}

		if hi <= lo {
			// Empty or constant column.
			for i, v := range vals {
				if !IsMissing(v) {
					vals[i] = 0
				}
			}
		} else {
			for i, v := range vals {
				if !IsMissing(v) {
					vals[i] = (v - lo) / (hi - lo)
				}
			}
		}

		out.cols[name] = vals
	}
	return out, nil
}

// SanitizeNonFinite replaces ±Inf in the given columns with 0. This is a
// display fallback for divide-by-zero ratios and is distinct from missing
// rows, which stay missing.
func SanitizeNonFinite(f *Frame, columns []string) *Frame {
	out := f.clone()
	for _, name := range columns {
		src, ok := out.Column(name)
		if !ok {
			continue
		}
		vals := make([]float64, len(src))
		for i, v := range src {
			if math.IsInf(v, 0) {
				vals[i] = 0
			} else {
				vals[i] = v
			}
		}
		out.cols[name] = vals
	}
	return out
}
