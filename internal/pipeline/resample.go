package pipeline

import "time"

// ResampleHourly converts a timestamp-indexed frame into one row per clock
// hour spanned by the input. Each output value is the arithmetic mean of
// the input rows falling inside that hour; hours with no source rows stay
// missing and render as gaps. With fillGaps set, empty hour buckets are
// back-filled with the column's mean over the whole resampled span instead
// ("hide interruptions" — opt-in only). The meter dimension is dropped.
//
// Resampling an already-hourly frame is a no-op apart from the index
// truncation.
func ResampleHourly(f *Frame, fillGaps bool) *Frame {
	out := NewFrame()
	if f.Len() == 0 {
		return out
	}

	first := f.Times[0].Truncate(time.Hour)
	last := f.Times[0].Truncate(time.Hour)
	for _, ts := range f.Times {
		h := ts.Truncate(time.Hour)
		if h.Before(first) {
			first = h
		}
		if h.After(last) {
			last = h
		}
	}

	buckets := int(last.Sub(first)/time.Hour) + 1
	out.Times = make([]time.Time, buckets)
	for i := range out.Times {
		out.Times[i] = first.Add(time.Duration(i) * time.Hour)
	}

	for _, name := range f.order {
		src := f.cols[name]
		sums := make([]float64, buckets)
		counts := make([]int, buckets)
		for i, ts := range f.Times {
			if IsMissing(src[i]) {
				continue
			}
			b := int(ts.Truncate(time.Hour).Sub(first) / time.Hour)
			sums[b] += src[i]
			counts[b]++
		}

		vals := make([]float64, buckets)
		var spanSum float64
		var spanCount int
		for b := range vals {
			if counts[b] == 0 {
				vals[b] = Missing
				continue
			}
			vals[b] = sums[b] / float64(counts[b])
			spanSum += vals[b]
			spanCount++
		}

		if fillGaps && spanCount > 0 {
			mean := spanSum / float64(spanCount)
			for b := range vals {
				if IsMissing(vals[b]) {
					vals[b] = mean
				}
			}
		}

		out.AddColumn(name, vals)
	}

	return out
}
