package pipeline

import "time"

// FilterWindow keeps rows with start <= ts < end, and, when meterID is
// non-empty, only rows of that meter. An empty meterID keeps all meters;
// the cross-meter rollups rely on that. An empty result is not an error
// here — downstream stages detect it and report "no data for this window".
func FilterWindow(f *Frame, meterID string, start, end time.Time) *Frame {
	var idx []int
	for i, ts := range f.Times {
		if ts.Before(start) || !ts.Before(end) {
			continue
		}
		if meterID != "" && f.Meters != nil && f.Meters[i] != meterID {
			continue
		}
		idx = append(idx, i)
	}
	return f.take(idx)
}

// FilterMeters keeps rows belonging to any of the given meters. A nil or
// empty set keeps everything.
func FilterMeters(f *Frame, meterIDs []string) *Frame {
	if len(meterIDs) == 0 || f.Meters == nil {
		return f.clone()
	}
	want := make(map[string]bool, len(meterIDs))
	for _, id := range meterIDs {
		want[id] = true
	}
	var idx []int
	for i, id := range f.Meters {
		if want[id] {
			idx = append(idx, i)
		}
	}
	return f.take(idx)
}
