package pipeline

import "time"

// Localize reinterprets the frame's naive timestamps as civil time in loc,
// so hour-of-day bucketing is locally meaningful. Resolution of DST edge
// cases comes from the zone database, not from a calendar heuristic: a
// nonexistent local time (spring-forward gap) normalizes forward onto the
// first valid instant, an ambiguous one (fall-back) takes the zone's
// canonical choice. Neither case fails.
func Localize(f *Frame, loc *time.Location) *Frame {
	out := f.clone()
	out.Times = make([]time.Time, f.Len())
	for i, ts := range f.Times {
		out.Times[i] = time.Date(
			ts.Year(), ts.Month(), ts.Day(),
			ts.Hour(), ts.Minute(), ts.Second(), ts.Nanosecond(),
			loc,
		)
	}
	return out
}
