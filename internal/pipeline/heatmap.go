package pipeline

import (
	"sort"
	"time"
)

// HeatmapGrid is a day × hour-of-day grid of one sensor's mean values,
// for visualizing daily and weekly patterns. Cells with no data hold the
// missing marker.
type HeatmapGrid struct {
	Days   []time.Time   // midnight of each day present, ascending
	Values [][24]float64 // Values[i][h] = mean of column over hour h of Days[i]
}

// Heatmap buckets a single column by (day, hour of day) and averages each
// bucket. Callers localize the frame first so the hour axis reflects civil
// time, not naive timestamps.
func Heatmap(f *Frame, column string) (*HeatmapGrid, error) {
	src, ok := f.Column(column)
	if !ok {
		return nil, &SchemaError{Column: column}
	}
	if f.Len() == 0 {
		return nil, ErrEmptyResult
	}

	type bucket struct {
		sum   [24]float64
		count [24]int
	}
	byDay := make(map[time.Time]*bucket)

	for i, ts := range f.Times {
		if IsMissing(src[i]) {
			continue
		}
		day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
		b := byDay[day]
		if b == nil {
			b = &bucket{}
			byDay[day] = b
		}
		h := ts.Hour()
		b.sum[h] += src[i]
		b.count[h]++
	}

	if len(byDay) == 0 {
		return nil, ErrEmptyResult
	}

	days := make([]time.Time, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	grid := &HeatmapGrid{Days: days, Values: make([][24]float64, len(days))}
	for i, day := range days {
		b := byDay[day]
		for h := 0; h < 24; h++ {
			if b.count[h] == 0 {
				grid.Values[i][h] = Missing
				continue
			}
			grid.Values[i][h] = b.sum[h] / float64(b.count[h])
		}
	}
	return grid, nil
}
