package pipeline

import (
	"fmt"
	"sort"
	"time"

	"github.com/mabackma/meter-dashboard/internal/model"
)

// DuplicatePolicy decides what PivotByMeter does with multiple rows sharing
// the same (timestamp, meter) cell.
type DuplicatePolicy int

const (
	// DuplicateMean averages duplicate cells silently. Matches what the
	// dashboard has always done; retried uploads produce benign duplicates.
	DuplicateMean DuplicatePolicy = iota

	// DuplicateError rejects duplicates as a data-quality defect.
	DuplicateError
)

// PivotOptions configures PivotByMeter.
type PivotOptions struct {
	OnDuplicate DuplicatePolicy

	// Catalog renames pivoted columns from meter identifier to display
	// name. Nil keeps raw identifiers.
	Catalog model.MeterCatalog
}

// PivotByMeter reshapes a long frame (timestamp, meter, metric) into a wide
// one with one column per meter, indexed by the sorted distinct timestamps.
// Cells with no source row stay missing. When a catalog is given, a meter
// with no entry aborts the pivot with a LookupMissError carrying the raw
// identifier — deterministic, never a silently empty column name.
func PivotByMeter(f *Frame, metric string, opts PivotOptions) (*Frame, error) {
	src, ok := f.Column(metric)
	if !ok {
		return nil, fmt.Errorf("pivot: frame has no column %q", metric)
	}
	if f.Meters == nil {
		return nil, fmt.Errorf("pivot: frame has no meter dimension")
	}
	if f.Len() == 0 {
		return nil, ErrEmptyResult
	}

	meters := f.meterSet()
	sort.Strings(meters)

	names := make(map[string]string, len(meters))
	for _, id := range meters {
		if opts.Catalog == nil {
			names[id] = id
			continue
		}
		name, err := opts.Catalog.DisplayName(id)
		if err != nil {
			return nil, err
		}
		names[id] = name
	}

	// Sorted distinct timestamps form the wide index.
	tsIndex := make(map[time.Time]int)
	var times []time.Time
	for _, ts := range f.Times {
		if _, seen := tsIndex[ts]; !seen {
			tsIndex[ts] = 0
			times = append(times, ts)
		}
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	for i, ts := range times {
		tsIndex[ts] = i
	}

	sums := make(map[string][]float64, len(meters))
	counts := make(map[string][]int, len(meters))
	for _, id := range meters {
		sums[id] = make([]float64, len(times))
		counts[id] = make([]int, len(times))
	}

	for i, ts := range f.Times {
		if IsMissing(src[i]) {
			continue
		}
		id := f.Meters[i]
		row := tsIndex[ts]
		if counts[id][row] > 0 && opts.OnDuplicate == DuplicateError {
			return nil, fmt.Errorf("pivot: duplicate rows for meter %q at %s", id, ts.Format(time.RFC3339))
		}
		sums[id][row] += src[i]
		counts[id][row]++
	}

	out := NewFrame()
	out.Times = times
	for _, id := range meters {
		vals := make([]float64, len(times))
		for row := range vals {
			if counts[id][row] == 0 {
				vals[row] = Missing
				continue
			}
			vals[row] = sums[id][row] / float64(counts[id][row])
		}
		out.AddColumn(names[id], vals)
	}
	return out, nil
}

// SumAcrossMeters adds a column holding the per-row sum of the given wide
// columns. Missing values contribute 0; a meter fully absent at a timestamp
// never poisons the total.
func SumAcrossMeters(f *Frame, columns []string, totalName string) *Frame {
	out := f.clone()
	totals := make([]float64, out.Len())
	for _, name := range columns {
		vals, ok := out.Column(name)
		if !ok {
			continue
		}
		for i, v := range vals {
			if !IsMissing(v) {
				totals[i] += v
			}
		}
	}
	out.AddColumn(totalName, totals)
	return out
}
