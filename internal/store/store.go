// Package store holds one session's uploaded dataset in memory. The parsed
// readings and prices are immutable; the two derived series (Phase, Total)
// are built once per upload and read-only thereafter.
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/mabackma/meter-dashboard/internal/model"
	"github.com/mabackma/meter-dashboard/internal/pipeline"
)

// Store splits an uploaded snapshot into the Phase series (per-phase
// columns) and the Total series (aggregate columns joined with hourly
// prices plus the derived expense columns), and caches both.
type Store struct {
	mu       sync.RWMutex
	readings []model.Reading // sorted by timestamp
	prices   map[time.Time]float64

	phase  *pipeline.Frame
	total  *pipeline.Frame
	meters []string
}

func New() *Store {
	return &Store{prices: make(map[time.Time]float64)}
}

// AddReadings adds snapshot rows, keeping the set sorted by timestamp.
func (s *Store) AddReadings(readings []model.Reading) {
	if len(readings) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings = append(s.readings, readings...)
	sort.SliceStable(s.readings, func(i, j int) bool {
		return s.readings[i].Timestamp.Before(s.readings[j].Timestamp)
	})
}

// AddPrices registers hourly day-ahead prices, keyed by hour bucket.
func (s *Store) AddPrices(samples []model.PriceSample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range samples {
		s.prices[p.Hour.Truncate(time.Hour)] = p.EURPerMWh
	}
}

// Build derives the Phase and Total series from the loaded data. It is
// called once after ingestion; the derived frames never change afterwards.
func (s *Store) Build() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.readings)
	times := make([]time.Time, n)
	meters := make([]string, n)
	for i, r := range s.readings {
		times[i] = r.Timestamp
		meters[i] = r.MeterID
	}

	phase := newLongFrame(times, meters)
	for _, col := range model.PhaseColumns {
		phase.AddColumn(string(col), s.columnValues(col))
	}

	total := newLongFrame(times, meters)
	for _, col := range model.TotalColumns {
		total.AddColumn(string(col), s.columnValues(col))
	}

	// Many readings share one hourly price: join by (date, hour of day).
	priceCol := make([]float64, n)
	for i, r := range s.readings {
		price, ok := s.prices[r.Timestamp.Truncate(time.Hour)]
		if !ok {
			priceCol[i] = pipeline.Missing
			continue
		}
		priceCol[i] = price
	}
	total.AddColumn(string(model.ColPrice), priceCol)

	total, err := pipeline.ComputeExpenses(total)
	if err != nil {
		return err
	}

	s.phase = phase
	s.total = total

	seen := make(map[string]bool)
	s.meters = s.meters[:0]
	for _, id := range meters {
		if !seen[id] {
			seen[id] = true
			s.meters = append(s.meters, id)
		}
	}
	sort.Strings(s.meters)
	return nil
}

func (s *Store) columnValues(col model.ColumnID) []float64 {
	vals := make([]float64, len(s.readings))
	for i, r := range s.readings {
		v, ok := r.Values[col]
		if !ok {
			vals[i] = pipeline.Missing
			continue
		}
		vals[i] = v
	}
	return vals
}

// Phase returns the cached per-phase series.
func (s *Store) Phase() *pipeline.Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// Total returns the cached aggregate series with price and derived columns.
func (s *Store) Total() *pipeline.Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

// Meters returns the distinct meter identifiers observed in the dataset.
func (s *Store) Meters() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.meters))
	copy(out, s.meters)
	return out
}

// TimeRange returns the span covered by the loaded readings.
func (s *Store) TimeRange() (model.TimeRange, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.readings) == 0 {
		return model.TimeRange{}, false
	}
	return model.TimeRange{
		Start: s.readings[0].Timestamp,
		End:   s.readings[len(s.readings)-1].Timestamp,
	}, true
}

func newLongFrame(times []time.Time, meters []string) *pipeline.Frame {
	f := pipeline.NewFrame()
	f.Times = times
	f.Meters = meters
	return f
}
