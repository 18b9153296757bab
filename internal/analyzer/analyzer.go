// Package analyzer composes the pipeline stages into the dashboard's
// views: normalized line charts, hour-of-day heatmaps, expense and
// cost-effectiveness charts and cost/profit rollups. One call is one
// synchronous pass; every run either completes or the interaction is
// abandoned, nothing is streamed.
package analyzer

import (
	"fmt"
	"time"

	"github.com/mabackma/meter-dashboard/internal/model"
	"github.com/mabackma/meter-dashboard/internal/pipeline"
	"github.com/mabackma/meter-dashboard/internal/store"
)

// TotalColumn names the cross-meter sum column added to wide charts.
const TotalColumn = "All Meters"

// Analyzer runs pipeline passes over the session's cached series.
type Analyzer struct {
	store   *store.Store
	catalog model.MeterCatalog
	loc     *time.Location
}

func New(s *store.Store, catalog model.MeterCatalog, loc *time.Location) *Analyzer {
	return &Analyzer{store: s, catalog: catalog, loc: loc}
}

// Series selects one of the two cached dataframes by name.
func (a *Analyzer) Series(name string) (*pipeline.Frame, error) {
	switch name {
	case "phase":
		if f := a.store.Phase(); f != nil {
			return f, nil
		}
	case "total":
		if f := a.store.Total(); f != nil {
			return f, nil
		}
	default:
		return nil, fmt.Errorf("unknown series %q", name)
	}
	return nil, fmt.Errorf("dataset not loaded")
}

// ValidateColumns checks a user column selection against the series
// schema, rejecting unknown identifiers at the boundary instead of letting
// raw strings flow through the pipeline.
func (a *Analyzer) ValidateColumns(f *pipeline.Frame, columns []string) error {
	if len(columns) == 0 {
		return pipeline.ErrNoColumns
	}
	for _, c := range columns {
		if !f.HasColumn(c) {
			return fmt.Errorf("unknown column %q", c)
		}
	}
	return nil
}

// Preview is the cheap first phase of a chart request: it filters only and
// reports how many rows the expensive render would see.
func (a *Analyzer) Preview(seriesName, meterID string, w model.TimeWindow) (int, error) {
	f, err := a.Series(seriesName)
	if err != nil {
		return 0, err
	}
	return pipeline.FilterWindow(f, meterID, w.Start, w.End).Len(), nil
}

// LineChart builds the normalized multi-column time plot for one meter:
// filter → hourly resample → localize → min-max per column. Missing
// readings are zero-filled so they render at the chart minimum.
func (a *Analyzer) LineChart(seriesName, meterID string, w model.TimeWindow, columns []string, fillGaps bool) (*pipeline.Frame, error) {
	f, err := a.Series(seriesName)
	if err != nil {
		return nil, err
	}
	if err := a.ValidateColumns(f, columns); err != nil {
		return nil, err
	}

	f = pipeline.FilterWindow(f, meterID, w.Start, w.End)
	f = pipeline.ResampleHourly(f, fillGaps)
	f = pipeline.Localize(f, a.loc)
	f = pipeline.SanitizeNonFinite(f, columns)
	return pipeline.NormalizeColumns(f, columns, pipeline.ZeroFill)
}

// Heatmap buckets one column into a day × hour-of-day grid for one meter.
// Localization runs before bucketing so the hour axis is civil time.
func (a *Analyzer) Heatmap(seriesName, meterID string, w model.TimeWindow, column string) (*pipeline.HeatmapGrid, error) {
	f, err := a.Series(seriesName)
	if err != nil {
		return nil, err
	}
	if err := a.ValidateColumns(f, []string{column}); err != nil {
		return nil, err
	}

	f = pipeline.FilterWindow(f, meterID, w.Start, w.End)
	f = pipeline.Localize(f, a.loc)
	return pipeline.Heatmap(f, column)
}

// ExpenseChart builds the per-meter expense lines plus their cross-meter
// total, hourly, normalized with gaps kept: a missing hour means no data,
// not zero cost.
func (a *Analyzer) ExpenseChart(w model.TimeWindow, meterIDs []string) (*pipeline.Frame, error) {
	wide, err := a.pivotMetric(w, meterIDs, string(model.ColExpenses))
	if err != nil {
		return nil, err
	}
	wide = pipeline.SumAcrossMeters(wide, wide.Columns(), TotalColumn)
	wide = pipeline.ResampleHourly(wide, false)
	wide = pipeline.Localize(wide, a.loc)
	return pipeline.NormalizeColumns(wide, wide.Columns(), pipeline.KeepMissing)
}

// CostEffectiveness builds the power-to-price ratio of the selected
// meters' combined active power, via an hourly price join. Zero-price
// hours produce a non-finite ratio which is sanitized to 0 before
// normalization.
func (a *Analyzer) CostEffectiveness(w model.TimeWindow, meterIDs []string) (*pipeline.Frame, error) {
	total, err := a.Series("total")
	if err != nil {
		return nil, err
	}
	sub := pipeline.FilterMeters(pipeline.FilterWindow(total, "", w.Start, w.End), meterIDs)
	if sub.Len() == 0 {
		return nil, pipeline.ErrEmptyResult
	}

	wide, err := pipeline.PivotByMeter(sub, string(model.ColTotalPower), pipeline.PivotOptions{Catalog: a.catalog})
	if err != nil {
		return nil, err
	}
	wide = pipeline.SumAcrossMeters(wide, wide.Columns(), string(model.ColTotalPower))
	hourlyPower := pipeline.ResampleHourly(wide, false)

	// Price is hourly and identical across meters, so the resampled mean
	// recovers it exactly.
	hourlyPrice := pipeline.ResampleHourly(sub, false)
	priceByHour := make(map[time.Time]float64, hourlyPrice.Len())
	if prices, ok := hourlyPrice.Column(string(model.ColPrice)); ok {
		for i, ts := range hourlyPrice.Times {
			priceByHour[ts] = prices[i]
		}
	}

	joined := pipeline.NewFrame()
	joined.Times = hourlyPower.Times
	power, _ := hourlyPower.Column(string(model.ColTotalPower))
	joined.AddColumn(string(model.ColTotalPower), power)
	priceCol := make([]float64, len(joined.Times))
	for i, ts := range joined.Times {
		p, ok := priceByHour[ts]
		if !ok {
			p = pipeline.Missing
		}
		priceCol[i] = p
	}
	joined.AddColumn(string(model.ColPrice), priceCol)

	joined, err = pipeline.ComputeExpenses(joined)
	if err != nil {
		return nil, err
	}
	ratio := string(model.ColPowerPrice)
	joined = pipeline.SanitizeNonFinite(joined, []string{ratio})
	joined = pipeline.Localize(joined, a.loc)
	joined, err = pipeline.NormalizeColumns(joined, []string{ratio}, pipeline.KeepMissing)
	if err != nil {
		return nil, err
	}

	out := pipeline.NewFrame()
	out.Times = joined.Times
	vals, _ := joined.Column(ratio)
	out.AddColumn(ratio, vals)
	return out, nil
}

// MeterRollup is one meter's sign-partitioned expense total over a window.
type MeterRollup struct {
	MeterName string
	Rollup    pipeline.CostProfit
}

// RollupResult is the window's expense split across the selected meters.
// Combined reconciles with the per-meter rollups: cost − profit == net.
type RollupResult struct {
	Combined pipeline.CostProfit
	PerMeter []MeterRollup
}

// CostProfitRollup partitions each meter's hourly expenses by sign and
// sums them: profit is the negated sum of negative hours, cost the sum of
// the rest.
func (a *Analyzer) CostProfitRollup(w model.TimeWindow, meterIDs []string) (*RollupResult, error) {
	wide, err := a.pivotMetric(w, meterIDs, string(model.ColExpenses))
	if err != nil {
		return nil, err
	}
	meterCols := wide.Columns()
	wide = pipeline.SumAcrossMeters(wide, meterCols, TotalColumn)
	hourly := pipeline.ResampleHourly(wide, false)

	result := &RollupResult{}
	if totals, ok := hourly.Column(TotalColumn); ok {
		result.Combined = pipeline.SplitCostProfit(totals)
	}
	for _, name := range meterCols {
		vals, _ := hourly.Column(name)
		result.PerMeter = append(result.PerMeter, MeterRollup{
			MeterName: name,
			Rollup:    pipeline.SplitCostProfit(vals),
		})
	}
	return result, nil
}

// pivotMetric filters the Total series to the window and selected meters
// and pivots one metric to wide form with display-name columns.
func (a *Analyzer) pivotMetric(w model.TimeWindow, meterIDs []string, metric string) (*pipeline.Frame, error) {
	total, err := a.Series("total")
	if err != nil {
		return nil, err
	}
	sub := pipeline.FilterMeters(pipeline.FilterWindow(total, "", w.Start, w.End), meterIDs)
	if sub.Len() == 0 {
		return nil, pipeline.ErrEmptyResult
	}
	return pipeline.PivotByMeter(sub, metric, pipeline.PivotOptions{Catalog: a.catalog})
}

// Describe returns per-column summary statistics for a series.
func (a *Analyzer) Describe(seriesName string) ([]pipeline.ColumnStats, error) {
	f, err := a.Series(seriesName)
	if err != nil {
		return nil, err
	}
	return pipeline.Describe(f), nil
}

// Sample returns up to n evenly spaced rows of a series.
func (a *Analyzer) Sample(seriesName string, n int) (*pipeline.Frame, error) {
	f, err := a.Series(seriesName)
	if err != nil {
		return nil, err
	}
	return pipeline.Sample(f, n), nil
}

// Catalog exposes the meter catalog the analyzer renames with.
func (a *Analyzer) Catalog() model.MeterCatalog {
	return a.catalog
}
