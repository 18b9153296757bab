package analyzer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mabackma/meter-dashboard/internal/model"
	"github.com/mabackma/meter-dashboard/internal/pipeline"
	"github.com/mabackma/meter-dashboard/internal/store"
)

var (
	day     = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	catalog = model.MeterCatalog{"m1": "Main Building", "m2": "Warehouse"}
)

func newAnalyzer(t *testing.T, readings []model.Reading, prices []model.PriceSample) *Analyzer {
	t.Helper()
	s := store.New()
	s.AddReadings(readings)
	s.AddPrices(prices)
	require.NoError(t, s.Build())
	return New(s, catalog, time.UTC)
}

func reading(ts time.Time, meter string, power float64) model.Reading {
	return model.Reading{
		Timestamp: ts,
		MeterID:   meter,
		Values: map[model.ColumnID]float64{
			model.ColTotalPower: power,
			model.ColL1Current:  power / 230,
		},
	}
}

func TestAnalyzer_ExpenseScenario(t *testing.T) {
	// 1000 W at 100 EUR/MWh, 2000 W at 50 EUR/MWh: 0.1 EUR/h each hour.
	a := newAnalyzer(t,
		[]model.Reading{
			reading(day, "m1", 1000),
			reading(day.Add(time.Hour), "m1", 2000),
		},
		[]model.PriceSample{
			{Hour: day, EURPerMWh: 100},
			{Hour: day.Add(time.Hour), EURPerMWh: 50},
		},
	)

	result, err := a.CostProfitRollup(model.Day(day), nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, result.Combined.Net, 1e-12)
	assert.InDelta(t, 0.2, result.Combined.Cost, 1e-12)
	assert.InDelta(t, 0, result.Combined.Profit, 1e-12)

	require.Len(t, result.PerMeter, 1)
	assert.Equal(t, "Main Building", result.PerMeter[0].MeterName)
	assert.Equal(t, result.Combined.Net, result.Combined.Cost-result.Combined.Profit)
}

func TestAnalyzer_RollupSplitsExportAsProfit(t *testing.T) {
	a := newAnalyzer(t,
		[]model.Reading{
			// One hour importing 0.1 EUR/h, one exporting 0.1 EUR/h.
			reading(day, "m1", 1000),
			reading(day.Add(time.Hour), "m1", -2000),
		},
		[]model.PriceSample{
			{Hour: day, EURPerMWh: 100},
			{Hour: day.Add(time.Hour), EURPerMWh: 50},
		},
	)

	result, err := a.CostProfitRollup(model.Day(day), nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, result.Combined.Cost, 1e-12)
	assert.InDelta(t, 0.1, result.Combined.Profit, 1e-12)
	assert.InDelta(t, 0, result.Combined.Net, 1e-12)
}

func TestAnalyzer_CostEffectivenessZeroPrice(t *testing.T) {
	// A zero price must never fault and must reach the chart as a finite
	// value.
	a := newAnalyzer(t,
		[]model.Reading{
			reading(day, "m1", 1000),
			reading(day.Add(time.Hour), "m1", 2000),
		},
		[]model.PriceSample{
			{Hour: day, EURPerMWh: 0},
			{Hour: day.Add(time.Hour), EURPerMWh: 50},
		},
	)

	frame, err := a.CostEffectiveness(model.Day(day), nil)
	require.NoError(t, err)

	ratio, ok := frame.Column(string(model.ColPowerPrice))
	require.True(t, ok)
	for _, v := range ratio {
		if !pipeline.IsMissing(v) {
			assert.False(t, v < 0 || v > 1, "normalized ratio out of range: %v", v)
		}
	}
}

func TestAnalyzer_CostEffectivenessSumsMeters(t *testing.T) {
	a := newAnalyzer(t,
		[]model.Reading{
			reading(day, "m1", 1000),
			reading(day, "m2", 3000),
			reading(day.Add(time.Hour), "m1", 2000),
			reading(day.Add(time.Hour), "m2", 1000),
		},
		[]model.PriceSample{
			{Hour: day, EURPerMWh: 100},
			{Hour: day.Add(time.Hour), EURPerMWh: 100},
		},
	)

	// Combined power is 4000 W then 3000 W at equal price, so the first
	// hour normalizes to 1 and the second to 0.
	frame, err := a.CostEffectiveness(model.Day(day), []string{"m1", "m2"})
	require.NoError(t, err)
	ratio, _ := frame.Column(string(model.ColPowerPrice))
	require.Len(t, ratio, 2)
	assert.InDelta(t, 1, ratio[0], 1e-9)
	assert.InDelta(t, 0, ratio[1], 1e-9)
}

func TestAnalyzer_ExpenseChartIncludesTotal(t *testing.T) {
	a := newAnalyzer(t,
		[]model.Reading{
			reading(day, "m1", 1000),
			reading(day, "m2", 2000),
		},
		[]model.PriceSample{{Hour: day, EURPerMWh: 100}},
	)

	frame, err := a.ExpenseChart(model.Day(day), nil)
	require.NoError(t, err)
	assert.True(t, frame.HasColumn("Main Building"))
	assert.True(t, frame.HasColumn("Warehouse"))
	assert.True(t, frame.HasColumn(TotalColumn))
}

func TestAnalyzer_LineChartNormalizes(t *testing.T) {
	a := newAnalyzer(t,
		[]model.Reading{
			reading(day, "m1", 1000),
			reading(day.Add(time.Hour), "m1", 3000),
		},
		nil,
	)

	frame, err := a.LineChart("total", "m1", model.Day(day), []string{string(model.ColTotalPower)}, false)
	require.NoError(t, err)

	vals, _ := frame.Column(string(model.ColTotalPower))
	require.Len(t, vals, 2)
	assert.InDelta(t, 0, vals[0], 1e-9)
	assert.InDelta(t, 1, vals[1], 1e-9)
}

func TestAnalyzer_LineChartRejectsUnknownColumn(t *testing.T) {
	a := newAnalyzer(t, []model.Reading{reading(day, "m1", 1)}, nil)

	_, err := a.LineChart("total", "m1", model.Day(day), []string{"no_such_column"}, false)
	assert.Error(t, err)

	_, err = a.LineChart("total", "m1", model.Day(day), nil, false)
	assert.ErrorIs(t, err, pipeline.ErrNoColumns)
}

func TestAnalyzer_EmptyWindow(t *testing.T) {
	a := newAnalyzer(t, []model.Reading{reading(day, "m1", 1)}, nil)

	otherDay := model.Day(day.AddDate(0, 1, 0))
	_, err := a.ExpenseChart(otherDay, nil)
	assert.ErrorIs(t, err, pipeline.ErrEmptyResult)

	_, err = a.CostProfitRollup(otherDay, nil)
	assert.ErrorIs(t, err, pipeline.ErrEmptyResult)
}

func TestAnalyzer_LookupMissPropagates(t *testing.T) {
	a := newAnalyzer(t,
		[]model.Reading{reading(day, "m-unknown", 1000)},
		[]model.PriceSample{{Hour: day, EURPerMWh: 100}},
	)

	_, err := a.ExpenseChart(model.Day(day), nil)
	var miss *model.LookupMissError
	require.ErrorAs(t, err, &miss)
	assert.Equal(t, "m-unknown", miss.MeterID)
}

func TestAnalyzer_Heatmap(t *testing.T) {
	a := newAnalyzer(t,
		[]model.Reading{
			reading(day.Add(2*time.Hour), "m1", 500),
			reading(day.Add(2*time.Hour+30*time.Minute), "m1", 1500),
		},
		nil,
	)

	grid, err := a.Heatmap("total", "m1", model.Day(day), string(model.ColTotalPower))
	require.NoError(t, err)
	require.Len(t, grid.Days, 1)
	assert.InDelta(t, 1000, grid.Values[0][2], 1e-9)
}

func TestAnalyzer_Preview(t *testing.T) {
	a := newAnalyzer(t,
		[]model.Reading{reading(day, "m1", 1), reading(day, "m2", 2)},
		nil,
	)

	rows, err := a.Preview("total", "m1", model.Day(day))
	require.NoError(t, err)
	assert.Equal(t, 1, rows)

	rows, err = a.Preview("total", "", model.Day(day))
	require.NoError(t, err)
	assert.Equal(t, 2, rows)
}
