package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mabackma/meter-dashboard/internal/model"
	"github.com/mabackma/meter-dashboard/internal/pipeline"
)

var startTime = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

func makeReading(ts time.Time, meterID string, power float64) model.Reading {
	return model.Reading{
		Timestamp: ts,
		MeterID:   meterID,
		Values: map[model.ColumnID]float64{
			model.ColTotalPower: power,
			model.ColL1Current:  1.5,
		},
	}
}

func TestStore_BuildSplitsSeries(t *testing.T) {
	s := New()
	s.AddReadings([]model.Reading{
		makeReading(startTime, "3100", 1000),
		makeReading(startTime.Add(time.Hour), "3100", 2000),
	})
	s.AddPrices([]model.PriceSample{
		{Hour: startTime, EURPerMWh: 100},
		{Hour: startTime.Add(time.Hour), EURPerMWh: 50},
	})
	require.NoError(t, s.Build())

	phase := s.Phase()
	require.NotNil(t, phase)
	assert.True(t, phase.HasColumn(string(model.ColL1Current)))
	assert.False(t, phase.HasColumn(string(model.ColTotalPower)))
	assert.False(t, phase.HasColumn(string(model.ColPrice)))

	total := s.Total()
	require.NotNil(t, total)
	assert.True(t, total.HasColumn(string(model.ColTotalPower)))
	assert.True(t, total.HasColumn(string(model.ColPrice)))
	assert.True(t, total.HasColumn(string(model.ColExpenses)))
	assert.False(t, total.HasColumn(string(model.ColL1Current)))
}

func TestStore_PriceJoinByHour(t *testing.T) {
	s := New()
	// Two sub-hourly readings share the 00:00 price.
	s.AddReadings([]model.Reading{
		makeReading(startTime.Add(10*time.Minute), "3100", 1000),
		makeReading(startTime.Add(40*time.Minute), "3100", 1000),
	})
	s.AddPrices([]model.PriceSample{{Hour: startTime, EURPerMWh: 100}})
	require.NoError(t, s.Build())

	prices, _ := s.Total().Column(string(model.ColPrice))
	require.Len(t, prices, 2)
	assert.InDelta(t, 100, prices[0], 1e-9)
	assert.InDelta(t, 100, prices[1], 1e-9)

	expenses, _ := s.Total().Column(string(model.ColExpenses))
	assert.InDelta(t, 0.1, expenses[0], 1e-12)
}

func TestStore_MissingPriceLeavesExpensesMissing(t *testing.T) {
	s := New()
	s.AddReadings([]model.Reading{makeReading(startTime, "3100", 1000)})
	require.NoError(t, s.Build())

	expenses, _ := s.Total().Column(string(model.ColExpenses))
	assert.True(t, pipeline.IsMissing(expenses[0]))
}

func TestStore_MetersAndTimeRange(t *testing.T) {
	s := New()

	_, ok := s.TimeRange()
	assert.False(t, ok)

	s.AddReadings([]model.Reading{
		makeReading(startTime.Add(time.Hour), "3101", 1),
		makeReading(startTime, "3100", 1),
	})
	require.NoError(t, s.Build())

	assert.Equal(t, []string{"3100", "3101"}, s.Meters())

	tr, ok := s.TimeRange()
	require.True(t, ok)
	assert.Equal(t, startTime, tr.Start)
	assert.Equal(t, startTime.Add(time.Hour), tr.End)
}

func TestStore_AbsentSensorValueIsMissing(t *testing.T) {
	s := New()
	s.AddReadings([]model.Reading{
		{Timestamp: startTime, MeterID: "3100", Values: map[model.ColumnID]float64{}},
	})
	require.NoError(t, s.Build())

	power, _ := s.Total().Column(string(model.ColTotalPower))
	assert.True(t, pipeline.IsMissing(power[0]), "absent value is missing data, not zero")
}
