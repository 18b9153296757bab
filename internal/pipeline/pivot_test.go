package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mabackma/meter-dashboard/internal/model"
)

func TestPivotByMeter_WideColumns(t *testing.T) {
	f := makeLongFrame(
		[]time.Time{base, base, base.Add(time.Hour), base.Add(time.Hour)},
		[]string{"m1", "m2", "m1", "m2"},
		"power", []float64{1, 10, 2, 20},
	)

	wide, err := PivotByMeter(f, "power", PivotOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, wide.Len())
	assert.Equal(t, []string{"m1", "m2"}, wide.Columns())

	m1, _ := wide.Column("m1")
	m2, _ := wide.Column("m2")
	assert.Equal(t, []float64{1, 2}, m1)
	assert.Equal(t, []float64{10, 20}, m2)
}

func TestPivotByMeter_RenamesViaCatalog(t *testing.T) {
	f := makeLongFrame([]time.Time{base}, []string{"m1"}, "power", []float64{1})

	catalog := model.MeterCatalog{"m1": "Main Building"}
	wide, err := PivotByMeter(f, "power", PivotOptions{Catalog: catalog})
	require.NoError(t, err)
	assert.Equal(t, []string{"Main Building"}, wide.Columns())
}

func TestPivotByMeter_LookupMissAborts(t *testing.T) {
	f := makeLongFrame([]time.Time{base}, []string{"m-unknown"}, "power", []float64{1})

	_, err := PivotByMeter(f, "power", PivotOptions{Catalog: model.MeterCatalog{"m1": "x"}})
	require.Error(t, err)

	var miss *model.LookupMissError
	require.ErrorAs(t, err, &miss)
	assert.Equal(t, "m-unknown", miss.MeterID)
}

func TestPivotByMeter_DuplicatesAveragedByDefault(t *testing.T) {
	f := makeLongFrame(
		[]time.Time{base, base},
		[]string{"m1", "m1"},
		"power", []float64{100, 300},
	)

	wide, err := PivotByMeter(f, "power", PivotOptions{})
	require.NoError(t, err)
	vals, _ := wide.Column("m1")
	assert.InDelta(t, 200, vals[0], 1e-9)
}

func TestPivotByMeter_DuplicateErrorPolicy(t *testing.T) {
	f := makeLongFrame(
		[]time.Time{base, base},
		[]string{"m1", "m1"},
		"power", []float64{100, 300},
	)

	_, err := PivotByMeter(f, "power", PivotOptions{OnDuplicate: DuplicateError})
	assert.Error(t, err)
}

func TestPivotByMeter_AbsentCellIsMissing(t *testing.T) {
	f := makeLongFrame(
		[]time.Time{base, base, base.Add(time.Hour)},
		[]string{"m1", "m2", "m1"},
		"power", []float64{1, 10, 2},
	)

	wide, err := PivotByMeter(f, "power", PivotOptions{})
	require.NoError(t, err)
	m2, _ := wide.Column("m2")
	assert.True(t, IsMissing(m2[1]))
}

func TestSumAcrossMeters_SkipsMissing(t *testing.T) {
	f := NewFrame()
	f.Times = hours(2, time.Hour)
	f.AddColumn("m1", []float64{1, 2})
	f.AddColumn("m2", []float64{10, Missing})

	got := SumAcrossMeters(f, []string{"m1", "m2"}, "total")
	totals, _ := got.Column("total")
	assert.InDelta(t, 11, totals[0], 1e-9)
	assert.InDelta(t, 2, totals[1], 1e-9) // m2 missing contributes 0, not NaN
	assert.False(t, IsMissing(totals[1]))
}
