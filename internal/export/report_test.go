package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mabackma/meter-dashboard/internal/model"
	"github.com/mabackma/meter-dashboard/internal/pipeline"
)

func TestWriterSave(t *testing.T) {
	w := &Writer{Dir: t.TempDir(), Naming: WindowsNaming}

	path, err := w.Save("report: week 3", []byte("payload"))
	require.NoError(t, err)
	assert.Equal(t, "reportCOLON_week_3.xlsx", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestWriterSaveKeepsExisting(t *testing.T) {
	w := &Writer{Dir: t.TempDir(), Naming: WindowsNaming}

	first, err := w.Save("report", []byte("first"))
	require.NoError(t, err)

	second, err := w.Save("report", []byte("second"))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	data, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

func TestWriterRetention(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{Dir: dir, MaxAge: time.Hour, Naming: WindowsNaming}

	stale := filepath.Join(dir, "stale.xlsx")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	// Non-report files in the shared directory are left alone.
	unrelated := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(unrelated, []byte("keep"), 0o644))
	require.NoError(t, os.Chtimes(unrelated, old, old))

	_, err := w.Save("fresh", []byte("new"))
	require.NoError(t, err)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(unrelated)
	assert.NoError(t, err)
}

func TestBuildWindowReportXLSX(t *testing.T) {
	window := model.Day(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	rows := []MeterCostProfit{
		{MeterName: "Main Building", Rollup: pipeline.CostProfit{Cost: 1.5, Profit: 0.5, Net: 1.0}},
		{MeterName: "Warehouse", Rollup: pipeline.CostProfit{Cost: 0.2, Profit: 0, Net: 0.2}},
	}

	data, err := BuildWindowReportXLSX(window, rows)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	// XLSX is a zip container.
	assert.Equal(t, []byte{'P', 'K'}, data[:2])
}
