// Package export renders cost/profit window reports as XLSX files and
// keeps the report directory from growing without bound.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mabackma/meter-dashboard/internal/model"
	"github.com/mabackma/meter-dashboard/internal/pipeline"
)

// MeterCostProfit is one report row: a meter's sign-partitioned expense
// rollup over the report window.
type MeterCostProfit struct {
	MeterName string
	Rollup    pipeline.CostProfit
}

// BuildWindowReportXLSX renders the window's cost/profit rollup, one row
// per meter plus a combined total.
func BuildWindowReportXLSX(window model.TimeWindow, rows []MeterCostProfit) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "report"
	f.SetSheetName("Sheet1", sheet)

	_ = f.SetCellValue(sheet, "A1", "Expense Report")
	_ = f.SetCellValue(sheet, "A2", "Window")
	_ = f.SetCellValue(sheet, "B2", fmt.Sprintf("%s – %s",
		window.Start.Format("2006-01-02"), window.End.Format("2006-01-02")))

	headers := []string{"Meter", "Cost (EUR)", "Profit (EUR)", "Net (EUR)"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 4)
		_ = f.SetCellValue(sheet, cell, h)
	}

	var total pipeline.CostProfit
	for i, row := range rows {
		r := i + 5
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", r), row.MeterName)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", r), row.Rollup.Cost)
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", r), row.Rollup.Profit)
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", r), row.Rollup.Net)
		total.Cost += row.Rollup.Cost
		total.Profit += row.Rollup.Profit
		total.Net += row.Rollup.Net
	}

	r := len(rows) + 6
	_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", r), "Total")
	_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", r), total.Cost)
	_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", r), total.Profit)
	_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", r), total.Net)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Writer saves reports into a directory shared with other tools. Old files
// are garbage-collected opportunistically on each save; nothing here may
// assume exclusive access to the directory.
type Writer struct {
	Dir    string
	MaxAge time.Duration
	Naming NamingRules
}

// Save writes the report under a sanitized name and returns the full path.
// An existing file of the same name is kept as-is.
func (w *Writer) Save(name string, data []byte) (string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}
	w.cleanOld()

	path := filepath.Join(w.Dir, w.Naming.Sanitize(name)+".xlsx")
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

// cleanOld removes reports older than MaxAge. Best effort: files that
// vanish or resist removal are someone else's business.
func (w *Writer) cleanOld() {
	if w.MaxAge <= 0 {
		return
	}
	entries, err := os.ReadDir(w.Dir)
	if err != nil {
		return
	}
	cutoff := time.Now().Add(-w.MaxAge)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".xlsx" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			_ = os.Remove(filepath.Join(w.Dir, entry.Name()))
		}
	}
}
