package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/mabackma/meter-dashboard/internal/analyzer"
	"github.com/mabackma/meter-dashboard/internal/export"
	"github.com/mabackma/meter-dashboard/internal/ingest"
	"github.com/mabackma/meter-dashboard/internal/model"
	"github.com/mabackma/meter-dashboard/internal/store"
)

func main() {
	inputDir := flag.String("input-dir", "input", "directory containing snapshot and price CSV files")
	window := flag.String("window", "", "report window: day=2024-01-15, week=2024-w3 or month=2024-m1")
	meters := flag.String("meters", "", "comma-separated meter ids (default: all)")
	xlsxDir := flag.String("xlsx-dir", "", "also write an XLSX report into this directory")
	tzName := flag.String("timezone", "Europe/Riga", "timezone for the dataset's naive timestamps")
	flag.Parse()

	w, err := parseWindow(*window)
	if err != nil {
		log.Fatalf("Invalid -window: %v", err)
	}

	loc, err := time.LoadLocation(*tzName)
	if err != nil {
		log.Fatalf("Invalid -timezone: %v", err)
	}

	dataStore := store.New()
	if err := loadCSVs(*inputDir, dataStore); err != nil {
		log.Fatalf("Failed to load data: %v", err)
	}
	if err := dataStore.Build(); err != nil {
		log.Fatalf("Failed to build series: %v", err)
	}

	var meterIDs []string
	if *meters != "" {
		meterIDs = strings.Split(*meters, ",")
	}

	an := analyzer.New(dataStore, model.DefaultMeterCatalog, loc)
	result, err := an.CostProfitRollup(w, meterIDs)
	if err != nil {
		log.Fatalf("Rollup failed: %v", err)
	}

	fmt.Println()
	fmt.Println("Expense Report")
	fmt.Printf("  Window: %s to %s\n", w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))
	fmt.Println()
	fmt.Printf("  %-24s %12s %12s %12s\n", "Meter", "Cost EUR", "Profit EUR", "Net EUR")
	for _, m := range result.PerMeter {
		fmt.Printf("  %-24s %12.2f %12.2f %12.2f\n", m.MeterName, m.Rollup.Cost, m.Rollup.Profit, m.Rollup.Net)
	}
	fmt.Println()
	fmt.Printf("  %-24s %12.2f %12.2f %12.2f\n", "Total",
		result.Combined.Cost, result.Combined.Profit, result.Combined.Net)

	if *xlsxDir != "" {
		rows := make([]export.MeterCostProfit, 0, len(result.PerMeter))
		for _, m := range result.PerMeter {
			rows = append(rows, export.MeterCostProfit{MeterName: m.MeterName, Rollup: m.Rollup})
		}
		data, err := export.BuildWindowReportXLSX(w, rows)
		if err != nil {
			log.Fatalf("Building XLSX: %v", err)
		}
		writer := &export.Writer{Dir: *xlsxDir, MaxAge: 7 * 24 * time.Hour, Naming: export.WindowsNaming}
		name := fmt.Sprintf("expenses_%s_%s", w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))
		path, err := writer.Save(name, data)
		if err != nil {
			log.Fatalf("Writing XLSX: %v", err)
		}
		fmt.Printf("\n  Report written to %s\n", path)
	}
}

// parseWindow accepts 2024-01-15 (day), 2024-w3 (ISO week) or 2024-m1
// (month).
func parseWindow(s string) (model.TimeWindow, error) {
	if s == "" {
		return model.TimeWindow{}, fmt.Errorf("window is required")
	}

	if d, err := time.Parse("2006-01-02", s); err == nil {
		return model.Day(d.UTC()), nil
	}

	var year, ordinal int
	if n, err := fmt.Sscanf(s, "%d-w%d", &year, &ordinal); err == nil && n == 2 {
		if ordinal < 1 || ordinal > 53 {
			return model.TimeWindow{}, fmt.Errorf("week %d out of range", ordinal)
		}
		return model.Week(year, ordinal), nil
	}
	if n, err := fmt.Sscanf(s, "%d-m%d", &year, &ordinal); err == nil && n == 2 {
		if ordinal < 1 || ordinal > 12 {
			return model.TimeWindow{}, fmt.Errorf("month %d out of range", ordinal)
		}
		return model.Month(year, time.Month(ordinal)), nil
	}
	return model.TimeWindow{}, fmt.Errorf("unrecognized window %q", s)
}

func loadCSVs(dir string, s *store.Store) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading input directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		f, err := os.Open(dir + "/" + entry.Name())
		if err != nil {
			return fmt.Errorf("opening %s: %w", entry.Name(), err)
		}
		if strings.Contains(strings.ToLower(entry.Name()), "price") {
			samples, err := (&ingest.PriceParser{}).Parse(f)
			f.Close()
			if err != nil {
				return fmt.Errorf("parsing %s: %w", entry.Name(), err)
			}
			s.AddPrices(samples)
		} else {
			readings, err := (&ingest.SnapshotParser{}).Parse(f)
			f.Close()
			if err != nil {
				return fmt.Errorf("parsing %s: %w", entry.Name(), err)
			}
			s.AddReadings(readings)
		}
	}
	return nil
}
