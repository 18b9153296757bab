package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mabackma/meter-dashboard/internal/model"
)

// SnapshotParser parses the columnar meter snapshot CSV.
//
// Expected format:
//
//	ts,meter_id,L1 Current,...,Total Active Power,...
//	2024-01-15T00:05:00,3100,1.27,...,843.5,...
//
// Header names are normalized to lower_snake before schema matching. A
// header with a column outside the known schema is a malformed upload and
// fails immediately; a row with an unparseable timestamp is skipped; an
// empty cell is a missing value, not zero.
type SnapshotParser struct{}

func (p *SnapshotParser) Parse(r io.Reader) ([]model.Reading, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	columns, err := mapSnapshotHeader(header)
	if err != nil {
		return nil, err
	}

	var readings []model.Reading
	lineNum := 1

	for {
		lineNum++
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV line %d: %w", lineNum, err)
		}

		reading, err := parseSnapshotRecord(record, columns)
		if err != nil {
			continue
		}

		readings = append(readings, reading)
	}

	return readings, nil
}

// NormalizeColumnName lower-cases a header name and replaces spaces with
// underscores, matching the snapshot's documented column schema.
func NormalizeColumnName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// mapSnapshotHeader maps each header position to a schema column. The
// first two columns must be ts and meter_id.
func mapSnapshotHeader(header []string) ([]model.ColumnID, error) {
	if len(header) < 3 {
		return nil, fmt.Errorf("expected at least 3 columns, got %d", len(header))
	}
	if NormalizeColumnName(header[0]) != "ts" {
		return nil, fmt.Errorf("expected column 0 to be %q, got %q", "ts", header[0])
	}
	if NormalizeColumnName(header[1]) != "meter_id" {
		return nil, fmt.Errorf("expected column 1 to be %q, got %q", "meter_id", header[1])
	}

	columns := make([]model.ColumnID, len(header))
	for i, name := range header[2:] {
		col := model.ColumnID(NormalizeColumnName(name))
		if _, known := model.ColumnCatalog[col]; !known {
			return nil, fmt.Errorf("unknown sensor column %q", name)
		}
		columns[i+2] = col
	}
	return columns, nil
}

func parseSnapshotRecord(record []string, columns []model.ColumnID) (model.Reading, error) {
	if len(record) != len(columns) {
		return model.Reading{}, fmt.Errorf("expected %d fields, got %d", len(columns), len(record))
	}

	ts, err := parseNaiveTimestamp(strings.TrimSpace(record[0]))
	if err != nil {
		return model.Reading{}, err
	}

	meterID := strings.TrimSpace(record[1])
	if meterID == "" {
		return model.Reading{}, fmt.Errorf("empty meter_id")
	}

	values := make(map[model.ColumnID]float64)
	for i, col := range columns[2:] {
		cell := strings.TrimSpace(record[i+2])
		if cell == "" {
			continue // missing, not zero
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return model.Reading{}, fmt.Errorf("parsing %s: %w", col, err)
		}
		values[col] = v
	}

	return model.Reading{Timestamp: ts, MeterID: meterID, Values: values}, nil
}

// parseNaiveTimestamp parses the snapshot's timezone-naive timestamps.
// Offsets, when present, are ignored rather than converted: the pipeline
// localizes naive wall-clock time itself.
func parseNaiveTimestamp(s string) (time.Time, error) {
	layouts := []string{
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		time.RFC3339,
	}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return time.Date(ts.Year(), ts.Month(), ts.Day(), ts.Hour(), ts.Minute(), ts.Second(), ts.Nanosecond(), time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing %q as timestamp", s)
}
