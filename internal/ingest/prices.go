package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mabackma/meter-dashboard/internal/model"
)

// PriceParser parses hourly day-ahead price CSV exports.
//
// Expected format:
//
//	ts,price
//	2024-01-15T00:00:00,87.41
//
// Prices are in EUR/MWh, one row per clock hour.
type PriceParser struct{}

func (p *PriceParser) Parse(r io.Reader) ([]model.PriceSample, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	if err := validatePriceHeader(header); err != nil {
		return nil, err
	}

	var samples []model.PriceSample
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

		sample, err := parsePriceRecord(record)
		if err != nil {
			continue
		}

		samples = append(samples, sample)
	}

	return samples, nil
}

func validatePriceHeader(header []string) error {
	if len(header) < 2 {
		return fmt.Errorf("expected at least 2 columns, got %d", len(header))
	}
	expected := []string{"ts", "price"}
	for i, col := range expected {
		if NormalizeColumnName(header[i]) != col {
			return fmt.Errorf("expected column %d to be %q, got %q", i, col, header[i])
		}
	}
	return nil
}

func parsePriceRecord(record []string) (model.PriceSample, error) {
	if len(record) < 2 {
		return model.PriceSample{}, fmt.Errorf("expected 2 fields, got %d", len(record))
	}

	ts, err := parseNaiveTimestamp(strings.TrimSpace(record[0]))
	if err != nil {
		return model.PriceSample{}, err
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
	if err != nil {
		return model.PriceSample{}, fmt.Errorf("parsing price: %w", err)
	}

	return model.PriceSample{Hour: ts, EURPerMWh: price}, nil
}
