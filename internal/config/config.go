package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/mabackma/meter-dashboard/internal/model"
)

// AppConfig holds the server's runtime configuration.
type AppConfig struct {
	Addr        string
	InputDir    string
	FrontendDir string

	// Timezone attached to the dataset's naive timestamps.
	Timezone *time.Location

	// Report export directory and retention for opportunistic cleanup.
	ReportDir    string
	ReportMaxAge time.Duration

	Catalog model.MeterCatalog
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{
		Addr:        getenvDefault("ADDR", ":8080"),
		InputDir:    getenvDefault("INPUT_DIR", "input"),
		FrontendDir: getenvDefault("FRONTEND_DIR", "frontend/build"),
		ReportDir:   getenvDefault("REPORT_DIR", "query_files"),
		Catalog:     model.DefaultMeterCatalog,
	}

	tzName := getenvDefault("TIMEZONE", "Europe/Riga")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tzName, err)
	}
	cfg.Timezone = loc

	maxAgeStr := getenvDefault("REPORT_MAX_AGE", "168h")
	maxAge, err := time.ParseDuration(maxAgeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid REPORT_MAX_AGE: %w", err)
	}
	cfg.ReportMaxAge = maxAge

	if path := os.Getenv("METER_CATALOG"); path != "" {
		catalog, err := LoadCatalog(path)
		if err != nil {
			return nil, err
		}
		cfg.Catalog = catalog
	}

	return cfg, nil
}

// LoadCatalog reads a meter catalog override from a YAML file mapping
// meter identifiers to display names:
//
//	"3100": Main Building
//	"3101": Warehouse
func LoadCatalog(path string) (model.MeterCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading meter catalog: %w", err)
	}
	var catalog model.MeterCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parsing meter catalog: %w", err)
	}
	if len(catalog) == 0 {
		return nil, fmt.Errorf("meter catalog %s is empty", path)
	}
	return catalog, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
