package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/mabackma/meter-dashboard/internal/analyzer"
	"github.com/mabackma/meter-dashboard/internal/config"
	"github.com/mabackma/meter-dashboard/internal/export"
	"github.com/mabackma/meter-dashboard/internal/ingest"
	"github.com/mabackma/meter-dashboard/internal/store"
	"github.com/mabackma/meter-dashboard/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	dataStore := store.New()
	if err := loadInputDir(cfg.InputDir, dataStore); err != nil {
		log.Fatalf("Failed to load input data: %v", err)
	}
	if err := dataStore.Build(); err != nil {
		log.Fatalf("Failed to build series: %v", err)
	}

	tr, ok := dataStore.TimeRange()
	if !ok {
		log.Fatal("No data loaded")
	}
	log.Printf("Data loaded: %s to %s, %d meters",
		tr.Start.Format("2006-01-02"), tr.End.Format("2006-01-02"), len(dataStore.Meters()))

	an := analyzer.New(dataStore, cfg.Catalog, cfg.Timezone)
	reports := &export.Writer{
		Dir:    cfg.ReportDir,
		MaxAge: cfg.ReportMaxAge,
		Naming: export.WindowsNaming,
	}

	hub := ws.NewHub()
	handler := ws.NewHandler(hub, dataStore, an, reports)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	mux.Handle("/ws", handler)

	if _, err := os.Stat(cfg.FrontendDir); err == nil {
		log.Printf("Serving frontend from %s", cfg.FrontendDir)
		mux.Handle("/", http.FileServer(http.Dir(cfg.FrontendDir)))
	}

	log.Printf("Starting server on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		log.Fatal(err)
	}
}

// loadInputDir loads every CSV under dir: price files (name contains
// "price") through the price parser, everything else as meter snapshots.
func loadInputDir(dir string, s *store.Store) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading input directory: %w", err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		log.Printf("Loading %s...", path)

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}

		if strings.Contains(strings.ToLower(entry.Name()), "price") {
			samples, err := (&ingest.PriceParser{}).Parse(f)
			f.Close()
			if err != nil {
				return fmt.Errorf("parsing %s: %w", path, err)
			}
			s.AddPrices(samples)
		} else {
			readings, err := (&ingest.SnapshotParser{}).Parse(f)
			f.Close()
			if err != nil {
				return fmt.Errorf("parsing %s: %w", path, err)
			}
			s.AddReadings(readings)
		}
		loaded++
	}

	if loaded == 0 {
		return fmt.Errorf("no CSV files in %s", dir)
	}
	return nil
}
