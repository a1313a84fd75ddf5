// Command genmock reads a saved USGS GeoJSON response and writes the
// enriched records the service would return for it. It uses the real domain
// package so fixtures always match pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -in internal/pipeline/testdata/significant_month.geojson \
//	  -out data/mock/significant_month_enriched.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/couchcryptid/quake-feed-service/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	in := flag.String("in", "", "path to a saved GeoJSON feed response")
	out := flag.String("out", "", "output path for the enriched JSON fixture")
	flag.Parse()

	if *in == "" || *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -in, -out")
	}

	body, err := os.ReadFile(*in)
	if err != nil {
		return fmt.Errorf("read feed: %w", err)
	}

	results, err := domain.DecodeFeatures(string(body))
	if err != nil {
		return fmt.Errorf("decode %s: %w", *in, err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	events, skipped := domain.CollectEvents(results, logger)
	log.Printf("features: %d decoded, %d skipped", len(events), skipped)

	records := domain.EnrichAll(events)
	if err := writeJSON(*out, records); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote fixture: %s", *out)

	printStats(records)
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(records []domain.Earthquake) {
	categories := map[int]int{}
	near := 0
	for _, r := range records {
		categories[r.MagnitudeCategory]++
		if r.LocationOffset == domain.NearPrefix {
			near++
		}
	}

	keys := make([]int, 0, len(categories))
	for k := range categories {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	fmt.Println("\n=== Magnitude categories ===")
	for _, k := range keys {
		fmt.Printf("  %2d: %d\n", k, categories[k])
	}
	fmt.Printf("\n=== Locations ===\n  with offset: %d\n  near only:   %d\n", len(records)-near, near)
}
