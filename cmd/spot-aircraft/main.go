package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/unklstewy/flightwindow/internal/acquire"
	"github.com/unklstewy/flightwindow/internal/logging"
	"github.com/unklstewy/flightwindow/internal/report"
	"github.com/unklstewy/flightwindow/internal/scanner"
	"github.com/unklstewy/flightwindow/pkg/config"
	"github.com/unklstewy/flightwindow/pkg/provider"
)

// spot-aircraft lists live flights of rare aircraft types, nearest to the
// reference airports first, and names the types that are not flying.
func main() {
	configPath := flag.String("config", "configs/config.json", "Path to configuration file")
	types := flag.String("types", "", "Comma separated ICAO aircraft types (overrides config)")
	refs := flag.String("refs", "", "Comma separated reference airports (overrides config)")
	concurrency := flag.Int("concurrency", 0, "Parallel feed requests (overrides config)")
	flag.Parse()

	log.Println("===========================================")
	log.Println("  Rare Aircraft Spotter")
	log.Println("===========================================")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *types != "" {
		cfg.Scanner.AircraftTypes = config.ParseCodes(*types)
	}
	if *refs != "" {
		cfg.Scanner.ReferenceAirports = config.ParseCodes(*refs)
	}
	if *concurrency > 0 {
		cfg.Scanner.Concurrency = *concurrency
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if len(cfg.Scanner.ReferenceAirports) == 0 {
		log.Fatal("Error: No reference airports configured")
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.File)
	defer logger.Close()

	client := provider.NewClientFromConfig(cfg.Provider)
	defer client.Close()
	fetcher := acquire.NewFetcherFromConfig(client, cfg.Acquisition, logger.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("Run %s, types: %s", logger.RunID, strings.Join(cfg.Scanner.AircraftTypes, ", "))

	// Every reference must resolve; distances from a missing airport are meaningless
	var airports []provider.Airport
	for _, code := range cfg.Scanner.ReferenceAirports {
		a, err := fetcher.Airport(ctx, code)
		if err != nil {
			log.Fatalf("Reference airport %s: %v", code, err)
		}
		log.Printf("  ✓ %s: %s (%.4f°, %.4f°)", a.IATA, a.Name, a.Latitude, a.Longitude)
		airports = append(airports, *a)
	}

	s, err := scanner.New(client, airports, scanner.Options{
		Concurrency: cfg.Scanner.Concurrency,
		Bounds:      cfg.Scanner.Bound(),
		Retry:       acquire.NewRetryConfig(cfg.Acquisition, logger.Logger),
	}, logger.Logger)
	if err != nil {
		log.Fatalf("Failed to create scanner: %v", err)
	}

	res, err := s.Scan(ctx, cfg.Scanner.AircraftTypes)
	if err != nil {
		log.Fatalf("Scan aborted: %v", err)
	}

	report.Aircraft(os.Stdout, res.Aircraft)
	report.MissingTypes(os.Stdout, res.Missing)
}
