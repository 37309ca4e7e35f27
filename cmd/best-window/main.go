package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/unklstewy/flightwindow/internal/acquire"
	"github.com/unklstewy/flightwindow/internal/flights"
	"github.com/unklstewy/flightwindow/internal/logging"
	"github.com/unklstewy/flightwindow/internal/report"
	"github.com/unklstewy/flightwindow/internal/window"
	"github.com/unklstewy/flightwindow/pkg/config"
	"github.com/unklstewy/flightwindow/pkg/provider"
)

// best-window finds the 30-minute windows with the most distinct
// destinations (forward: departures from one airport) or origins
// (backward: arrivals at one or more airports).
func main() {
	configPath := flag.String("config", "configs/config.json", "Path to configuration file")
	mode := flag.String("mode", "forward", "forward (departures by destination) or backward (arrivals by origin)")
	source := flag.String("source", "", "Source airport for forward mode (overrides config)")
	targets := flag.String("targets", "", "Comma separated target airports for backward mode (overrides config)")
	onlyToday := flag.Bool("only-today", false, "Only consider flights on the current calendar day")
	flag.Parse()

	log.Println("===========================================")
	log.Println("  Best Flight Window")
	log.Println("===========================================")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *source != "" {
		cfg.Analysis.SourceAirport = strings.ToUpper(*source)
	}
	if *targets != "" {
		cfg.Analysis.TargetAirports = config.ParseCodes(*targets)
	}
	if *onlyToday {
		cfg.Analysis.OnlyToday = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	loc, _ := cfg.Analysis.Location()

	logger := logging.New(cfg.Logging.Level, cfg.Logging.File)
	defer logger.Close()

	client := provider.NewClientFromConfig(cfg.Provider)
	defer client.Close()
	fetcher := acquire.NewFetcherFromConfig(client, cfg.Acquisition, logger.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	now := time.Now().In(loc)
	log.Printf("Run %s, %s mode, only today: %v", logger.RunID, *mode, cfg.Analysis.OnlyToday)

	switch *mode {
	case "forward":
		code := cfg.Analysis.SourceAirport
		if code == "" {
			log.Fatal("Error: No source airport configured")
		}
		log.Printf("Fetching departures from %s...", code)

		entries, err := fetcher.FetchDepartures(ctx, code)
		if err != nil {
			logger.Error("departures unavailable", "airport", code, "error", err)
		}
		if cfg.Analysis.OnlyToday {
			entries = flights.OnlyToday(entries, now)
		}
		log.Printf("✓ %d departures", len(entries))

		windows := window.FindBest(entries, flights.DestinationKey, now)
		report.Windows(os.Stdout, "Most destinations from "+code, windows, report.DescribeDeparture, loc)

	case "backward":
		codes := cfg.Analysis.TargetAirports
		if len(codes) == 0 {
			log.Fatal("Error: No target airports configured")
		}
		log.Printf("Fetching arrivals at %s...", strings.Join(codes, ", "))

		entries := fetcher.FetchAllArrivals(ctx, codes)
		if cfg.Analysis.OnlyToday {
			entries = flights.OnlyToday(entries, now)
		}
		log.Printf("✓ %d arrivals", len(entries))

		windows := window.FindBest(entries, flights.OriginKey, now)
		report.Windows(os.Stdout, "Most origins into "+strings.Join(codes, ", "), windows, report.DescribeArrival, loc)

	default:
		log.Fatalf("Unknown mode %q (want forward or backward)", *mode)
	}
}
