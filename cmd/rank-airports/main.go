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
	"github.com/unklstewy/flightwindow/internal/ranking"
	"github.com/unklstewy/flightwindow/internal/report"
	"github.com/unklstewy/flightwindow/pkg/config"
	"github.com/unklstewy/flightwindow/pkg/coordinates"
	"github.com/unklstewy/flightwindow/pkg/provider"
)

// rank-airports ranks airports either by distance of the origins flying
// into the target airports, or by how many distinct destinations each
// target airport serves.
func main() {
	configPath := flag.String("config", "configs/config.json", "Path to configuration file")
	mode := flag.String("mode", "distance", "distance (origins by distance from reference) or diversity (airports by destinations)")
	reference := flag.String("reference", "", "Reference airport for distance mode (overrides config)")
	targets := flag.String("targets", "", "Comma separated airports to fetch (overrides config)")
	onlyToday := flag.Bool("only-today", false, "Only consider flights on the current calendar day")
	writeConfig := flag.Bool("write-config", false, "Write the effective configuration back to -config and exit")
	flag.Parse()

	log.Println("===========================================")
	log.Println("  Airport Ranking")
	log.Println("===========================================")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *reference != "" {
		cfg.Analysis.ReferenceAirport = strings.ToUpper(*reference)
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
	if *writeConfig {
		if err := cfg.Save(*configPath); err != nil {
			log.Fatalf("Failed to save configuration: %v", err)
		}
		log.Printf("✓ Configuration written to %s", *configPath)
		return
	}
	if len(cfg.Analysis.TargetAirports) == 0 {
		log.Fatal("Error: No target airports configured")
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
	codes := cfg.Analysis.TargetAirports
	log.Printf("Run %s, %s mode, airports: %s", logger.RunID, *mode, strings.Join(codes, ", "))

	switch *mode {
	case "distance":
		ref, err := fetcher.Airport(ctx, cfg.Analysis.ReferenceAirport)
		if err != nil {
			log.Fatalf("Reference airport %s: %v", cfg.Analysis.ReferenceAirport, err)
		}
		log.Printf("✓ Reference %s (%s) at %.4f°, %.4f°", ref.IATA, ref.Name, ref.Latitude, ref.Longitude)

		entries := fetcher.FetchAllArrivals(ctx, codes)
		if cfg.Analysis.OnlyToday {
			entries = flights.OnlyToday(entries, now)
		}
		log.Printf("✓ %d arrivals", len(entries))

		records := ranking.ByDistance(entries, coordinates.Geographic{Latitude: ref.Latitude, Longitude: ref.Longitude})
		report.DistanceRanking(os.Stdout, ref.IATA, records)

	case "diversity":
		boards := fetcher.FetchAllDepartures(ctx, codes)
		if cfg.Analysis.OnlyToday {
			for i := range boards {
				boards[i].Departures = flights.OnlyToday(boards[i].Departures, now)
			}
		}

		records := ranking.ByDiversity(boards, now)
		report.DiversityRanking(os.Stdout, records, loc)

	default:
		log.Fatalf("Unknown mode %q (want distance or diversity)", *mode)
	}
}
