package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/unklstewy/flightwindow/internal/acquire"
	"github.com/unklstewy/flightwindow/internal/logging"
	"github.com/unklstewy/flightwindow/internal/report"
	"github.com/unklstewy/flightwindow/pkg/config"
	"github.com/unklstewy/flightwindow/pkg/provider"
)

// find-routes searches flights between every source and target airport
// pair, slowing down on its own whenever the provider rate limits.
func main() {
	configPath := flag.String("config", "configs/config.json", "Path to configuration file")
	from := flag.String("from", "", "Comma separated source airports (default: analysis.source_airport)")
	to := flag.String("to", "", "Comma separated target airports (default: analysis.target_airports)")
	flag.Parse()

	log.Println("===========================================")
	log.Println("  Route Finder")
	log.Println("===========================================")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	sources := config.ParseCodes(*from)
	if len(sources) == 0 && cfg.Analysis.SourceAirport != "" {
		sources = []string{cfg.Analysis.SourceAirport}
	}
	targets := config.ParseCodes(*to)
	if len(targets) == 0 {
		targets = cfg.Analysis.TargetAirports
	}
	if len(sources) == 0 || len(targets) == 0 {
		log.Fatal("Error: Need at least one source and one target airport")
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.File)
	defer logger.Close()

	client := provider.NewClientFromConfig(cfg.Provider)
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := cfg.Acquisition.Adaptive
	log.Printf("Run %s, %d x %d pairs", logger.RunID, len(sources), len(targets))
	log.Printf("Adaptive delay: %d-%d ms, cooldown %d ms", a.FloorDelayMs, a.CapDelayMs, a.CooldownMs)

	throttle := acquire.NewAdaptiveThrottle(a)
	finder := acquire.NewRouteFinder(client, throttle, cfg.Acquisition.MaxAttempts, logger.Logger)

	results := finder.Find(ctx, sources, targets)
	report.Routes(os.Stdout, results)
}
