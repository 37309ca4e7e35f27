package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata" // time zones resolve on hosts without zoneinfo

	"github.com/paulmach/orb"
)

// ErrInvalid is returned by Validate when a setting cannot be used.
var ErrInvalid = errors.New("invalid configuration")

// Config represents the complete batch job configuration.
// Command-line flags may override individual values per invocation.
type Config struct {
	Provider    ProviderConfig    `json:"provider"`
	Acquisition AcquisitionConfig `json:"acquisition"`
	Analysis    AnalysisConfig    `json:"analysis"`
	Scanner     ScannerConfig     `json:"scanner"`
	Logging     LoggingConfig     `json:"logging"`
}

// ProviderConfig contains flight-data provider endpoints.
type ProviderConfig struct {
	// APIBaseURL serves airport details and schedules
	// (default: https://api.flightradar24.com/common/v1)
	APIBaseURL string `json:"api_base_url"`

	// FeedBaseURL serves the live flight feed
	// (default: https://data-cloud.flightradar24.com/zones/fcgi)
	FeedBaseURL string `json:"feed_base_url"`

	// SearchBaseURL serves the web search endpoint
	// (default: https://www.flightradar24.com/v1/search/web)
	SearchBaseURL string `json:"search_base_url"`

	// UserAgent is sent with every request; the provider rejects empty agents
	UserAgent string `json:"user_agent"`

	// TimeoutSeconds bounds a single HTTP request
	TimeoutSeconds int `json:"timeout_seconds"`

	// AirportCacheSize is the number of airport lookups kept in memory
	AirportCacheSize int `json:"airport_cache_size"`

	// AirportCacheTTLMinutes expires cached airport lookups
	AirportCacheTTLMinutes int `json:"airport_cache_ttl_minutes"`
}

// AcquisitionConfig controls pagination, pacing and retry behavior.
type AcquisitionConfig struct {
	// PageSize is the number of schedule rows requested per page (provider max: 100)
	PageSize int `json:"page_size"`

	// DelayBetweenCallsMs is the minimum gap between two provider calls.
	// Applied to every page and every airport.
	DelayBetweenCallsMs int `json:"delay_between_calls_ms"`

	// MaxAttempts is the total number of tries for a rate-limited call
	MaxAttempts int `json:"max_attempts"`

	// BaseBackoffMs is the delay before the first retry
	BaseBackoffMs int `json:"base_backoff_ms"`

	// BackoffMultiplier grows the delay between retries (default: 2.0)
	BackoffMultiplier float64 `json:"backoff_multiplier"`

	// MaxBackoffMs caps a single retry delay
	MaxBackoffMs int `json:"max_backoff_ms"`

	// Adaptive configures the self-tuning throttle used for route lookups
	Adaptive AdaptiveConfig `json:"adaptive"`
}

// AdaptiveConfig configures the adaptive inter-call throttle.
type AdaptiveConfig struct {
	FloorDelayMs int     `json:"floor_delay_ms"`
	CapDelayMs   int     `json:"cap_delay_ms"`
	CooldownMs   int     `json:"cooldown_ms"`
	DecayFactor  float64 `json:"decay_factor"`
}

// AnalysisConfig holds the airports an invocation works on.
type AnalysisConfig struct {
	// SourceAirport is the IATA code for forward (departure) lookups
	SourceAirport string `json:"source_airport"`

	// TargetAirports are IATA codes for backward (arrival) lookups and
	// diversity ranking
	TargetAirports []string `json:"target_airports"`

	// ReferenceAirport is the origin of distance ranking
	ReferenceAirport string `json:"reference_airport"`

	// OnlyToday restricts analysis to flights on the current calendar day
	OnlyToday bool `json:"only_today"`

	// TimeZone is the IANA zone used to decide what "today" is
	TimeZone string `json:"timezone"`
}

// ScannerConfig configures the aircraft type scanner.
type ScannerConfig struct {
	// AircraftTypes are ICAO type designators to look for (e.g. "A388", "B748")
	AircraftTypes []string `json:"aircraft_types"`

	// ReferenceAirports are IATA codes distances are measured from
	ReferenceAirports []string `json:"reference_airports"`

	// Concurrency is the number of in-flight provider requests (default: 5)
	Concurrency int `json:"concurrency"`

	// Bounds optionally limits the live feed to a box
	Bounds *BoundsConfig `json:"bounds,omitempty"`
}

// BoundsConfig is a latitude/longitude box in decimal degrees.
type BoundsConfig struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	West  float64 `json:"west"`
	East  float64 `json:"east"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error
	Level string `json:"level"`

	// File is an optional rotated log file; empty logs to stderr only
	File string `json:"file"`
}

// Load reads configuration from a JSON file.
// If the file doesn't exist, returns a default configuration.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnvironmentOverrides()
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start from defaults so partial files keep sensible values
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	return cfg, nil
}

// Save writes the configuration to a JSON file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			APIBaseURL:             "https://api.flightradar24.com/common/v1",
			FeedBaseURL:            "https://data-cloud.flightradar24.com/zones/fcgi",
			SearchBaseURL:          "https://www.flightradar24.com/v1/search/web",
			UserAgent:              "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
			TimeoutSeconds:         15,
			AirportCacheSize:       256,
			AirportCacheTTLMinutes: 60,
		},
		Acquisition: AcquisitionConfig{
			PageSize:            100,
			DelayBetweenCallsMs: 1000,
			MaxAttempts:         3,
			BaseBackoffMs:       2000,
			BackoffMultiplier:   2.0,
			MaxBackoffMs:        60000,
			Adaptive: AdaptiveConfig{
				FloorDelayMs: 1000,
				CapDelayMs:   30000,
				CooldownMs:   60000,
				DecayFactor:  0.9,
			},
		},
		Analysis: AnalysisConfig{
			SourceAirport:    "HAM",
			TargetAirports:   []string{"HAM"},
			ReferenceAirport: "HAM",
			OnlyToday:        false,
			TimeZone:         "Local",
		},
		Scanner: ScannerConfig{
			AircraftTypes:     []string{"A388", "B748", "A124", "AN22", "BLCF"},
			ReferenceAirports: []string{"HAM"},
			Concurrency:       5,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	if c.Acquisition.PageSize <= 0 || c.Acquisition.PageSize > 100 {
		return fmt.Errorf("%w: acquisition.page_size must be 1-100, got %d", ErrInvalid, c.Acquisition.PageSize)
	}
	if c.Acquisition.MaxAttempts < 1 {
		return fmt.Errorf("%w: acquisition.max_attempts must be at least 1", ErrInvalid)
	}
	if c.Acquisition.BackoffMultiplier < 1 {
		return fmt.Errorf("%w: acquisition.backoff_multiplier must be >= 1", ErrInvalid)
	}
	if c.Acquisition.DelayBetweenCallsMs < 0 {
		return fmt.Errorf("%w: acquisition.delay_between_calls_ms must not be negative", ErrInvalid)
	}
	a := c.Acquisition.Adaptive
	if a.FloorDelayMs < 0 || a.CapDelayMs < a.FloorDelayMs {
		return fmt.Errorf("%w: acquisition.adaptive needs 0 <= floor <= cap", ErrInvalid)
	}
	if a.DecayFactor <= 0 || a.DecayFactor > 1 {
		return fmt.Errorf("%w: acquisition.adaptive.decay_factor must be in (0, 1]", ErrInvalid)
	}
	if c.Scanner.Concurrency < 1 {
		return fmt.Errorf("%w: scanner.concurrency must be at least 1", ErrInvalid)
	}
	if b := c.Scanner.Bounds; b != nil && (b.North <= b.South || b.East <= b.West) {
		return fmt.Errorf("%w: scanner.bounds must have north > south and east > west", ErrInvalid)
	}
	if _, err := c.Analysis.Location(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Location resolves TimeZone; empty or "Local" means the host zone.
func (a *AnalysisConfig) Location() (*time.Location, error) {
	if a.TimeZone == "" || a.TimeZone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(a.TimeZone)
}

// DelayBetweenCalls returns the pacing interval as a duration.
func (a *AcquisitionConfig) DelayBetweenCalls() time.Duration {
	return time.Duration(a.DelayBetweenCallsMs) * time.Millisecond
}

// Bound returns the scanner box, or nil when no bounds are configured.
func (s *ScannerConfig) Bound() *orb.Bound {
	if s.Bounds == nil {
		return nil
	}
	return &orb.Bound{
		Min: orb.Point{s.Bounds.West, s.Bounds.South},
		Max: orb.Point{s.Bounds.East, s.Bounds.North},
	}
}

// Timeout returns the per-request HTTP timeout.
func (p *ProviderConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// ParseCodes splits a comma separated list of airport or type codes,
// trimming blanks and upper-casing each entry.
func ParseCodes(s string) []string {
	var codes []string
	for _, part := range strings.Split(s, ",") {
		if code := strings.ToUpper(strings.TrimSpace(part)); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if url := os.Getenv("FLIGHTWINDOW_PROVIDER_URL"); url != "" {
		c.Provider.APIBaseURL = url
	}
	if level := os.Getenv("FLIGHTWINDOW_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if file := os.Getenv("FLIGHTWINDOW_LOG_FILE"); file != "" {
		c.Logging.File = file
	}
}
