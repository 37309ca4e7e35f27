package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/unklstewy/flightwindow/pkg/config"
)

const (
	// DefaultAPIBaseURL serves airport pages and schedules
	DefaultAPIBaseURL = "https://api.flightradar24.com/common/v1"

	// DefaultFeedBaseURL serves the live flight feed
	DefaultFeedBaseURL = "https://data-cloud.flightradar24.com/zones/fcgi"

	// DefaultSearchBaseURL serves the web search
	DefaultSearchBaseURL = "https://www.flightradar24.com/v1/search/web"

	// DefaultTimeout for API requests
	DefaultTimeout = 15 * time.Second

	// MaxPageSize is the largest schedule page the provider serves
	MaxPageSize = 100
)

var errNotFound = errors.New("not found")

// Config contains configuration for the provider client.
type Config struct {
	APIBaseURL    string
	FeedBaseURL   string
	SearchBaseURL string
	UserAgent     string
	Timeout       time.Duration

	// AirportCacheSize and AirportCacheTTL bound the GetAirport cache.
	// A size of 0 disables caching.
	AirportCacheSize int
	AirportCacheTTL  time.Duration
}

// Client implements Source over HTTP.
type Client struct {
	apiBaseURL    string
	feedBaseURL   string
	searchBaseURL string
	userAgent     string
	httpClient    *http.Client
	airports      *expirable.LRU[string, *Airport]
}

// NewClient creates a new provider client. Empty URLs fall back to the
// public endpoints.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	if cfg.FeedBaseURL == "" {
		cfg.FeedBaseURL = DefaultFeedBaseURL
	}
	if cfg.SearchBaseURL == "" {
		cfg.SearchBaseURL = DefaultSearchBaseURL
	}

	c := &Client{
		apiBaseURL:    strings.TrimRight(cfg.APIBaseURL, "/"),
		feedBaseURL:   strings.TrimRight(cfg.FeedBaseURL, "/"),
		searchBaseURL: strings.TrimRight(cfg.SearchBaseURL, "/"),
		userAgent:     cfg.UserAgent,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
	if cfg.AirportCacheSize > 0 {
		c.airports = expirable.NewLRU[string, *Airport](cfg.AirportCacheSize, nil, cfg.AirportCacheTTL)
	}
	return c
}

// NewClientFromConfig creates a client from the provider settings.
func NewClientFromConfig(p config.ProviderConfig) *Client {
	return NewClient(Config{
		APIBaseURL:       p.APIBaseURL,
		FeedBaseURL:      p.FeedBaseURL,
		SearchBaseURL:    p.SearchBaseURL,
		UserAgent:        p.UserAgent,
		Timeout:          p.Timeout(),
		AirportCacheSize: p.AirportCacheSize,
		AirportCacheTTL:  time.Duration(p.AirportCacheTTLMinutes) * time.Minute,
	})
}

// GetAirportDetails returns one page of an airport's schedule.
// Uses the airport.json endpoint with the schedule plugin.
func (c *Client) GetAirportDetails(ctx context.Context, code string, pageSize, page int) (*AirportDetails, error) {
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if page < 1 {
		page = 1
	}

	q := url.Values{}
	q.Set("code", strings.ToLower(code))
	q.Add("plugin[]", "schedule")
	q.Set("plugin-setting[schedule][mode]", "")
	q.Set("plugin-setting[schedule][timestamp]", strconv.FormatInt(time.Now().Unix(), 10))
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(pageSize))

	var resp airportResponse
	if err := c.getJSON(ctx, c.apiBaseURL+"/airport.json?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("airport %s page %d: %w", code, page, err)
	}

	plugin := resp.Result.Response.Airport.PluginData
	if plugin.Schedule == nil {
		return &AirportDetails{}, nil
	}
	return &AirportDetails{Schedule: *plugin.Schedule}, nil
}

// GetAirport returns an airport's identifiers and position.
// Uses the airport.json endpoint with the details plugin.
func (c *Client) GetAirport(ctx context.Context, code string) (*Airport, error) {
	key := strings.ToUpper(code)
	if c.airports != nil {
		if a, ok := c.airports.Get(key); ok {
			return a, nil
		}
	}

	q := url.Values{}
	q.Set("code", strings.ToLower(code))
	q.Add("plugin[]", "details")

	var resp airportResponse
	err := c.getJSON(ctx, c.apiBaseURL+"/airport.json?"+q.Encode(), &resp)
	if errors.Is(err, errNotFound) {
		return nil, fmt.Errorf("%s: %w", key, ErrAirportNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("airport %s: %w", key, err)
	}

	d := resp.Result.Response.Airport.PluginData.Details
	if d == nil || d.Position.Latitude == nil || d.Position.Longitude == nil {
		return nil, fmt.Errorf("%s: %w", key, ErrAirportNotFound)
	}

	a := &Airport{
		IATA:        d.Code.IATA,
		ICAO:        d.Code.ICAO,
		Name:        d.Name,
		CountryName: d.Position.Country.Name,
		City:        d.Position.Region.City,
		Latitude:    *d.Position.Latitude,
		Longitude:   *d.Position.Longitude,
	}
	if a.IATA == "" {
		a.IATA = key
	}
	if c.airports != nil {
		c.airports.Add(key, a)
	}
	return a, nil
}

// GetFlights returns live flights from the zone feed.
func (c *Client) GetFlights(ctx context.Context, filter FlightFilter) ([]LiveFlight, error) {
	q := url.Values{}
	for _, flag := range []string{"faa", "satellite", "mlat", "flarm", "adsb", "gnd", "air", "vehicles", "estimated", "gliders", "stats"} {
		q.Set(flag, "1")
	}
	q.Set("maxage", "14400")
	q.Set("limit", "5000")
	if filter.AircraftType != "" {
		q.Set("type", filter.AircraftType)
	}
	if filter.Airline != "" {
		q.Set("airline", filter.Airline)
	}
	if filter.Registration != "" {
		q.Set("reg", filter.Registration)
	}
	if b := filter.Bounds; b != nil {
		// north,south,west,east
		q.Set("bounds", fmt.Sprintf("%.3f,%.3f,%.3f,%.3f", b.Max.Lat(), b.Min.Lat(), b.Min.Lon(), b.Max.Lon()))
	}

	body, err := c.get(ctx, c.feedBaseURL+"/feed.js?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("live feed: %w", err)
	}
	flights, err := parseFeed(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse live feed: %w", err)
	}
	return flights, nil
}

// Search runs the provider's web search.
func (c *Client) Search(ctx context.Context, query string) (*SearchResult, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("limit", "50")

	var resp struct {
		Results []SearchHit `json:"results"`
	}
	if err := c.getJSON(ctx, c.searchBaseURL+"/find?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	out := &SearchResult{}
	for _, hit := range resp.Results {
		switch hit.Type {
		case "live":
			out.Live = append(out.Live, hit)
		case "schedule":
			out.Schedule = append(out.Schedule, hit)
		}
	}
	return out, nil
}

// Close cleanly shuts down the client.
// There are no persistent connections beyond the HTTP transport's pool.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	body, err := c.get(ctx, u)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse API response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, newRateLimitError(resp)
	case resp.StatusCode == http.StatusNotFound:
		return nil, errNotFound
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

// airportResponse is the airport.json envelope.
type airportResponse struct {
	Result struct {
		Response struct {
			Airport struct {
				PluginData struct {
					Schedule *Schedule     `json:"schedule"`
					Details  *airportEntry `json:"details"`
				} `json:"pluginData"`
			} `json:"airport"`
		} `json:"response"`
	} `json:"result"`
}

type airportEntry struct {
	Name     string   `json:"name"`
	Code     Codes    `json:"code"`
	Position Position `json:"position"`
}
