package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// TrackedRoute is an origin/destination pair the scheduler re-searches on
// an interval.
type TrackedRoute struct {
	Origin      string
	Destination string
}

type AppConfig struct {
	SerpAPIKey          string
	AmadeusClientID     string
	AmadeusClientSecret string
	GoogleGeocoderKey   string

	// HTTPTimeout applies to the shared outbound HTTP client;
	// CallTimeout bounds each provider call inside a search.
	HTTPTimeout time.Duration
	CallTimeout time.Duration

	// SearchConcurrency bounds how many weekends a search processes at once.
	SearchConcurrency int

	// WeatherYears is how many years of history the month summaries cover.
	WeatherYears int

	// SchedulerInterval controls how often tracked routes are re-searched;
	// SchedulerWindowDays is how far ahead each scheduled search looks.
	SchedulerInterval   time.Duration
	SchedulerWindowDays int

	// Routes the scheduler keeps fresh.
	TrackedRoutes []TrackedRoute

	// Search history retention.
	HistoryMaxEntries int           // max searches kept per route (0 = unlimited)
	HistoryMaxAge     time.Duration // max age of kept searches (0 = unlimited)

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.SerpAPIKey = os.Getenv("SERPAPI_API_KEY")
	cfg.AmadeusClientID = os.Getenv("AMADEUS_CLIENT_ID")
	cfg.AmadeusClientSecret = os.Getenv("AMADEUS_CLIENT_SECRET")
	cfg.GoogleGeocoderKey = os.Getenv("GOOGLE_GEOCODER_API_KEY")

	httpTimeout, err := getenvDuration("HTTP_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	cfg.HTTPTimeout = httpTimeout

	callTimeout, err := getenvDuration("CALL_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	cfg.CallTimeout = callTimeout

	cfg.SearchConcurrency = getenvInt("SEARCH_CONCURRENCY", 4)
	cfg.WeatherYears = getenvInt("WEATHER_YEARS", 5)

	interval, err := getenvDuration("SCHEDULER_INTERVAL", "6h")
	if err != nil {
		return nil, err
	}
	cfg.SchedulerInterval = interval
	cfg.SchedulerWindowDays = getenvInt("SCHEDULER_WINDOW_DAYS", 60)

	routes, err := loadTrackedRoutes()
	if err != nil {
		return nil, err
	}
	cfg.TrackedRoutes = routes

	// History retention.
	cfg.HistoryMaxEntries = getenvInt("HISTORY_MAX_ENTRIES", 50)

	maxAge, err := getenvDuration("HISTORY_MAX_AGE", "168h")
	if err != nil {
		return nil, err
	}
	cfg.HistoryMaxAge = maxAge

	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

// loadTrackedRoutes parses TRACKED_ROUTES, a comma-separated list of
// ORIGIN-DESTINATION IATA pairs, e.g. "MAD-BCN,MAD-LIS".
func loadTrackedRoutes() ([]TrackedRoute, error) {
	raw := os.Getenv("TRACKED_ROUTES")
	if raw == "" {
		return nil, nil
	}

	var routes []TrackedRoute
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.Split(strings.TrimSpace(pair), "-")
		if len(parts) != 2 || len(parts[0]) != 3 || len(parts[1]) != 3 {
			return nil, fmt.Errorf("invalid tracked route %q; expected ORIGIN-DESTINATION IATA pair", pair)
		}
		routes = append(routes, TrackedRoute{
			Origin:      strings.ToUpper(parts[0]),
			Destination: strings.ToUpper(parts[1]),
		})
	}

	return routes, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
