package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weekend-getaway-finder/internal/trip"
)

// OpenMeteoProvider implements trip.WeatherProvider using Open-Meteo's
// historical archive API. Destination names are resolved to coordinates via
// the Google geocoder when an API key is configured, falling back to
// Open-Meteo's own geocoding API otherwise.
type OpenMeteoProvider struct {
	name         string
	archiveURL   string
	geocodingURL string
	googleAPIKey string
	httpCfg      HTTPClientConfig
	circuit      *gobreaker.CircuitBreaker

	mu     sync.Mutex
	coords map[string]coordinates
}

type coordinates struct {
	Lat float64
	Lon float64
}

func NewOpenMeteoProvider(client *http.Client, googleAPIKey string) *OpenMeteoProvider {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openmeteo-archive",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &OpenMeteoProvider{
		name:         "openmeteo-archive",
		archiveURL:   "https://archive-api.open-meteo.com/v1/archive",
		geocodingURL: "https://geocoding-api.open-meteo.com/v1/search",
		googleAPIKey: googleAPIKey,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: defaultBackoff(),
		},
		circuit: cb,
		coords:  make(map[string]coordinates),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// FetchHistorical returns daily observations for the destination's month
// over each of the past `years` years. A failed year is logged and skipped;
// only all years failing is an error.
func (p *OpenMeteoProvider) FetchHistorical(ctx context.Context, destination string, month time.Month, years int) ([]trip.DailyObservation, error) {
	coords, err := p.resolveCoordinates(ctx, destination)
	if err != nil {
		return nil, err
	}

	currentYear := time.Now().UTC().Year()
	var observations []trip.DailyObservation

	for offset := 1; offset <= years; offset++ {
		year := currentYear - offset

		obs, err := p.fetchMonth(ctx, coords, year, month)
		if err != nil {
			log.Printf("openmeteo: failed to fetch %d-%02d for %s: %v", year, month, destination, err)
			continue
		}
		observations = append(observations, obs...)
	}

	if len(observations) == 0 {
		return nil, fmt.Errorf("failed to fetch weather data for all %d years", years)
	}

	return observations, nil
}

func (p *OpenMeteoProvider) fetchMonth(ctx context.Context, coords coordinates, year int, month time.Month) ([]trip.DailyObservation, error) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", coords.Lat))
		values.Set("longitude", fmt.Sprintf("%f", coords.Lon))
		values.Set("start_date", first.Format("2006-01-02"))
		values.Set("end_date", last.Format("2006-01-02"))
		values.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_sum")
		values.Set("timezone", "UTC")

		u := fmt.Sprintf("%s?%s", p.archiveURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Daily struct {
			Time    []string   `json:"time"`
			TempMax []*float64 `json:"temperature_2m_max"`
			TempMin []*float64 `json:"temperature_2m_min"`
			Precip  []*float64 `json:"precipitation_sum"`
		} `json:"daily"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	obs := make([]trip.DailyObservation, 0, len(payload.Daily.Time))
	for i, day := range payload.Daily.Time {
		date, err := time.Parse("2006-01-02", day)
		if err != nil {
			continue
		}
		// The archive returns nulls for days it has no data; skip those
		// rather than inventing readings.
		if i >= len(payload.Daily.TempMax) || payload.Daily.TempMax[i] == nil ||
			i >= len(payload.Daily.TempMin) || payload.Daily.TempMin[i] == nil {
			continue
		}

		o := trip.DailyObservation{
			Date:     date,
			MaxTempC: *payload.Daily.TempMax[i],
			MinTempC: *payload.Daily.TempMin[i],
		}
		if i < len(payload.Daily.Precip) && payload.Daily.Precip[i] != nil {
			o.PrecipMM = *payload.Daily.Precip[i]
		}
		obs = append(obs, o)
	}

	return obs, nil
}

func (p *OpenMeteoProvider) resolveCoordinates(ctx context.Context, destination string) (coordinates, error) {
	p.mu.Lock()
	if c, ok := p.coords[destination]; ok {
		p.mu.Unlock()
		return c, nil
	}
	p.mu.Unlock()

	var (
		c   coordinates
		err error
	)
	if p.googleAPIKey != "" {
		c, err = p.geocodeGoogle(destination)
	} else {
		c, err = p.geocodeOpenMeteo(ctx, destination)
	}
	if err != nil {
		return coordinates{}, err
	}

	p.mu.Lock()
	p.coords[destination] = c
	p.mu.Unlock()
	return c, nil
}

func (p *OpenMeteoProvider) geocodeGoogle(destination string) (coordinates, error) {
	geocoder.ApiKey = p.googleAPIKey

	loc, err := geocoder.Geocoding(geocoder.Address{City: destination})
	if err != nil {
		return coordinates{}, fmt.Errorf("google geocoding failed for %s: %w", destination, err)
	}
	return coordinates{Lat: loc.Latitude, Lon: loc.Longitude}, nil
}

func (p *OpenMeteoProvider) geocodeOpenMeteo(ctx context.Context, destination string) (coordinates, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("name", destination)
		values.Set("count", "1")
		values.Set("language", "en")
		values.Set("format", "json")

		u := fmt.Sprintf("%s?%s", p.geocodingURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return coordinates{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Results []struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"results"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return coordinates{}, err
	}
	if len(payload.Results) == 0 {
		return coordinates{}, fmt.Errorf("destination %q not found", destination)
	}

	return coordinates{
		Lat: payload.Results[0].Latitude,
		Lon: payload.Results[0].Longitude,
	}, nil
}
