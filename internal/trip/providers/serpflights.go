package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weekend-getaway-finder/internal/common"
	"github.com/i474232898/weekend-getaway-finder/internal/trip"
)

// SerpFlightsProvider implements trip.FlightProvider on top of SerpAPI's
// Google Flights engine.
type SerpFlightsProvider struct {
	name    string
	baseURL string
	apiKey  string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewSerpFlightsProvider(client *http.Client, apiKey string) *SerpFlightsProvider {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "serpapi-flights",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &SerpFlightsProvider{
		name:    "serpapi-flights",
		baseURL: "https://serpapi.com/search.json",
		apiKey:  apiKey,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: defaultBackoff(),
		},
		circuit: cb,
	}
}

func (p *SerpFlightsProvider) Name() string {
	return p.name
}

// FetchQuotes requests round-trip fares for the weekend. Options the engine
// returns as one-way anyway are passed through with empty return-leg fields
// so validation can drop and count them.
func (p *SerpFlightsProvider) FetchQuotes(ctx context.Context, origin, destination string, departure, ret time.Time) ([]trip.RawQuote, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("engine", "google_flights")
		values.Set("departure_id", origin)
		values.Set("arrival_id", destination)
		values.Set("outbound_date", departure.Format("2006-01-02"))
		values.Set("return_date", ret.Format("2006-01-02"))
		// type=1 is an explicit round-trip search.
		values.Set("type", "1")
		values.Set("currency", "EUR")
		values.Set("api_key", p.apiKey)

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		BestFlights  []serpFlightOption `json:"best_flights"`
		OtherFlights []serpFlightOption `json:"other_flights"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	options := append(payload.BestFlights, payload.OtherFlights...)
	quotes := make([]trip.RawQuote, 0, len(options))
	for _, opt := range options {
		quotes = append(quotes, opt.toRawQuote(ret))
	}
	return quotes, nil
}

type serpFlightOption struct {
	Flights []struct {
		DepartureAirport struct {
			ID   string `json:"id"`
			Time string `json:"time"`
		} `json:"departure_airport"`
		ArrivalAirport struct {
			ID   string `json:"id"`
			Time string `json:"time"`
		} `json:"arrival_airport"`
		Airline  string `json:"airline"`
		Duration int    `json:"duration"`
	} `json:"flights"`
	Layovers []struct {
		ID string `json:"id"`
	} `json:"layovers"`
	TotalDuration int         `json:"total_duration"`
	Price         json.Number `json:"price"`
	Type          string      `json:"type"`
}

func (o serpFlightOption) toRawQuote(ret time.Time) trip.RawQuote {
	q := trip.RawQuote{
		Price:           o.Price.String(),
		DurationMinutes: o.TotalDuration,
		Layovers:        len(o.Layovers),
	}

	if len(o.Flights) > 0 {
		first := o.Flights[0]
		last := o.Flights[len(o.Flights)-1]
		q.Airline = first.Airline
		q.DepartureTime = first.DepartureAirport.Time
		q.ArrivalTime = last.ArrivalAirport.Time
		q.Origin = first.DepartureAirport.ID
		q.Destination = last.ArrivalAirport.ID
	}

	// The engine sometimes answers a round-trip search with one-way
	// itineraries; only mark the return leg when the option says round trip.
	if common.HasAny(strings.ToLower(o.Type), "round") {
		q.ReturnDepartureTime = ret.Format("2006-01-02")
		q.ReturnArrivalTime = ret.Format("2006-01-02")
	}

	return q
}
