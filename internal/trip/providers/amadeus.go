package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weekend-getaway-finder/internal/trip"
)

// AmadeusProvider implements trip.PriceProvider against the Amadeus
// itinerary price metrics API. Access tokens are obtained via the OAuth
// client-credentials flow and cached until shortly before expiry.
type AmadeusProvider struct {
	name         string
	baseURL      string
	clientID     string
	clientSecret string
	httpCfg      HTTPClientConfig
	circuit      *gobreaker.CircuitBreaker

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewAmadeusProvider(client *http.Client, clientID, clientSecret string) *AmadeusProvider {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "amadeus-price-metrics",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &AmadeusProvider{
		name:         "amadeus-price-metrics",
		baseURL:      "https://test.api.amadeus.com",
		clientID:     clientID,
		clientSecret: clientSecret,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: defaultBackoff(),
		},
		circuit: cb,
	}
}

func (p *AmadeusProvider) Name() string {
	return p.name
}

// FetchDistribution returns the historical price quartiles for the route
// and departure date, or (nil, nil) when Amadeus has no data for it.
func (p *AmadeusProvider) FetchDistribution(ctx context.Context, origin, destination string, departure time.Time) (*trip.PriceDistribution, error) {
	token, err := p.token(ctx)
	if err != nil {
		return nil, err
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("originIataCode", origin)
		values.Set("destinationIataCode", destination)
		values.Set("departureDate", departure.Format("2006-01-02"))
		values.Set("currencyCode", "EUR")
		values.Set("oneWay", "false")

		u := fmt.Sprintf("%s/v1/analytics/itinerary-price-metrics?%s", p.baseURL, values.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		if IsNotFound(err) {
			// No historical data for this route; a legitimate outcome.
			return nil, nil
		}
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Data []struct {
			PriceMetrics []struct {
				Amount          string `json:"amount"`
				QuartileRanking string `json:"quartileRanking"`
			} `json:"priceMetrics"`
		} `json:"data"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	if len(payload.Data) == 0 {
		return nil, nil
	}

	dist := &trip.PriceDistribution{Route: origin + "-" + destination}
	for _, m := range payload.Data[0].PriceMetrics {
		amount, err := strconv.ParseFloat(m.Amount, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed price metric amount %q: %w", m.Amount, err)
		}
		switch m.QuartileRanking {
		case "MINIMUM":
			dist.Min = amount
		case "FIRST":
			dist.Q1 = amount
		case "MEDIUM":
			dist.Median = amount
		case "THIRD":
			dist.Q3 = amount
		case "MAXIMUM":
			dist.Max = amount
		}
	}
	return dist, nil
}

// token returns a cached access token, refreshing it through the OAuth
// client-credentials endpoint when missing or about to expire.
func (p *AmadeusProvider) token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.accessToken != "" && time.Now().Before(p.tokenExpiry) {
		return p.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", p.clientID)
	form.Set("client_secret", p.clientSecret)

	buildRequest := func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodPost,
			p.baseURL+"/v1/security/oauth2/token",
			strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return "", fmt.Errorf("amadeus token request failed: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("amadeus token response missing access_token")
	}

	p.accessToken = payload.AccessToken
	// Refresh a minute early to avoid using a token mid-expiry.
	p.tokenExpiry = time.Now().Add(time.Duration(payload.ExpiresIn)*time.Second - time.Minute)
	return p.accessToken, nil
}
