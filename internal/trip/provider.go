package trip

import (
	"context"
	"time"
)

// FlightProvider abstracts the flight quote source (e.g. SerpAPI Google
// Flights). Implementations must request round-trip fares explicitly.
type FlightProvider interface {
	Name() string
	FetchQuotes(ctx context.Context, origin, destination string, departure, ret time.Time) ([]RawQuote, error)
}

// WeatherProvider abstracts the historical weather source (e.g. Open-Meteo
// archive). It returns daily observations for the given calendar month over
// the past years.
type WeatherProvider interface {
	Name() string
	FetchHistorical(ctx context.Context, destination string, month time.Month, years int) ([]DailyObservation, error)
}

// PriceProvider abstracts the historical price statistics source (e.g.
// Amadeus itinerary price metrics). A (nil, nil) return means no
// distribution exists for the route, which is not an error.
type PriceProvider interface {
	Name() string
	FetchDistribution(ctx context.Context, origin, destination string, departure time.Time) (*PriceDistribution, error)
}

// HistoryLog is the contract the in-memory search history (and any future
// persistent log) must satisfy. The log is append-only; completed searches
// are recorded as data, never mutated.
type HistoryLog interface {
	Append(result SearchResult)
	Recent(limit int) []SearchResult
	ByRoute(origin, destination string, limit int) ([]SearchResult, error)
}
