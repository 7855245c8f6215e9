package trip

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFlights struct {
	quotes map[string][]RawQuote // keyed by departure date
	errOn  map[string]error
}

func (f *fakeFlights) Name() string { return "fake-flights" }

func (f *fakeFlights) FetchQuotes(_ context.Context, _, _ string, departure, _ time.Time) ([]RawQuote, error) {
	key := departure.Format("2006-01-02")
	if err, ok := f.errOn[key]; ok {
		return nil, err
	}
	return f.quotes[key], nil
}

type fakeWeather struct {
	observations []DailyObservation
	err          error
	calls        int32
}

func (f *fakeWeather) Name() string { return "fake-weather" }

func (f *fakeWeather) FetchHistorical(context.Context, string, time.Month, int) ([]DailyObservation, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.observations, f.err
}

type fakePrices struct {
	dist *PriceDistribution
	err  error
}

func (f *fakePrices) Name() string { return "fake-prices" }

func (f *fakePrices) FetchDistribution(context.Context, string, string, time.Time) (*PriceDistribution, error) {
	return f.dist, f.err
}

type fakeHistory struct {
	mu      sync.Mutex
	results []SearchResult
}

func (f *fakeHistory) Append(r SearchResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, r)
}

func (f *fakeHistory) Recent(int) []SearchResult { return nil }

func (f *fakeHistory) ByRoute(string, string, int) ([]SearchResult, error) { return nil, nil }

func marchRequest() SearchRequest {
	return SearchRequest{
		Origin:      "MAD",
		Destination: "BCN",
		Range:       DateRange{Start: date(2025, 3, 1), End: date(2025, 3, 31)},
	}
}

func TestEngineSearch_FourWeekendsOneWithoutValidQuotes(t *testing.T) {
	flights := &fakeFlights{quotes: map[string][]RawQuote{
		"2025-03-07": {goodQuote("120", 0, 120)},
		"2025-03-14": {goodQuote("95", 1, 140)},
		// Only a malformed quote for the third weekend.
		"2025-03-21": {{Price: "n/a", Airline: "Iberia", Origin: "MAD", Destination: "BCN",
			DurationMinutes: 120, ReturnDepartureTime: "x", ReturnArrivalTime: "x"}},
		"2025-03-28": {goodQuote("210", 0, 110)},
	}}
	weather := &fakeWeather{observations: []DailyObservation{
		obs(2024, time.March, 7, 18, 8, 0),
		obs(2024, time.March, 8, 19, 9, 1.5),
	}}
	prices := &fakePrices{dist: &PriceDistribution{Route: "MAD-BCN", Q1: 100, Median: 150, Q3: 200}}
	history := &fakeHistory{}

	engine := NewEngine(flights, weather, prices, history, Options{Concurrency: 2})

	result, err := engine.Search(context.Background(), marchRequest())
	require.NoError(t, err)

	assert.Len(t, result.Records, 3)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, date(2025, 3, 21), result.Diagnostics[0].Weekend.Departure)
	assert.Equal(t, 4, len(result.Records)+len(result.Diagnostics))

	// Cheapest weekend first.
	assert.Equal(t, 95.0, result.Records[0].Flights.Flights[0].Price)
	assert.Equal(t, ClassCheap, result.Records[0].Price.Classification)
	assert.Equal(t, ClassTypical, result.Records[1].Price.Classification)
	assert.Equal(t, ClassExpensive, result.Records[2].Price.Classification)

	// One weather fetch for the single month, shared across records.
	assert.Equal(t, int32(1), atomic.LoadInt32(&weather.calls))
	for _, rec := range result.Records {
		assert.Same(t, result.Records[0].Weather, rec.Weather)
	}

	require.NotNil(t, result.Stats)
	assert.Equal(t, 3, result.Stats.TotalQuotes)

	require.Len(t, history.results, 1)
	assert.Equal(t, result.ID, history.results[0].ID)
}

func TestEngineSearch_InvalidRangeIsFatal(t *testing.T) {
	engine := NewEngine(&fakeFlights{}, nil, nil, nil, Options{})

	_, err := engine.Search(context.Background(), SearchRequest{
		Origin:      "MAD",
		Destination: "BCN",
		Range:       DateRange{Start: date(2025, 3, 31), End: date(2025, 3, 1)},
	})
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestEngineSearch_ZeroWeekendsIsValid(t *testing.T) {
	engine := NewEngine(&fakeFlights{}, nil, nil, nil, Options{})

	result, err := engine.Search(context.Background(), SearchRequest{
		Origin:      "MAD",
		Destination: "BCN",
		Range:       DateRange{Start: date(2025, 3, 3), End: date(2025, 3, 6)},
	})
	require.NoError(t, err)
	assert.Empty(t, result.Records)
	assert.Empty(t, result.Diagnostics)
	assert.Nil(t, result.Stats)
}

func TestEngineSearch_WeatherFailureIsIsolated(t *testing.T) {
	flights := &fakeFlights{quotes: map[string][]RawQuote{
		"2025-03-07": {goodQuote("120", 0, 120)},
		"2025-03-14": {goodQuote("95", 1, 140)},
		"2025-03-21": {goodQuote("150", 0, 130)},
		"2025-03-28": {goodQuote("210", 0, 110)},
	}}
	weather := &fakeWeather{err: errors.New("archive unavailable")}
	engine := NewEngine(flights, weather, &fakePrices{}, nil, Options{})

	result, err := engine.Search(context.Background(), marchRequest())
	require.NoError(t, err)

	// Records still come out, just without weather, and with unknown price
	// classification since the distribution is absent.
	assert.Len(t, result.Records, 4)
	for _, rec := range result.Records {
		assert.Nil(t, rec.Weather)
		assert.Equal(t, ClassUnknown, rec.Price.Classification)
	}
}

func TestEngineSearch_FlightFetchFailureIsIsolatedPerWeekend(t *testing.T) {
	flights := &fakeFlights{
		quotes: map[string][]RawQuote{
			"2025-03-07": {goodQuote("120", 0, 120)},
			"2025-03-14": {goodQuote("95", 1, 140)},
			"2025-03-28": {goodQuote("210", 0, 110)},
		},
		errOn: map[string]error{
			"2025-03-21": errors.New("upstream timeout"),
		},
	}
	engine := NewEngine(flights, nil, nil, nil, Options{Concurrency: 1})

	result, err := engine.Search(context.Background(), marchRequest())
	require.NoError(t, err)

	assert.Len(t, result.Records, 3)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, date(2025, 3, 21), result.Diagnostics[0].Weekend.Departure)
	assert.Contains(t, result.Diagnostics[0].Reason, "upstream timeout")
}

func TestEngineSearch_LongWeekends(t *testing.T) {
	flights := &fakeFlights{quotes: map[string][]RawQuote{}}
	engine := NewEngine(flights, nil, nil, nil, Options{})

	result, err := engine.Search(context.Background(), SearchRequest{
		Origin:       "MAD",
		Destination:  "BCN",
		Range:        DateRange{Start: date(2025, 3, 1), End: date(2025, 3, 31)},
		LongWeekends: true,
	})
	require.NoError(t, err)

	// Fri 28 + Mon 31 is the last qualifying long weekend; all four Fridays
	// have a Monday inside the range.
	assert.Len(t, result.Diagnostics, 4)
	for _, d := range result.Diagnostics {
		assert.Equal(t, time.Friday, d.Weekend.Departure.Weekday())
		assert.Equal(t, time.Monday, d.Weekend.Return.Weekday())
	}
}
