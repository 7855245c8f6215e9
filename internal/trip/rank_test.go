package trip

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testWeekend = Weekend{
	Departure: time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC),
	Return:    time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC),
}

// goodQuote returns a raw quote that passes validation.
func goodQuote(price string, layovers, durationMinutes int) RawQuote {
	return RawQuote{
		Price:               price,
		Airline:             "Iberia",
		DepartureTime:       "2025-03-07 10:30",
		ArrivalTime:         "2025-03-07 12:45",
		DurationMinutes:     durationMinutes,
		Layovers:            layovers,
		Origin:              "MAD",
		Destination:         "BCN",
		ReturnDepartureTime: "2025-03-09 18:00",
		ReturnArrivalTime:   "2025-03-09 20:15",
	}
}

func TestRank_TieBreakByLayoversThenDuration(t *testing.T) {
	raw := []RawQuote{
		goodQuote("120", 1, 135),
		goodQuote("120", 0, 135),
		goodQuote("95", 2, 200),
	}

	set := Rank(testWeekend, raw)
	require.Len(t, set.Flights, 3)

	assert.Equal(t, 95.0, set.Flights[0].Price)
	assert.Equal(t, 120.0, set.Flights[1].Price)
	assert.Equal(t, 0, set.Flights[1].Layovers)
	assert.Equal(t, 120.0, set.Flights[2].Price)
	assert.Equal(t, 1, set.Flights[2].Layovers)
}

func TestRank_TruncatesToThree(t *testing.T) {
	raw := []RawQuote{
		goodQuote("200", 0, 120),
		goodQuote("100", 0, 120),
		goodQuote("150", 0, 120),
		goodQuote("50", 0, 120),
		goodQuote("300", 0, 120),
	}

	set := Rank(testWeekend, raw)
	require.Len(t, set.Flights, 3)
	assert.Equal(t, []float64{50, 100, 150}, []float64{
		set.Flights[0].Price, set.Flights[1].Price, set.Flights[2].Price,
	})
}

func TestRank_MalformedQuotesDroppedAndCounted(t *testing.T) {
	missingAirline := goodQuote("80", 0, 120)
	missingAirline.Airline = ""

	zeroDuration := goodQuote("85", 0, 0)

	raw := []RawQuote{
		goodQuote("110", 0, 120),
		{Price: "", Airline: "Vueling", Origin: "MAD", Destination: "BCN",
			DurationMinutes: 90, ReturnDepartureTime: "2025-03-09 18:00", ReturnArrivalTime: "2025-03-09 20:15"},
		{Price: "abc", Airline: "Vueling", Origin: "MAD", Destination: "BCN",
			DurationMinutes: 90, ReturnDepartureTime: "2025-03-09 18:00", ReturnArrivalTime: "2025-03-09 20:15"},
		missingAirline,
		zeroDuration,
	}

	set := Rank(testWeekend, raw)
	require.Len(t, set.Flights, 1)
	assert.Equal(t, 110.0, set.Flights[0].Price)
	assert.Equal(t, 4, set.Excluded)
	assert.Equal(t, 0, set.OneWay)
}

func TestRank_OneWayQuotesCountedSeparately(t *testing.T) {
	oneWay := goodQuote("70", 0, 120)
	oneWay.ReturnDepartureTime = ""
	oneWay.ReturnArrivalTime = ""

	set := Rank(testWeekend, []RawQuote{oneWay, goodQuote("100", 0, 120)})
	require.Len(t, set.Flights, 1)
	assert.Equal(t, 1, set.OneWay)
	assert.Equal(t, 0, set.Excluded)
}

func TestRank_EmptyAndAllInvalidBatches(t *testing.T) {
	set := Rank(testWeekend, nil)
	assert.True(t, set.Empty())

	bad := goodQuote("x", 0, 120)
	set = Rank(testWeekend, []RawQuote{bad})
	assert.True(t, set.Empty())
	assert.Equal(t, 1, set.Excluded)
}

func TestRank_DuplicatesAreKept(t *testing.T) {
	// The provider may return the same itinerary across query variants;
	// both copies must survive.
	q := goodQuote("99.50", 1, 140)
	set := Rank(testWeekend, []RawQuote{q, q})
	require.Len(t, set.Flights, 2)
	assert.Equal(t, set.Flights[0], set.Flights[1])
}

func TestRank_ParsesCurrencyFormattedPrices(t *testing.T) {
	set := Rank(testWeekend, []RawQuote{goodQuote("€1,250.75", 0, 120)})
	require.Len(t, set.Flights, 1)
	assert.Equal(t, 1250.75, set.Flights[0].Price)
}

func TestAnalyzeQuotes(t *testing.T) {
	quotes := []FlightQuote{
		{Price: 100, Airline: "Iberia"},
		{Price: 200, Airline: "Iberia"},
		{Price: 120, Airline: "Vueling"},
		{Price: 140, Airline: "Vueling"},
	}

	stats := AnalyzeQuotes(quotes)
	require.NotNil(t, stats)
	assert.Equal(t, 4, stats.TotalQuotes)
	assert.Equal(t, 2, stats.UniqueAirlines)
	assert.Equal(t, 100.0, stats.MinPrice)
	assert.Equal(t, 200.0, stats.MaxPrice)
	assert.Equal(t, 140.0, stats.MeanPrice)
	assert.Equal(t, 130.0, stats.MedianPrice)
	// Vueling mean 130 beats Iberia mean 150.
	assert.Equal(t, "Vueling", stats.CheapestAirline)
}

func TestAnalyzeQuotes_Empty(t *testing.T) {
	assert.Nil(t, AnalyzeQuotes(nil))
}
