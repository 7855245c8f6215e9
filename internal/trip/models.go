package trip

import (
	"time"

	"github.com/google/uuid"
)

// DateRange is the caller-supplied search window.
// Start must not be after End.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Weekend is a candidate departure/return date pair. Weekends are derived,
// immutable, and identified by their date pair.
type Weekend struct {
	Departure time.Time `json:"departureDate"`
	Return    time.Time `json:"returnDate"`
}

// Key returns a canonical string key for indexing this weekend in collectors.
func (w Weekend) Key() string {
	return w.Departure.Format("2006-01-02") + ":" + w.Return.Format("2006-01-02")
}

// Month returns the calendar month of the departure date.
func (w Weekend) Month() time.Month {
	return w.Departure.Month()
}

// RawQuote is a flight offer as received from the provider, before
// validation. Fields may be missing or malformed.
type RawQuote struct {
	Price           string `json:"price"`
	Airline         string `json:"airline"`
	DepartureTime   string `json:"departureTime"`
	ArrivalTime     string `json:"arrivalTime"`
	DurationMinutes int    `json:"durationMinutes"`
	Layovers        int    `json:"layovers"`
	Origin          string `json:"origin"`
	Destination     string `json:"destination"`

	// Return-leg fields. Empty when the provider handed back one-way data,
	// which is a contract violation for a round-trip search.
	ReturnDepartureTime string `json:"returnDepartureTime"`
	ReturnArrivalTime   string `json:"returnArrivalTime"`
}

// FlightQuote is a validated, normalized flight offer.
type FlightQuote struct {
	Price           float64   `json:"price" validate:"gte=0"`
	Airline         string    `json:"airline" validate:"required"`
	DepartureTime   time.Time `json:"departureTime"`
	ArrivalTime     time.Time `json:"arrivalTime"`
	DurationMinutes int       `json:"durationMinutes" validate:"gt=0"`
	Layovers        int       `json:"layovers" validate:"gte=0"`
	Origin          string    `json:"origin" validate:"required,len=3,alpha"`
	Destination     string    `json:"destination" validate:"required,len=3,alpha"`
}

// RankedFlightSet holds up to three quotes for one weekend, ordered
// ascending by price with ties broken by fewer layovers, then shorter
// duration. Recomputed on every search, never mutated in place.
type RankedFlightSet struct {
	Weekend Weekend       `json:"weekend"`
	Flights []FlightQuote `json:"flights"`

	// Excluded counts quotes dropped during validation; OneWay counts quotes
	// dropped specifically for missing return-leg data.
	Excluded int `json:"excludedQuotes"`
	OneWay   int `json:"oneWayQuotes"`
}

// Empty reports whether no quote survived validation.
func (s RankedFlightSet) Empty() bool {
	return len(s.Flights) == 0
}

// DailyObservation is one day of historical weather readings for a
// destination.
type DailyObservation struct {
	Date     time.Time `json:"date"`
	MaxTempC float64   `json:"maxTempC"`
	MinTempC float64   `json:"minTempC"`
	PrecipMM float64   `json:"precipMm"`
}

// WeatherMetrics are the aggregate statistics over a set of daily
// observations. DaysIncluded lets callers judge statistical confidence when
// the source has gaps.
type WeatherMetrics struct {
	AvgMaxTempC  float64 `json:"avgMaxTempC"`
	AvgMinTempC  float64 `json:"avgMinTempC"`
	AvgPrecipMM  float64 `json:"avgPrecipMm"`
	HighestTempC float64 `json:"highestTempC"`
	LowestTempC  float64 `json:"lowestTempC"`
	RainyDays    int     `json:"rainyDays"`
	RainyDaysPct float64 `json:"rainyDaysPct"`
	DaysIncluded int     `json:"daysIncluded"`
}

// WeatherSummary aggregates historical observations for a destination and
// calendar month across all available years, with a per-year breakdown.
// Read-only once produced; the merger shares one instance per month.
type WeatherSummary struct {
	Destination string                 `json:"destination"`
	Month       time.Month             `json:"month"`
	Metrics     WeatherMetrics         `json:"metrics"`
	PerYear     map[int]WeatherMetrics `json:"perYear"`
}

// PriceDistribution holds historical price statistics for a route.
// Consumed read-only; the source of truth is external.
type PriceDistribution struct {
	Route  string  `json:"route"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// Classification buckets an observed price against the historical
// distribution.
type Classification string

const (
	ClassCheap     Classification = "cheap"
	ClassTypical   Classification = "typical"
	ClassExpensive Classification = "expensive"

	// ClassUnknown means no distribution was available for the route.
	// It is a first-class outcome and must never be coerced to typical.
	ClassUnknown Classification = "unknown"
)

// PriceEvaluation classifies one weekend's observed price.
type PriceEvaluation struct {
	Weekend        Weekend        `json:"weekend"`
	ObservedPrice  float64        `json:"observedPrice"`
	Classification Classification `json:"classification"`
}

// IntegratedRecord joins ranked flights, the month's weather summary, and
// the price evaluation for one weekend. Weather may be nil when the weather
// fetch failed or came back empty for the month.
type IntegratedRecord struct {
	Weekend Weekend         `json:"weekend"`
	Flights RankedFlightSet `json:"flights"`
	Weather *WeatherSummary `json:"weather,omitempty"`
	Price   PriceEvaluation `json:"price"`
}

// Diagnostic records a weekend excluded from the output and why, so every
// input weekend is accounted for in either the records or the diagnostics.
type Diagnostic struct {
	Weekend Weekend `json:"weekend"`
	Reason  string  `json:"reason"`
}

// RouteStats summarizes all valid quotes seen during one search.
type RouteStats struct {
	TotalQuotes     int     `json:"totalQuotes"`
	UniqueAirlines  int     `json:"uniqueAirlines"`
	MinPrice        float64 `json:"minPrice"`
	MaxPrice        float64 `json:"maxPrice"`
	MeanPrice       float64 `json:"meanPrice"`
	MedianPrice     float64 `json:"medianPrice"`
	CheapestAirline string  `json:"cheapestAirline"`
}

// SearchResult is the engine's sole externally consumed artifact: the
// ordered records plus the diagnostics side channel, with batch statistics
// over every valid quote.
type SearchResult struct {
	ID          uuid.UUID          `json:"id"`
	Origin      string             `json:"origin"`
	Destination string             `json:"destination"`
	Range       DateRange          `json:"range"`
	Records     []IntegratedRecord `json:"records"`
	Diagnostics []Diagnostic       `json:"diagnostics"`
	Stats       *RouteStats        `json:"stats,omitempty"`
	CompletedAt time.Time          `json:"completedAt"`
}
