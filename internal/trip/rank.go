package trip

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

const maxRankedFlights = 3

// Rank validates a batch of raw quotes for one weekend and reduces it to
// the three cheapest, ordered ascending by price with ties broken by fewer
// layovers, then shorter duration, then input position. Malformed quotes
// are dropped and counted rather than failing the batch; a batch with zero
// valid quotes returns an empty set, not an error.
//
// Duplicate quotes (same airline, times, price) are deliberately NOT
// deduplicated: the provider may legitimately return the same itinerary
// across query variants, and collapsing them would misrepresent
// availability.
func Rank(weekend Weekend, raw []RawQuote) RankedFlightSet {
	quotes, excluded, oneWay := normalizeQuotes(raw)
	return rankQuotes(weekend, quotes, excluded, oneWay)
}

func rankQuotes(weekend Weekend, quotes []FlightQuote, excluded, oneWay int) RankedFlightSet {
	// Copy before sorting; the input batch stays untouched.
	ranked := make([]FlightQuote, len(quotes))
	copy(ranked, quotes)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Price != ranked[j].Price {
			return ranked[i].Price < ranked[j].Price
		}
		if ranked[i].Layovers != ranked[j].Layovers {
			return ranked[i].Layovers < ranked[j].Layovers
		}
		return ranked[i].DurationMinutes < ranked[j].DurationMinutes
	})

	if len(ranked) > maxRankedFlights {
		ranked = ranked[:maxRankedFlights]
	}

	return RankedFlightSet{
		Weekend:  weekend,
		Flights:  ranked,
		Excluded: excluded,
		OneWay:   oneWay,
	}
}

// normalizeQuotes converts raw provider records into validated FlightQuotes.
// It returns the surviving quotes plus counts of records dropped for
// validation failures and for missing return-leg data.
func normalizeQuotes(raw []RawQuote) (valid []FlightQuote, excluded, oneWay int) {
	for _, r := range raw {
		// A round-trip search that comes back without return-leg data is a
		// provider contract violation; drop the record and count it apart.
		if r.ReturnDepartureTime == "" && r.ReturnArrivalTime == "" {
			oneWay++
			continue
		}

		price, err := parsePrice(r.Price)
		if err != nil {
			excluded++
			continue
		}

		q := FlightQuote{
			Price:           price,
			Airline:         strings.TrimSpace(r.Airline),
			DepartureTime:   parseQuoteTime(r.DepartureTime),
			ArrivalTime:     parseQuoteTime(r.ArrivalTime),
			DurationMinutes: r.DurationMinutes,
			Layovers:        r.Layovers,
			Origin:          strings.ToUpper(strings.TrimSpace(r.Origin)),
			Destination:     strings.ToUpper(strings.TrimSpace(r.Destination)),
		}

		if err := validate.Struct(q); err != nil {
			excluded++
			continue
		}

		valid = append(valid, q)
	}
	return valid, excluded, oneWay
}

// AnalyzeQuotes computes batch statistics over every valid quote of a
// search. Returns nil for an empty batch.
func AnalyzeQuotes(quotes []FlightQuote) *RouteStats {
	if len(quotes) == 0 {
		return nil
	}

	prices := make([]float64, len(quotes))
	airlines := make(map[string][]float64)
	var sum float64
	for i, q := range quotes {
		prices[i] = q.Price
		sum += q.Price
		airlines[q.Airline] = append(airlines[q.Airline], q.Price)
	}
	sort.Float64s(prices)

	stats := &RouteStats{
		TotalQuotes:    len(quotes),
		UniqueAirlines: len(airlines),
		MinPrice:       prices[0],
		MaxPrice:       prices[len(prices)-1],
		MeanPrice:      sum / float64(len(quotes)),
		MedianPrice:    median(prices),
	}

	best := -1.0
	for airline, ps := range airlines {
		var s float64
		for _, p := range ps {
			s += p
		}
		mean := s / float64(len(ps))
		if best < 0 || mean < best || (mean == best && airline < stats.CheapestAirline) {
			best = mean
			stats.CheapestAirline = airline
		}
	}
	return stats
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// parsePrice coerces the provider's loosely formatted price field to a
// number, tolerating currency symbols and thousands separators.
func parsePrice(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "$€£")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, &ValidationError{Reason: "missing price"}
	}
	p, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &ValidationError{Reason: "non-numeric price"}
	}
	return p, nil
}

var quoteTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

func parseQuoteTime(s string) time.Time {
	for _, layout := range quoteTimeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}
