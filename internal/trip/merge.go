package trip

import (
	"sort"
	"time"
)

// Exclusion reasons surfaced through the diagnostics side channel.
const (
	ReasonNoValidFlights = "no valid flights found"
	ReasonOneWayOnly     = "provider returned one-way data only"
	ReasonFetchFailed    = "flight quote fetch failed"
)

// Merge joins ranked flights, weather summaries, and price evaluations per
// weekend into the final record list. Weekends without a usable flight set
// are excluded from the output and reported through the diagnostics list,
// so every input weekend lands in exactly one of the two. fetchErrs carries
// per-weekend flight fetch failures keyed by Weekend.Key.
//
// Records are ordered ascending by the cheapest flight's price, ties broken
// by chronological order. Weather summaries are shared: every weekend in a
// month points at the same instance.
func Merge(
	weekends []Weekend,
	flightSets map[string]RankedFlightSet,
	weather map[time.Month]*WeatherSummary,
	evaluations map[string]PriceEvaluation,
	fetchErrs map[string]string,
) ([]IntegratedRecord, []Diagnostic) {
	records := []IntegratedRecord{}
	diagnostics := []Diagnostic{}

	for _, w := range weekends {
		key := w.Key()

		set, ok := flightSets[key]
		if !ok {
			reason := ReasonFetchFailed
			if msg, ok := fetchErrs[key]; ok && msg != "" {
				reason = ReasonFetchFailed + ": " + msg
			}
			diagnostics = append(diagnostics, Diagnostic{Weekend: w, Reason: reason})
			continue
		}

		if set.Empty() {
			reason := ReasonNoValidFlights
			if set.OneWay > 0 && set.Excluded == 0 {
				reason = ReasonOneWayOnly
			}
			diagnostics = append(diagnostics, Diagnostic{Weekend: w, Reason: reason})
			continue
		}

		eval, ok := evaluations[key]
		if !ok {
			// Missing distribution sub-result; still a first-class outcome.
			eval = Evaluate(w, set.Flights[0].Price, nil)
		}

		records = append(records, IntegratedRecord{
			Weekend: w,
			Flights: set,
			Weather: weather[w.Month()],
			Price:   eval,
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		pi := records[i].Flights.Flights[0].Price
		pj := records[j].Flights.Flights[0].Price
		if pi != pj {
			return pi < pj
		}
		return records[i].Weekend.Departure.Before(records[j].Weekend.Departure)
	})

	return records, diagnostics
}
