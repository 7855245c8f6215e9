package trip

import (
	"fmt"
	"math"
	"time"
)

// rainyDayThresholdMM is the minimum daily precipitation counted as a rainy
// day.
const rainyDayThresholdMM = 0.1

// Summarize aggregates daily observations for a destination into statistics
// for one calendar month across all available years, with a per-year
// breakdown. Missing-day gaps are tolerated: averages run over available
// days only, and DaysIncluded reports how many went in. Fails with
// ErrInsufficientData only when zero observations exist for the month;
// it never fabricates data.
func Summarize(destination string, month time.Month, observations []DailyObservation) (*WeatherSummary, error) {
	var monthObs []DailyObservation
	byYear := make(map[int][]DailyObservation)

	for _, o := range observations {
		if o.Date.Month() != month {
			continue
		}
		monthObs = append(monthObs, o)
		byYear[o.Date.Year()] = append(byYear[o.Date.Year()], o)
	}

	if len(monthObs) == 0 {
		return nil, fmt.Errorf("%w: %s in %s", ErrInsufficientData, month, destination)
	}

	perYear := make(map[int]WeatherMetrics, len(byYear))
	for year, obs := range byYear {
		perYear[year] = computeMetrics(obs)
	}

	return &WeatherSummary{
		Destination: destination,
		Month:       month,
		Metrics:     computeMetrics(monthObs),
		PerYear:     perYear,
	}, nil
}

func computeMetrics(obs []DailyObservation) WeatherMetrics {
	var sumMax, sumMin, sumPrecip float64
	highest := math.Inf(-1)
	lowest := math.Inf(1)
	rainy := 0

	for _, o := range obs {
		sumMax += o.MaxTempC
		sumMin += o.MinTempC
		sumPrecip += o.PrecipMM
		if o.MaxTempC > highest {
			highest = o.MaxTempC
		}
		if o.MinTempC < lowest {
			lowest = o.MinTempC
		}
		if o.PrecipMM > rainyDayThresholdMM {
			rainy++
		}
	}

	n := float64(len(obs))
	return WeatherMetrics{
		AvgMaxTempC:  round1(sumMax / n),
		AvgMinTempC:  round1(sumMin / n),
		AvgPrecipMM:  round1(sumPrecip / n),
		HighestTempC: round1(highest),
		LowestTempC:  round1(lowest),
		RainyDays:    rainy,
		RainyDaysPct: round1(float64(rainy) / n * 100),
		DaysIncluded: len(obs),
	}
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
