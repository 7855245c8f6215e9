package trip

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	defaultConcurrency  = 4
	defaultCallTimeout  = 15 * time.Second
	defaultWeatherYears = 5
)

// Options tunes the engine's concurrency and external-call behaviour.
type Options struct {
	// Concurrency bounds how many weekends are processed at once, to
	// respect third-party rate limits.
	Concurrency int

	// CallTimeout applies to each external provider call.
	CallTimeout time.Duration

	// WeatherYears is how many years of history back the month summaries.
	WeatherYears int
}

// Engine orchestrates the per-weekend fan-out against the three providers
// and merges the results. All state lives per search invocation; the engine
// itself holds only wiring.
type Engine struct {
	flights FlightProvider
	weather WeatherProvider
	prices  PriceProvider
	history HistoryLog

	concurrency  int
	callTimeout  time.Duration
	weatherYears int
}

// NewEngine creates a new Engine. history may be nil when the caller does
// not keep a search log.
func NewEngine(flights FlightProvider, weather WeatherProvider, prices PriceProvider, history HistoryLog, opts Options) *Engine {
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = defaultCallTimeout
	}
	if opts.WeatherYears <= 0 {
		opts.WeatherYears = defaultWeatherYears
	}
	return &Engine{
		flights:      flights,
		weather:      weather,
		prices:       prices,
		history:      history,
		concurrency:  opts.Concurrency,
		callTimeout:  opts.CallTimeout,
		weatherYears: opts.WeatherYears,
	}
}

// SearchRequest describes one search invocation.
type SearchRequest struct {
	Origin      string
	Destination string
	Range       DateRange

	// LongWeekends extends the window to Friday-Monday.
	LongWeekends bool
}

// monthEntry lazily fetches and summarizes one calendar month's weather so
// weekends sharing a month share one fetch and one summary instance.
type monthEntry struct {
	once    sync.Once
	summary *WeatherSummary
}

// Search enumerates candidate weekends, fetches quotes, weather, and price
// distributions concurrently, and merges everything into one SearchResult.
// Failures are isolated per weekend and category: a timed-out call surfaces
// as a missing sub-result, never as a full abort. Only an invalid date
// range is fatal.
func (e *Engine) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	if e.flights == nil {
		return nil, fmt.Errorf("no flight provider configured")
	}

	var (
		weekends []Weekend
		err      error
	)
	if req.LongWeekends {
		weekends, err = LongWeekends(req.Range, false, true)
	} else {
		weekends, err = Weekends(req.Range)
	}
	if err != nil {
		return nil, err
	}

	log.Printf("search %s-%s: %d candidate weekends", req.Origin, req.Destination, len(weekends))

	var (
		mu          sync.Mutex
		flightSets  = make(map[string]RankedFlightSet)
		evaluations = make(map[string]PriceEvaluation)
		fetchErrs   = make(map[string]string)
		validQuotes []FlightQuote
	)

	months := make(map[time.Month]*monthEntry)
	for _, w := range weekends {
		if _, ok := months[w.Month()]; !ok {
			months[w.Month()] = &monthEntry{}
		}
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for _, w := range weekends {
		w := w
		g.Go(func() error {
			var (
				wg     sync.WaitGroup
				set    RankedFlightSet
				quotes []FlightQuote
				dist   *PriceDistribution
				fetch  error
			)

			// The three category fetches are read-only against disjoint
			// resources and run concurrently within the weekend.
			wg.Add(1)
			go func() {
				defer wg.Done()
				raw, err := e.fetchQuotes(gCtx, req, w)
				if err != nil {
					fetch = err
					return
				}
				var excluded, oneWay int
				quotes, excluded, oneWay = normalizeQuotes(raw)
				set = rankQuotes(w, quotes, excluded, oneWay)
			}()

			wg.Add(1)
			go func() {
				defer wg.Done()
				e.monthSummary(gCtx, req.Destination, w.Month(), months[w.Month()])
			}()

			wg.Add(1)
			go func() {
				defer wg.Done()
				dist = e.fetchDistribution(gCtx, req, w)
			}()

			wg.Wait()

			mu.Lock()
			defer mu.Unlock()

			if fetch != nil {
				// Isolated to this weekend; siblings continue.
				log.Printf("flight fetch failed for %s: %v", w.Key(), fetch)
				fetchErrs[w.Key()] = fetch.Error()
				return nil
			}

			flightSets[w.Key()] = set
			validQuotes = append(validQuotes, quotes...)
			if !set.Empty() {
				evaluations[w.Key()] = Evaluate(w, set.Flights[0].Price, dist)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	weather := make(map[time.Month]*WeatherSummary, len(months))
	for m, entry := range months {
		if entry.summary != nil {
			weather[m] = entry.summary
		}
	}

	records, diagnostics := Merge(weekends, flightSets, weather, evaluations, fetchErrs)

	result := &SearchResult{
		ID:          uuid.New(),
		Origin:      req.Origin,
		Destination: req.Destination,
		Range:       req.Range,
		Records:     records,
		Diagnostics: diagnostics,
		Stats:       AnalyzeQuotes(validQuotes),
		CompletedAt: time.Now().UTC(),
	}

	if e.history != nil {
		e.history.Append(*result)
	}

	return result, nil
}

func (e *Engine) fetchQuotes(ctx context.Context, req SearchRequest, w Weekend) ([]RawQuote, error) {
	ctx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	raw, err := e.flights.FetchQuotes(ctx, req.Origin, req.Destination, w.Departure, w.Return)
	if err != nil {
		return nil, &ProviderError{Provider: e.flights.Name(), Err: err}
	}
	return raw, nil
}

// monthSummary fetches and summarizes a month's weather exactly once per
// search; concurrent weekends in the same month wait on the same entry.
func (e *Engine) monthSummary(ctx context.Context, destination string, month time.Month, entry *monthEntry) {
	if e.weather == nil {
		return
	}

	entry.once.Do(func() {
		ctx, cancel := context.WithTimeout(ctx, e.callTimeout)
		defer cancel()

		obs, err := e.weather.FetchHistorical(ctx, destination, month, e.weatherYears)
		if err != nil {
			log.Printf("weather fetch failed for %s %s: %v", destination, month, err)
			return
		}

		summary, err := Summarize(destination, month, obs)
		if err != nil {
			// Empty month; record shows no weather rather than fabricating.
			log.Printf("weather summary unavailable for %s %s: %v", destination, month, err)
			return
		}
		entry.summary = summary
	})
}

func (e *Engine) fetchDistribution(ctx context.Context, req SearchRequest, w Weekend) *PriceDistribution {
	if e.prices == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	dist, err := e.prices.FetchDistribution(ctx, req.Origin, req.Destination, w.Departure)
	if err != nil {
		// Missing distribution degrades to an unknown classification.
		log.Printf("price metrics fetch failed for %s: %v", w.Key(), err)
		return nil
	}
	return dist
}
