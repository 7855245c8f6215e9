package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weekend-getaway-finder/internal/config"
	"github.com/i474232898/weekend-getaway-finder/internal/trip"
)

// Scheduler periodically re-runs weekend searches for tracked routes so the
// history log stays fresh between interactive queries.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	engine     *trip.Engine
	routes     []config.TrackedRoute
	interval   time.Duration
	windowDays int
}

// New creates a new Scheduler. windowDays is how far ahead each scheduled
// search looks.
func New(routes []config.TrackedRoute, interval time.Duration, windowDays int, engine *trip.Engine) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler:  s,
		engine:     engine,
		routes:     routes,
		interval:   interval,
		windowDays: windowDays,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.routes) == 0 {
		log.Println("scheduler: no tracked routes configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 360
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		log.Println("scheduler: running tracked route searches")

		now := time.Now().UTC()
		searchRange := trip.DateRange{
			Start: now,
			End:   now.AddDate(0, 0, s.windowDays),
		}

		var wg sync.WaitGroup
		for _, route := range s.routes {
			route := route
			wg.Add(1)
			go func() {
				defer wg.Done()

				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
				defer cancel()

				req := trip.SearchRequest{
					Origin:      route.Origin,
					Destination: route.Destination,
					Range:       searchRange,
				}
				if _, err := s.engine.Search(ctx, req); err != nil {
					log.Printf("scheduler: search failed for %s-%s: %v", route.Origin, route.Destination, err)
				}
			}()
		}
		wg.Wait()
		log.Println("scheduler: completed tracked route searches")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
