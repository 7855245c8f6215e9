package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/i474232898/weekend-getaway-finder/internal/trip"
)

var (
	// ErrNotFound is returned when no search history exists for a route.
	ErrNotFound = errors.New("no search history for route")
)

// routeHistory holds a time-ordered list of completed searches for a route.
type routeHistory struct {
	Results []trip.SearchResult
}

// MemoryStore is a concurrency-safe, append-only in-memory search history
// log. Completed searches are recorded as data and never mutated; retention
// trims old entries by count and age.
type MemoryStore struct {
	mu sync.RWMutex

	// key: "ORIGIN-DESTINATION", value: history
	data map[string]*routeHistory

	// retention configuration
	maxEntries int           // max number of searches kept per route
	maxAge     time.Duration // optional max age for kept searches
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxEntries is <= 0, it is treated as unlimited.
func NewMemoryStore(maxEntries int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*routeHistory),
		maxEntries: maxEntries,
		maxAge:     maxAge,
	}
}

func routeKey(origin, destination string) string {
	return origin + "-" + destination
}

// Append records a completed search for its route and enforces retention.
func (s *MemoryStore) Append(result trip.SearchResult) {
	key := routeKey(result.Origin, result.Destination)

	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[key]
	if !ok {
		history = &routeHistory{}
		s.data[key] = history
	}

	history.Results = append(history.Results, result)

	// Enforce retention by count.
	if s.maxEntries > 0 && len(history.Results) > s.maxEntries {
		over := len(history.Results) - s.maxEntries
		history.Results = history.Results[over:]
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(history.Results); i++ {
			if !history.Results[i].CompletedAt.Before(cutoff) {
				break
			}
		}
		if i > 0 {
			history.Results = history.Results[i:]
		}
	}
}

// Recent returns up to limit searches across all routes, newest first.
func (s *MemoryStore) Recent(limit int) []trip.SearchResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []trip.SearchResult
	for _, history := range s.data {
		all = append(all, history.Results...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CompletedAt.After(all[j].CompletedAt)
	})

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all
}

// ByRoute returns up to limit searches for one route, newest first.
func (s *MemoryStore) ByRoute(origin, destination string, limit int) ([]trip.SearchResult, error) {
	key := routeKey(origin, destination)

	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[key]
	if !ok || len(history.Results) == 0 {
		return nil, ErrNotFound
	}

	results := make([]trip.SearchResult, len(history.Results))
	copy(results, history.Results)

	// Stored oldest to newest; reverse for newest first.
	for i, j := 0, len(results)-1; i < j; i, j = i+1, j-1 {
		results[i], results[j] = results[j], results[i]
	}

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
