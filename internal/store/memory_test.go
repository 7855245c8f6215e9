package store

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weekend-getaway-finder/internal/trip"
)

func result(origin, destination string, completedAt time.Time) trip.SearchResult {
	return trip.SearchResult{
		ID:          uuid.New(),
		Origin:      origin,
		Destination: destination,
		CompletedAt: completedAt,
	}
}

func TestMemoryStore_AppendAndByRoute(t *testing.T) {
	s := NewMemoryStore(10, 0)
	now := time.Now().UTC()

	first := result("MAD", "BCN", now.Add(-2*time.Hour))
	second := result("MAD", "BCN", now.Add(-1*time.Hour))
	s.Append(first)
	s.Append(second)
	s.Append(result("MAD", "LIS", now))

	results, err := s.ByRoute("MAD", "BCN", 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	// Newest first.
	assert.Equal(t, second.ID, results[0].ID)
	assert.Equal(t, first.ID, results[1].ID)
}

func TestMemoryStore_ByRouteUnknownRoute(t *testing.T) {
	s := NewMemoryStore(10, 0)

	_, err := s.ByRoute("MAD", "BCN", 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_RetentionByCount(t *testing.T) {
	s := NewMemoryStore(2, 0)
	now := time.Now().UTC()

	oldest := result("MAD", "BCN", now.Add(-3*time.Hour))
	s.Append(oldest)
	s.Append(result("MAD", "BCN", now.Add(-2*time.Hour)))
	s.Append(result("MAD", "BCN", now.Add(-1*time.Hour)))

	results, err := s.ByRoute("MAD", "BCN", 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.NotEqual(t, oldest.ID, r.ID)
	}
}

func TestMemoryStore_RetentionByAge(t *testing.T) {
	s := NewMemoryStore(0, time.Hour)
	now := time.Now().UTC()

	stale := result("MAD", "BCN", now.Add(-2*time.Hour))
	fresh := result("MAD", "BCN", now)
	s.Append(stale)
	s.Append(fresh)

	results, err := s.ByRoute("MAD", "BCN", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, fresh.ID, results[0].ID)
}

func TestMemoryStore_RecentAcrossRoutes(t *testing.T) {
	s := NewMemoryStore(10, 0)
	now := time.Now().UTC()

	s.Append(result("MAD", "BCN", now.Add(-2*time.Hour)))
	newest := result("MAD", "LIS", now)
	s.Append(newest)
	s.Append(result("BCN", "ROM", now.Add(-1*time.Hour)))

	recent := s.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, newest.ID, recent[0].ID)
}
