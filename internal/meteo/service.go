package meteo

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// Service orchestrates the station feed and the observation archive.
type Service struct {
	store Store
	feed  Feed
}

// NewService creates a new Service. The feed may be nil for read-only use.
func NewService(store Store, feed Feed) *Service {
	return &Service{
		store: store,
		feed:  feed,
	}
}

// Update runs one incremental update cycle: for each data type it downloads
// every reading at or after that type's latest archived instant and inserts
// the previously unseen ones. A failed download aborts the cycle without
// touching the archive. Returns the number of newly added observations.
func (s *Service) Update(ctx context.Context) (int, error) {
	if s.feed == nil {
		return 0, fmt.Errorf("no station feed configured")
	}

	// Each series advances on its own clock, so the fetch is bounded by that
	// series' latest instant. A single global bound would drop the rows a
	// lagging series is still missing.
	since := make(map[Symbol]time.Time)
	latest, err := s.store.Latest()
	switch {
	case err == nil:
		for sym, o := range latest {
			since[sym] = o.Instant
		}
	case errors.Is(err, ErrNoData):
		// First run, fetch the full history.
	default:
		return 0, err
	}

	obs, err := s.feed.FetchObservations(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("fetch from %s: %w", s.feed.Name(), err)
	}
	if len(obs) == 0 {
		log.Printf("update: feed %s returned no new readings", s.feed.Name())
		return 0, nil
	}

	added, err := s.store.Update(obs)
	if err != nil {
		return 0, err
	}
	log.Printf("update: %d downloaded, %d added", len(obs), added)
	return added, nil
}

// Range returns all observations within the closed interval [from, to].
func (s *Service) Range(from, to time.Time) ([]Observation, error) {
	return s.store.QueryRange(from, to)
}

// Current returns the most recent observation per data type.
func (s *Service) Current() (map[Symbol]Observation, error) {
	return s.store.Latest()
}

// LastUpdated returns the instant of the newest observation in the archive.
func (s *Service) LastUpdated() (time.Time, error) {
	return s.store.LatestInstant()
}

// Day returns all observations recorded today.
func (s *Service) Day() ([]Observation, error) {
	from, to := dayWindow(time.Now().UTC())
	return s.store.QueryRange(from, to)
}

// Week returns all observations recorded since Monday of the current week.
func (s *Service) Week() ([]Observation, error) {
	from, to := weekWindow(time.Now().UTC())
	return s.store.QueryRange(from, to)
}

// Month returns all observations recorded since the first of the current month.
func (s *Service) Month() ([]Observation, error) {
	from, to := monthWindow(time.Now().UTC())
	return s.store.QueryRange(from, to)
}

// Snapshot downloads the station's own latest-readings summary.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	if s.feed == nil {
		return nil, fmt.Errorf("no station feed configured")
	}
	return s.feed.FetchSnapshot(ctx)
}

// Report downloads the station's hardware report text.
func (s *Service) Report(ctx context.Context) (string, error) {
	if s.feed == nil {
		return "", fmt.Errorf("no station feed configured")
	}
	return s.feed.FetchReport(ctx)
}

func dayWindow(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return start, now
}

func weekWindow(now time.Time) (time.Time, time.Time) {
	// time.Weekday counts Sunday as 0; the station's week starts on Monday.
	offset := (int(now.Weekday()) + 6) % 7
	monday := now.AddDate(0, 0, -offset)
	start := time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)
	return start, now
}

func monthWindow(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, now
}
