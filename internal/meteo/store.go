package meteo

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidRange is returned when a range query's start bound is after its end bound.
	ErrInvalidRange = errors.New("range start is after range end")

	// ErrNoData is returned when the archive holds no observations.
	ErrNoData = errors.New("no observations in archive")
)

// Store is the contract the observation archive (in-memory or persistent) must satisfy.
//
// Update never overwrites: a (symbol, instant) pair already present is
// skipped, so re-ingesting an overlapping batch is safe. All query results
// are ordered by instant ascending.
type Store interface {
	Update(obs []Observation) (int, error)
	QueryRange(from, to time.Time) ([]Observation, error)
	Latest() (map[Symbol]Observation, error)
	LatestInstant() (time.Time, error)
	Close() error
}

// Snapshot holds the station's most recent reading per data type,
// as published in its last.json.
type Snapshot map[Symbol]float64

// Feed abstracts the station's data feed.
type Feed interface {
	Name() string

	// FetchObservations downloads, for every data type, all readings at or
	// after that type's since instant. Types missing from the map (or a nil
	// map) are fetched in full.
	FetchObservations(ctx context.Context, since map[Symbol]time.Time) ([]Observation, error)

	// FetchSnapshot downloads the station's latest reading per data type.
	FetchSnapshot(ctx context.Context) (Snapshot, error)

	// FetchReport downloads the station's hardware report text.
	FetchReport(ctx context.Context) (string, error)
}
