package archive

import (
	"sort"
	"sync"
	"time"

	"github.com/stazionemeteococito/meteo-archive/internal/meteo"
)

// MemoryStore is a concurrency-safe in-memory implementation of meteo.Store.
// Observations are held per data type in instant-ascending order.
type MemoryStore struct {
	mu sync.RWMutex

	// key: data type symbol, value: sorted series
	series map[meteo.Symbol][]meteo.Observation
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		series: make(map[meteo.Symbol][]meteo.Observation),
	}
}

// Update inserts the observations whose (symbol, instant) pair is not already
// present, keeping each series sorted. Returns the number of insertions.
func (s *MemoryStore) Update(obs []meteo.Observation) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, o := range obs {
		o.Instant = o.Instant.UTC().Truncate(time.Second)

		series := s.series[o.Symbol]
		i := sort.Search(len(series), func(i int) bool {
			return !series[i].Instant.Before(o.Instant)
		})
		if i < len(series) && series[i].Instant.Equal(o.Instant) {
			continue
		}

		series = append(series, meteo.Observation{})
		copy(series[i+1:], series[i:])
		series[i] = o
		s.series[o.Symbol] = series
		added++
	}

	return added, nil
}

// QueryRange returns all observations with from <= instant <= to, ascending
// by instant. Observations sharing an instant come out in data type order.
func (s *MemoryStore) QueryRange(from, to time.Time) ([]meteo.Observation, error) {
	if from.After(to) {
		return nil, meteo.ErrInvalidRange
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []meteo.Observation
	for _, dt := range meteo.DataTypes {
		series := s.series[dt.Symbol]
		i := sort.Search(len(series), func(i int) bool {
			return !series[i].Instant.Before(from)
		})
		for ; i < len(series) && !series[i].Instant.After(to); i++ {
			result = append(result, series[i])
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Instant.Before(result[j].Instant)
	})

	return result, nil
}

// Latest returns the most recent observation per data type.
func (s *MemoryStore) Latest() (map[meteo.Symbol]meteo.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest := make(map[meteo.Symbol]meteo.Observation)
	for sym, series := range s.series {
		if len(series) > 0 {
			latest[sym] = series[len(series)-1]
		}
	}
	if len(latest) == 0 {
		return nil, meteo.ErrNoData
	}
	return latest, nil
}

// LatestInstant returns the instant of the newest observation across all series.
func (s *MemoryStore) LatestInstant() (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var newest time.Time
	for _, series := range s.series {
		if len(series) == 0 {
			continue
		}
		if last := series[len(series)-1].Instant; last.After(newest) {
			newest = last
		}
	}
	if newest.IsZero() {
		return time.Time{}, meteo.ErrNoData
	}
	return newest, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
