package archive

import (
	"errors"
	"testing"
	"time"

	"github.com/stazionemeteococito/meteo-archive/internal/meteo"
)

func obsAt(sym meteo.Symbol, ts string, value float64) meteo.Observation {
	instant, err := time.ParseInLocation(meteo.InstantLayout, ts, time.UTC)
	if err != nil {
		panic(err)
	}
	return meteo.NewObservation(sym, instant, value)
}

// TestUpdateIdempotent verifies that re-ingesting the same batch adds nothing
// and leaves the archive unchanged.
func TestUpdateIdempotent(t *testing.T) {
	store := NewMemoryStore()

	batch := []meteo.Observation{
		obsAt(meteo.SymbolTemperature, "2022-01-01 10:00:00", 10.0),
		obsAt(meteo.SymbolTemperature, "2022-01-01 10:15:00", 11.5),
		obsAt(meteo.SymbolHumidity, "2022-01-01 10:00:00", 60.0),
	}

	added, err := store.Update(batch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if added != 3 {
		t.Fatalf("expected 3 added, got %d", added)
	}

	added, err = store.Update(batch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if added != 0 {
		t.Fatalf("expected 0 added on re-ingestion, got %d", added)
	}

	all, err := store.QueryRange(time.Time{}, time.Now().UTC())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 stored observations, got %d", len(all))
	}
}

// TestUpdateOverlappingBatches verifies that overlapping downloads only add
// the previously unseen rows.
func TestUpdateOverlappingBatches(t *testing.T) {
	store := NewMemoryStore()

	first := []meteo.Observation{
		obsAt(meteo.SymbolTemperature, "2022-01-01 10:00:00", 10.0),
		obsAt(meteo.SymbolTemperature, "2022-01-01 10:15:00", 11.0),
	}
	second := []meteo.Observation{
		obsAt(meteo.SymbolTemperature, "2022-01-01 10:15:00", 99.0), // duplicate instant, must not overwrite
		obsAt(meteo.SymbolTemperature, "2022-01-01 10:30:00", 12.0),
	}

	if _, err := store.Update(first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	added, err := store.Update(second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if added != 1 {
		t.Fatalf("expected 1 added, got %d", added)
	}

	all, _ := store.QueryRange(time.Time{}, time.Now().UTC())
	for _, o := range all {
		if o.Instant.Format(meteo.InstantLayout) == "2022-01-01 10:15:00" && o.Value != 11.0 {
			t.Fatalf("existing observation was overwritten: got %v", o.Value)
		}
	}
}

// TestQueryRangeOrdering verifies results come out ascending by instant even
// when batches arrive out of order.
func TestQueryRangeOrdering(t *testing.T) {
	store := NewMemoryStore()

	batch := []meteo.Observation{
		obsAt(meteo.SymbolTemperature, "2022-01-01 12:00:00", 12.0),
		obsAt(meteo.SymbolTemperature, "2022-01-01 10:00:00", 10.0),
		obsAt(meteo.SymbolHumidity, "2022-01-01 11:00:00", 55.0),
		obsAt(meteo.SymbolTemperature, "2022-01-01 11:00:00", 11.0),
	}
	if _, err := store.Update(batch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	all, err := store.QueryRange(time.Time{}, time.Now().UTC())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(all); i++ {
		if all[i].Instant.Before(all[i-1].Instant) {
			t.Fatalf("results not ascending at index %d", i)
		}
	}
}

// TestQueryRangeBounds verifies the closed-interval semantics.
func TestQueryRangeBounds(t *testing.T) {
	store := NewMemoryStore()

	if _, err := store.Update([]meteo.Observation{
		obsAt(meteo.SymbolTemperature, "2022-01-01 10:00:00", 10.0),
		obsAt(meteo.SymbolTemperature, "2022-01-01 11:00:00", 11.0),
		obsAt(meteo.SymbolTemperature, "2022-01-01 12:00:00", 12.0),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	from, _ := time.ParseInLocation(meteo.InstantLayout, "2022-01-01 10:00:00", time.UTC)
	to, _ := time.ParseInLocation(meteo.InstantLayout, "2022-01-01 11:00:00", time.UTC)

	obs, err := store.QueryRange(from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(obs) != 2 {
		t.Fatalf("expected both boundary observations, got %d", len(obs))
	}

	empty, err := store.QueryRange(to.Add(12*time.Hour), to.Add(13*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty result, got %d", len(empty))
	}
}

// TestQueryRangeInvalid verifies that a start bound after the end bound fails.
func TestQueryRangeInvalid(t *testing.T) {
	store := NewMemoryStore()

	from := time.Date(2022, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)

	if _, err := store.QueryRange(from, to); !errors.Is(err, meteo.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

// TestLatest verifies per-type latest readings and the empty-archive error.
func TestLatest(t *testing.T) {
	store := NewMemoryStore()

	if _, err := store.Latest(); !errors.Is(err, meteo.ErrNoData) {
		t.Fatalf("expected ErrNoData on empty archive, got %v", err)
	}
	if _, err := store.LatestInstant(); !errors.Is(err, meteo.ErrNoData) {
		t.Fatalf("expected ErrNoData on empty archive, got %v", err)
	}

	if _, err := store.Update([]meteo.Observation{
		obsAt(meteo.SymbolTemperature, "2022-01-01 10:00:00", 10.0),
		obsAt(meteo.SymbolTemperature, "2022-01-01 11:00:00", 11.0),
		obsAt(meteo.SymbolHumidity, "2022-01-01 10:30:00", 58.0),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	latest, err := store.Latest()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latest[meteo.SymbolTemperature].Value != 11.0 {
		t.Fatalf("expected latest temperature 11.0, got %v", latest[meteo.SymbolTemperature].Value)
	}
	if latest[meteo.SymbolHumidity].Value != 58.0 {
		t.Fatalf("expected latest humidity 58.0, got %v", latest[meteo.SymbolHumidity].Value)
	}

	newest, err := store.LatestInstant()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if newest.Format(meteo.InstantLayout) != "2022-01-01 11:00:00" {
		t.Fatalf("unexpected latest instant %s", newest.Format(meteo.InstantLayout))
	}
}
