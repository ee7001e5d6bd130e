package meteo

import (
	"errors"
	"math"
	"testing"
	"time"
)

func tsObs(sym Symbol, hour int, value float64) Observation {
	return NewObservation(sym, time.Date(2022, 1, 1, hour, 0, 0, 0, time.UTC), value)
}

// TestComputeKnownValues checks min/max/mean over a known temperature series.
func TestComputeKnownValues(t *testing.T) {
	obs := []Observation{
		tsObs(SymbolTemperature, 10, 10.0),
		tsObs(SymbolTemperature, 11, 20.0),
		tsObs(SymbolTemperature, 12, 30.0),
	}

	stats, err := Compute(obs, SymbolTemperature)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s, ok := stats[SymbolTemperature]
	if !ok {
		t.Fatal("expected a temperature summary")
	}
	if s.Min != 10.0 || s.Max != 30.0 || s.Mean != 20.0 {
		t.Fatalf("unexpected summary: min=%v max=%v mean=%v", s.Min, s.Max, s.Mean)
	}
	if s.Count != 3 {
		t.Fatalf("expected count 3, got %d", s.Count)
	}
	if s.MinAt.Hour() != 10 || s.MaxAt.Hour() != 12 {
		t.Fatalf("unexpected extrema instants: minAt=%v maxAt=%v", s.MinAt, s.MaxAt)
	}

	// Sample standard deviation of 10, 20, 30 is 10.
	if math.Abs(s.Stdev-10.0) > 1e-9 {
		t.Fatalf("expected stdev 10, got %v", s.Stdev)
	}
}

// TestComputeEmptyInput verifies statistics over zero observations fail.
func TestComputeEmptyInput(t *testing.T) {
	if _, err := Compute(nil); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

// TestComputeSymbolFilter verifies only requested data types are summarized
// and that a requested type with no readings is absent, not zero-filled.
func TestComputeSymbolFilter(t *testing.T) {
	obs := []Observation{
		tsObs(SymbolTemperature, 10, 15.0),
		tsObs(SymbolHumidity, 10, 60.0),
	}

	stats, err := Compute(obs, SymbolTemperature, SymbolPressure)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := stats[SymbolHumidity]; ok {
		t.Fatal("humidity was not requested but appears in the result")
	}
	if _, ok := stats[SymbolPressure]; ok {
		t.Fatal("pressure has no readings but appears in the result")
	}
	if _, ok := stats[SymbolTemperature]; !ok {
		t.Fatal("expected a temperature summary")
	}

	// When none of the requested types has readings, the input is
	// effectively empty.
	if _, err := Compute(obs, SymbolPressure); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

// TestComputeSingleReading verifies a lone reading yields zero stdev instead
// of failing.
func TestComputeSingleReading(t *testing.T) {
	stats, err := Compute([]Observation{tsObs(SymbolPressure, 9, 1013.25)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := stats[SymbolPressure]
	if s.Stdev != 0 {
		t.Fatalf("expected zero stdev for one reading, got %v", s.Stdev)
	}
	if s.Min != s.Max || s.Min != 1013.25 {
		t.Fatalf("unexpected extrema: min=%v max=%v", s.Min, s.Max)
	}
}

// TestComputeMode verifies the mean-of-truncated-values convention.
func TestComputeMode(t *testing.T) {
	obs := []Observation{
		tsObs(SymbolTemperature, 10, 10.9),
		tsObs(SymbolTemperature, 11, 11.9),
	}
	stats, err := Compute(obs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mode := stats[SymbolTemperature].Mode; math.Abs(mode-10.5) > 1e-9 {
		t.Fatalf("expected mode 10.5, got %v", mode)
	}
}
