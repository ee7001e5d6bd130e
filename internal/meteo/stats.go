package meteo

import (
	"errors"
	"math"
	"time"
)

// ErrEmptyInput is returned when statistics are requested over zero observations.
var ErrEmptyInput = errors.New("no observations to summarize")

// Summary holds the descriptive statistics of one data type's series.
type Summary struct {
	Min   float64   `json:"min"`
	MinAt time.Time `json:"minAt"`
	Max   float64   `json:"max"`
	MaxAt time.Time `json:"maxAt"`
	Mean  float64   `json:"mean"`
	Stdev float64   `json:"stdev"`
	Mode  float64   `json:"mode"`
	Count int       `json:"count"`
}

// Compute summarizes the given observations per data type. When symbols are
// given, only those data types are summarized; observations of other types
// are ignored. A requested symbol with no observations is absent from the
// result rather than zero-filled.
//
// Stdev is the sample standard deviation (zero for a single reading). Mode
// follows the station's convention of the mean over integer-truncated values.
func Compute(obs []Observation, symbols ...Symbol) (map[Symbol]Summary, error) {
	if len(obs) == 0 {
		return nil, ErrEmptyInput
	}

	wanted := func(Symbol) bool { return true }
	if len(symbols) > 0 {
		set := make(map[Symbol]bool, len(symbols))
		for _, s := range symbols {
			set[s] = true
		}
		wanted = func(s Symbol) bool { return set[s] }
	}

	values := make(map[Symbol][]float64)
	result := make(map[Symbol]Summary)

	for _, o := range obs {
		if !wanted(o.Symbol) {
			continue
		}

		sum, ok := result[o.Symbol]
		if !ok {
			sum = Summary{
				Min:   o.Value,
				MinAt: o.Instant,
				Max:   o.Value,
				MaxAt: o.Instant,
			}
		}

		if o.Value > sum.Max {
			sum.Max = o.Value
			sum.MaxAt = o.Instant
		}
		if o.Value < sum.Min {
			sum.Min = o.Value
			sum.MinAt = o.Instant
		}
		sum.Count++
		result[o.Symbol] = sum

		values[o.Symbol] = append(values[o.Symbol], o.Value)
	}

	if len(result) == 0 {
		return nil, ErrEmptyInput
	}

	for sym, sum := range result {
		vs := values[sym]

		var total, truncated float64
		for _, v := range vs {
			total += v
			truncated += math.Trunc(v)
		}
		n := float64(len(vs))
		sum.Mean = total / n
		sum.Mode = truncated / n

		if len(vs) > 1 {
			var sq float64
			for _, v := range vs {
				d := v - sum.Mean
				sq += d * d
			}
			sum.Stdev = math.Sqrt(sq / (n - 1))
		}

		result[sym] = sum
	}

	return result, nil
}
