// Package excerpt renders the archive's data as the station's Italian
// text summaries.
package excerpt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/stazionemeteococito/meteo-archive/internal/meteo"
)

// displayLayout is the instant format used in the Italian excerpts.
const displayLayout = "02/01/2006 15:04:05"

// Generator builds Italian text excerpts from the archive service.
type Generator struct {
	svc *meteo.Service
}

// New creates a Generator over the given service.
func New(svc *meteo.Service) *Generator {
	return &Generator{svc: svc}
}

// Current renders the latest reading of every data type.
func (g *Generator) Current() ([]string, error) {
	latest, err := g.svc.Current()
	if err != nil {
		return nil, err
	}

	var newest time.Time
	for _, o := range latest {
		if o.Instant.After(newest) {
			newest = o.Instant
		}
	}

	var b strings.Builder
	b.WriteString("Dati Meteorologici:\n")
	b.WriteString("Ultimo aggiornamento: " + newest.Format(displayLayout) + "\n")
	b.WriteString("--------------")
	for _, dt := range meteo.DataTypes {
		o, ok := latest[dt.Symbol]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "\n%s: %.2f %s", dt.ItalianName, o.Value, dt.Unit)
	}

	return []string{b.String()}, nil
}

// Day renders one excerpt per data type over today's observations.
func (g *Generator) Day() ([]string, error) {
	obs, err := g.svc.Day()
	if err != nil {
		return nil, err
	}
	return g.summaries("Dati di oggi", obs)
}

// Week renders one excerpt per data type over this week's observations.
func (g *Generator) Week() ([]string, error) {
	obs, err := g.svc.Week()
	if err != nil {
		return nil, err
	}
	return g.summaries("Dati di questa settimana", obs)
}

// Month renders one excerpt per data type over this month's observations.
func (g *Generator) Month() ([]string, error) {
	obs, err := g.svc.Month()
	if err != nil {
		return nil, err
	}
	return g.summaries("Dati di questo mese", obs)
}

// Report returns the station's hardware report as a single excerpt.
func (g *Generator) Report(ctx context.Context) ([]string, error) {
	report, err := g.svc.Report(ctx)
	if err != nil {
		return nil, err
	}
	return []string{report}, nil
}

func (g *Generator) summaries(title string, obs []meteo.Observation) ([]string, error) {
	stats, err := meteo.Compute(obs)
	if err != nil {
		return nil, err
	}

	// Registry order keeps the (i/n) numbering stable between runs.
	var present []meteo.DataType
	for _, dt := range meteo.DataTypes {
		if _, ok := stats[dt.Symbol]; ok {
			present = append(present, dt)
		}
	}

	excerpts := make([]string, 0, len(present))
	for i, dt := range present {
		s := stats[dt.Symbol]
		var b strings.Builder
		fmt.Fprintf(&b, "(%d/%d) %s\n", i+1, len(present), title)
		fmt.Fprintf(&b, "---%s---\n", dt.ItalianName)
		fmt.Fprintf(&b, "Media: %.2f %s\n", s.Mean, dt.Unit)
		fmt.Fprintf(&b, "Moda: %.2f %s\n", s.Mode, dt.Unit)
		fmt.Fprintf(&b, "Massimo: %.2f %s (%s)\n", s.Max, dt.Unit, s.MaxAt.Format(displayLayout))
		fmt.Fprintf(&b, "Minimo: %.2f %s (%s)\n", s.Min, dt.Unit, s.MinAt.Format(displayLayout))
		fmt.Fprintf(&b, "Deviazione Standard: %.2f %s\n", s.Stdev, dt.Unit)
		fmt.Fprintf(&b, "Numero di rilevazioni: %d", s.Count)
		excerpts = append(excerpts, b.String())
	}

	return excerpts, nil
}
