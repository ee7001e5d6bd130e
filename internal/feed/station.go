package feed

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stazionemeteococito/meteo-archive/internal/meteo"
)

// StationFeed implements the meteo.Feed interface for the weather station's
// HTTP feed: one CSV per data type plus last.json and report.txt, all served
// relative to a base URL.
type StationFeed struct {
	name    string
	baseURL string
	client  *http.Client
	backoff BackoffConfig
	circuit *gobreaker.CircuitBreaker
}

// NewStationFeed creates a feed client for the station publishing at baseURL.
func NewStationFeed(client *http.Client, baseURL string) *StationFeed {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "station-feed",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &StationFeed{
		name:    "station-feed",
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		backoff: BackoffConfig{
			MaxRetries:      3,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
		circuit: cb,
	}
}

func (f *StationFeed) Name() string {
	return f.name
}

// FetchObservations downloads every data type's CSV and returns all rows at
// or after that type's since instant, ascending by instant. Any transport
// failure aborts the whole fetch so a partial download never reaches the
// archive.
func (f *StationFeed) FetchObservations(ctx context.Context, since map[meteo.Symbol]time.Time) ([]meteo.Observation, error) {
	var all []meteo.Observation

	for _, dt := range meteo.DataTypes {
		resp, err := f.fetch(ctx, dt.FileName)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", dt.FileName, err)
		}

		obs, err := parseSeriesCSV(resp.Body, dt.Symbol, since[dt.Symbol])
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", dt.FileName, err)
		}

		all = append(all, obs...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Instant.Before(all[j].Instant)
	})

	return all, nil
}

// FetchSnapshot downloads last.json, the station's latest value per symbol.
func (f *StationFeed) FetchSnapshot(ctx context.Context) (meteo.Snapshot, error) {
	resp, err := f.fetch(ctx, "last.json")
	if err != nil {
		return nil, fmt.Errorf("fetch last.json: %w", err)
	}
	defer resp.Body.Close()

	var raw map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse last.json: %w", err)
	}

	snapshot := make(meteo.Snapshot, len(raw))
	for sym, v := range raw {
		if _, ok := meteo.FromSymbol(meteo.Symbol(sym)); ok {
			snapshot[meteo.Symbol(sym)] = v
		}
	}
	return snapshot, nil
}

// FetchReport downloads report.txt, the station's hardware report.
func (f *StationFeed) FetchReport(ctx context.Context) (string, error) {
	resp, err := f.fetch(ctx, "report.txt")
	if err != nil {
		return "", fmt.Errorf("fetch report.txt: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// parseSeriesCSV reads rows of the form "2006-01-02 15:04:05,value".
// Malformed rows are skipped; the station's feed historically contains a few.
func parseSeriesCSV(r io.Reader, sym meteo.Symbol, since time.Time) ([]meteo.Observation, error) {
	var obs []meteo.Observation

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.SplitN(strings.TrimSpace(scanner.Text()), ",", 2)
		if len(fields) < 2 {
			continue
		}

		instant, err := time.ParseInLocation(meteo.InstantLayout, fields[0], time.UTC)
		if err != nil {
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			continue
		}

		// Rows at exactly since are kept; the archive skips the one it
		// already holds.
		if !since.IsZero() && instant.Before(since) {
			continue
		}

		obs = append(obs, meteo.NewObservation(sym, instant, value))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return obs, nil
}
