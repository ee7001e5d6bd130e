package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// defaultFeedBaseURL is the station's public data feed.
const defaultFeedBaseURL = "https://raw.githubusercontent.com/StazioneMeteoCocito/dati/main"

type AppConfig struct {
	// FeedBaseURL is where the station publishes its CSV feed.
	FeedBaseURL string

	// StationName is used in logs and the health endpoint.
	StationName string

	// FetchInterval controls how often the archive pulls new data.
	FetchInterval time.Duration

	// HTTPTimeout applies to outbound feed requests.
	HTTPTimeout time.Duration

	// ArchiveDBPath is the SQLite archive file. Empty keeps the archive in memory.
	ArchiveDBPath string

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.FeedBaseURL = getenvDefault("FEED_BASE_URL", defaultFeedBaseURL)
	cfg.StationName = getenvDefault("STATION_NAME", "Stazione Meteo Cocito")

	// Fetch interval: default 15 minutes, matching the station's sampling cycle.
	intervalStr := getenvDefault("FETCH_INTERVAL", "15m")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_INTERVAL: %w", err)
	}
	cfg.FetchInterval = interval

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "30s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	// Setting ARCHIVE_DB_PATH to an empty string keeps the archive in memory,
	// so the default only applies when the variable is unset.
	if path, ok := os.LookupEnv("ARCHIVE_DB_PATH"); ok {
		cfg.ArchiveDBPath = path
	} else {
		cfg.ArchiveDBPath = "meteo-archive.db"
	}
	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
