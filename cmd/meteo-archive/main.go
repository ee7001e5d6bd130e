package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/stazionemeteococito/meteo-archive/internal/api/http"
	"github.com/stazionemeteococito/meteo-archive/internal/archive"
	"github.com/stazionemeteococito/meteo-archive/internal/config"
	"github.com/stazionemeteococito/meteo-archive/internal/excerpt"
	"github.com/stazionemeteococito/meteo-archive/internal/feed"
	"github.com/stazionemeteococito/meteo-archive/internal/meteo"
	"github.com/stazionemeteococito/meteo-archive/internal/scheduler"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound feed calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Durable archive when a path is configured, in-memory otherwise.
	var store meteo.Store
	if cfg.ArchiveDBPath != "" {
		sqlStore, err := archive.NewSQLiteStore(cfg.ArchiveDBPath)
		if err != nil {
			log.Fatalf("failed to open archive: %v", err)
		}
		store = sqlStore
	} else {
		store = archive.NewMemoryStore()
	}
	defer store.Close()

	// Station feed with resilience (backoff + circuit breaker).
	stationFeed := feed.NewStationFeed(httpClient, cfg.FeedBaseURL)

	// Core service orchestrating feed and archive.
	service := meteo.NewService(store, stationFeed)
	excerpts := excerpt.New(service)

	// Pull the feed once at startup so queries have data to work with.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	if added, err := service.Update(startupCtx); err != nil {
		log.Printf("initial update failed: %v", err)
	} else {
		log.Printf("initial update added %d observations", added)
	}
	startupCancel()

	// Scheduler that periodically downloads and merges new readings.
	sched := scheduler.New(cfg.FetchInterval, service)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "meteo-archive",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "meteo-archive",
			"station": cfg.StationName,
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service, excerpts)

	// Start server with graceful shutdown
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
