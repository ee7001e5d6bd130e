package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/stazionemeteococito/meteo-archive/internal/meteo"
)

// updateTimeout bounds one full download-and-merge cycle.
const updateTimeout = 2 * time.Minute

// Scheduler periodically runs the archive's incremental update.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *meteo.Service
	interval  time.Duration
}

// New creates a new Scheduler.
func New(interval time.Duration, service *meteo.Service) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		interval:  interval,
	}
}

// Start schedules the periodic update job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		log.Println("scheduler: running archive update job")

		ctx, cancel := context.WithTimeout(context.Background(), updateTimeout)
		defer cancel()

		added, err := s.service.Update(ctx)
		if err != nil {
			log.Printf("scheduler: update failed: %v", err)
			return
		}
		log.Printf("scheduler: update job completed, %d observations added", added)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
