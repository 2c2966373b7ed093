package usecase

import (
	"context"
	"time"

	"TechPortfolio/internal/ports"
)

// ImportScheduler wires the cron driver with the importer use case.
type ImportScheduler struct {
	driver   ports.Scheduler
	importer *Importer
}

// NewImportScheduler returns a helper to start/stop recurring imports.
func NewImportScheduler(driver ports.Scheduler, importer *Importer) *ImportScheduler {
	return &ImportScheduler{driver: driver, importer: importer}
}

// Start registers the importer with the provided scheduler.
func (s *ImportScheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.importer == nil {
		return nil
	}

	job := func(trigger time.Time) {
		// ImportOnce logs and counts its own failures.
		_, _ = s.importer.ImportOnce(ctx, trigger)
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *ImportScheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
