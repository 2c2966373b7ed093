package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"TechPortfolio/internal/ports"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// CronScheduler runs a job on a standard 5-field cron expression.
type CronScheduler struct {
	spec       string
	loc        *time.Location
	runOnStart bool
	logger     *slog.Logger

	mu   sync.Mutex
	cron *cron.Cron
	done chan struct{}
	jobs sync.WaitGroup
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// Option customises a CronScheduler.
type Option func(*CronScheduler)

// WithRunOnStart triggers the job once right after Start.
func WithRunOnStart() Option {
	return func(c *CronScheduler) { c.runOnStart = true }
}

// WithLogger attaches a logger for schedule diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *CronScheduler) { c.logger = logger }
}

// NewCronScheduler builds a scheduler configured via cron expression string.
func NewCronScheduler(spec string, loc *time.Location, opts ...Option) *CronScheduler {
	if loc == nil {
		loc = time.UTC
	}
	c := &CronScheduler{spec: spec, loc: loc}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Next reports the first activation strictly after from.
func (c *CronScheduler) Next(from time.Time) (time.Time, error) {
	sched, err := parser.Parse(c.spec)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse cron expression %q: %w", c.spec, err)
	}
	return sched.Next(from.In(c.loc)), nil
}

// Start registers job and begins dispatching; a second call is a no-op.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cron != nil {
		return nil
	}

	sched, err := parser.Parse(c.spec)
	if err != nil {
		return fmt.Errorf("parse cron expression %q: %w", c.spec, err)
	}

	cr := cron.New(cron.WithParser(parser), cron.WithLocation(c.loc))
	cr.Schedule(sched, cron.FuncJob(func() {
		job(time.Now().In(c.loc))
	}))
	cr.Start()
	c.cron = cr
	c.done = make(chan struct{})

	if c.logger != nil {
		now := time.Now().In(c.loc)
		c.logger.Info("scheduler started", "cron", c.spec, "next_run", sched.Next(now))
	}

	if c.runOnStart {
		c.jobs.Add(1)
		go func() {
			defer c.jobs.Done()
			job(time.Now().In(c.loc))
		}()
	}

	go func(done <-chan struct{}) {
		select {
		case <-ctx.Done():
			_ = c.Stop(context.Background())
		case <-done:
		}
	}(c.done)

	return nil
}

// Stop halts dispatching and waits for running jobs until ctx expires.
func (c *CronScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	cr, done := c.cron, c.done
	c.cron, c.done = nil, nil
	c.mu.Unlock()

	if cr == nil {
		return nil
	}
	close(done)

	finished := make(chan struct{})
	go func() {
		<-cr.Stop().Done()
		c.jobs.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("stop scheduler: %w", ctx.Err())
	}
}
