package cron

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gilitu/attendance-backend-go/internal/pkg/clock"
)

// Job represents a scheduled job fired at a fixed local wall-clock time.
type Job struct {
	Name     string
	At       clock.TimeOfDay
	Weekdays []time.Weekday // nil means every day
	Fn       func(ctx context.Context) error
}

func (j Job) runsOn(day time.Weekday) bool {
	if len(j.Weekdays) == 0 {
		return true
	}
	for _, d := range j.Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// Scheduler owns the process-wide list of (trigger, handler) pairs and
// fires each job whose trigger minute matches the current local time.
type Scheduler struct {
	clock  clock.Clock
	jobs   []Job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewScheduler creates a new cron scheduler evaluating triggers against
// the given clock's zone.
func NewScheduler(clk clock.Clock) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		clock:  clk,
		jobs:   make([]Job, 0),
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob registers a job. A nil weekdays slice means the job runs daily.
func (s *Scheduler) AddJob(name string, at clock.TimeOfDay, weekdays []time.Weekday, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, Job{
		Name:     name,
		At:       at,
		Weekdays: weekdays,
		Fn:       fn,
	})
	slog.Info("Cron job registered", "name", name, "at", at.String(), "weekdays", weekdays)
}

// Start begins the trigger loop.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()

	s.mu.Lock()
	defer s.mu.Unlock()
	slog.Info("Cron scheduler started", "job_count", len(s.jobs))
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	slog.Info("Stopping cron scheduler...")
	s.cancel()
	s.wg.Wait()
	slog.Info("Cron scheduler stopped")
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	var lastFired string
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			now := s.clock.Now()
			// A minute may tick twice under clock skew; fire at most once.
			minute := now.Format("2006-01-02 15:04")
			if minute == lastFired {
				continue
			}
			lastFired = minute
			s.RunDue(s.ctx, now)
		}
	}
}

// RunDue executes every job whose trigger matches the given instant's
// minute and weekday. Exported so tests can drive the schedule directly.
func (s *Scheduler) RunDue(ctx context.Context, now time.Time) {
	s.mu.Lock()
	jobs := make([]Job, len(s.jobs))
	copy(jobs, s.jobs)
	s.mu.Unlock()

	tod := clock.TimeOfDayOf(now)
	for _, job := range jobs {
		if job.At.Hour() != tod.Hour() || job.At.Minute() != tod.Minute() {
			continue
		}
		if !job.runsOn(now.Weekday()) {
			continue
		}
		s.executeJob(ctx, job)
	}
}

// RunOnce runs all jobs once regardless of trigger times (useful for testing)
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.mu.Lock()
	jobs := make([]Job, len(s.jobs))
	copy(jobs, s.jobs)
	s.mu.Unlock()

	for _, job := range jobs {
		s.executeJob(ctx, job)
	}
}

// executeJob executes a job and logs results. One failing job never stops
// the others.
func (s *Scheduler) executeJob(ctx context.Context, job Job) {
	start := time.Now()
	slog.Debug("Cron job starting", "name", job.Name)

	if err := job.Fn(ctx); err != nil {
		slog.Error("Cron job failed", "name", job.Name, "error", err, "duration", time.Since(start))
	} else {
		slog.Debug("Cron job completed", "name", job.Name, "duration", time.Since(start))
	}
}
