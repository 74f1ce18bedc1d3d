package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-bulletin/internal/logging"
)

// Job is one invocation of the pipeline.
type Job func(ctx context.Context) error

// ErrNoZoneName is returned when an offset has no IANA equivalent.
var ErrNoZoneName = errors.New("offset has no IANA zone name; set TIMEZONE")

// Location resolves the zone cron expressions are evaluated in. gocron hands the zone to
// the cron parser by name, so it must be loadable with time.LoadLocation; fixed zones are not.
// An empty name falls back to UTC or Etc/GMT for whole-hour offsets.
func Location(name string, offset time.Duration) (*time.Location, error) {
	if name != "" {
		return time.LoadLocation(name)
	}
	if offset == 0 {
		return time.UTC, nil
	}
	if offset%time.Hour != 0 || offset < -12*time.Hour || offset > 14*time.Hour {
		return nil, fmt.Errorf("%v: %w", offset, ErrNoZoneName)
	}
	// Etc/GMT names carry the inverted sign.
	return time.LoadLocation(fmt.Sprintf("Etc/GMT%+d", -int(offset/time.Hour)))
}

// Scheduler triggers the job on a cron expression evaluated in the region's civil time.
type Scheduler struct {
	scheduler *gocron.Scheduler
	job       Job
	cronExpr  string
	timeout   time.Duration
}

// New creates a new Scheduler. loc must come from Location; timeout bounds each triggered run.
func New(cronExpr string, loc *time.Location, timeout time.Duration, job Job) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	s := gocron.NewScheduler(loc)
	// A slow run must not overlap the next tick.
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		job:       job,
		cronExpr:  cronExpr,
		timeout:   timeout,
	}
}

// Start schedules the job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Cron(s.cronExpr).Do(s.runOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	logging.Infof("scheduler: started with cron expression %q", s.cronExpr)
	return nil
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.job(ctx); err != nil {
		logging.Errorf("scheduler: run failed: %v", err)
	}
}

// NextRun returns when the job fires next.
func (s *Scheduler) NextRun() time.Time {
	_, next := s.scheduler.NextRun()
	return next
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
