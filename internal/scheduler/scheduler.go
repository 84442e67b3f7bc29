package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// Scheduler runs jobs on cron schedules. A tick that fires while the same
// job is still running is skipped.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger
}

func New(logger *slog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(),
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
}

// Add registers job under a standard five-field spec or a descriptor such as
// "@every 30m".
func (s *Scheduler) Add(spec, name string, job Job) error {
	var busy atomic.Bool
	_, err := s.cron.AddFunc(spec, func() {
		s.run(name, job, &busy)
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	s.logger.Info("job scheduled", "job", name, "schedule", spec)
	return nil
}

func (s *Scheduler) run(name string, job Job, busy *atomic.Bool) {
	if !busy.CompareAndSwap(false, true) {
		s.logger.Warn("job skipped, previous run still active", "job", name)
		return
	}
	defer busy.Store(false)

	start := time.Now()
	if err := job(s.ctx); err != nil {
		s.logger.Error("scheduled job failed", "job", name, "error", err)
		return
	}
	s.logger.Info("scheduled job complete", "job", name, "duration", time.Since(start).String())
}

// Len reports the number of registered jobs.
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels the context handed to running jobs and returns a context that
// is done once they have returned.
func (s *Scheduler) Stop() context.Context {
	s.cancel()
	return s.cron.Stop()
}
