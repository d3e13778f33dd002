package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/evergreenfarmers/storefront/pkg/logger"
	"github.com/evergreenfarmers/storefront/pkg/metrics"
)

const defaultInterval = 24 * time.Hour

// ServiceParams configure the maintenance scheduler.
type ServiceParams struct {
	Logger   *logger.Logger
	Jobs     []Job
	Lock     Lock
	Metrics  *metrics.CronJobMetrics
	Interval time.Duration
}

// Service runs the maintenance jobs on a fixed cadence, one cycle at a time
// across every worker that shares its Lock.
type Service struct {
	logg     *logger.Logger
	jobs     jobSet
	lock     Lock
	metrics  *metrics.CronJobMetrics
	interval time.Duration
	now      func() time.Time
}

// CycleReport summarises one pass over the jobs.
type CycleReport struct {
	Skipped   bool
	Succeeded []string
	Failed    []string
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	if params.Lock == nil {
		return nil, errors.New("lock required")
	}
	jobs, err := newJobSet(params.Jobs)
	if err != nil {
		return nil, err
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Service{
		logg:     params.Logger,
		jobs:     jobs,
		lock:     params.Lock,
		metrics:  params.Metrics,
		interval: interval,
		now:      time.Now,
	}, nil
}

// Run executes a cycle straight away and then once per interval until ctx
// is cancelled.
func (s *Service) Run(ctx context.Context) error {
	s.cycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "cron.stopped")
			return ctx.Err()
		case <-ticker.C:
			s.cycle(ctx)
		}
	}
}

func (s *Service) cycle(ctx context.Context) {
	if _, err := s.RunOnce(ctx); err != nil {
		s.logg.Error(ctx, "cron.cycle_failed", err)
	}
}

// RunOnce makes a single pass over every job. A job failure is recorded in
// the report and does not stop the jobs after it; only lock errors are
// returned.
func (s *Service) RunOnce(ctx context.Context) (CycleReport, error) {
	var report CycleReport

	release, held, err := s.lock.Acquire(ctx)
	if err != nil {
		return report, fmt.Errorf("acquire cron lock: %w", err)
	}
	if !held {
		report.Skipped = true
		s.logg.Info(ctx, "cron.cycle_skipped_locked")
		return report, nil
	}
	defer func() {
		if err := release(ctx); err != nil {
			s.logg.Error(ctx, "cron.lock_release_failed", err)
		}
	}()

	for _, job := range s.jobs {
		if ctx.Err() != nil {
			break
		}
		if s.runJob(ctx, job) {
			report.Succeeded = append(report.Succeeded, job.Name())
		} else {
			report.Failed = append(report.Failed, job.Name())
		}
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"succeeded": len(report.Succeeded),
		"failed":    len(report.Failed),
	}), "cron.cycle_completed")
	return report, nil
}

func (s *Service) runJob(ctx context.Context, job Job) bool {
	name := job.Name()
	jobCtx := s.logg.WithField(ctx, "job", name)

	started := s.now()
	err := job.Run(jobCtx)
	took := s.now().Sub(started)

	s.metrics.ObserveDuration(name, took)
	jobCtx = s.logg.WithField(jobCtx, "duration_ms", took.Milliseconds())
	if err != nil {
		s.metrics.IncRun(name, metrics.ResultError)
		s.logg.Error(jobCtx, "cron.job_failed", err)
		return false
	}
	s.metrics.IncRun(name, metrics.ResultSuccess)
	s.logg.Info(jobCtx, "cron.job_completed")
	return true
}
