// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// A Scheduler runs jobs repeatedly at a fixed interval.
type Scheduler struct {
	runner *Runner
	every  time.Duration
}

// NewScheduler returns a scheduler which runs jobs with r every interval.
func NewScheduler(r *Runner, every time.Duration) (*Scheduler, error) {
	if every <= 0 {
		return nil, errors.New("poller: interval must be positive")
	}
	return &Scheduler{runner: r, every: every}, nil
}

// Run starts every job immediately and then once per interval until ctx
// is done. A job never overlaps with itself: a run that is due while
// the previous one is still going is rescheduled. Failed runs are
// logged by the runner and do not stop the schedule.
func (s *Scheduler) Run(ctx context.Context, jobs ...Job) error {
	if len(jobs) == 0 {
		return errors.New("poller: no jobs to schedule")
	}

	gs, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("poller: failed to create scheduler: %w", err)
	}

	for _, job := range jobs {
		_, err = gs.NewJob(
			gocron.DurationJob(s.every),
			gocron.NewTask(func() {
				_ = s.runner.Run(ctx, job)
			}),
			gocron.WithName(job.Name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
			gocron.WithStartAt(gocron.WithStartImmediately()),
		)
		if err != nil {
			_ = gs.Shutdown()
			return fmt.Errorf("poller: failed to schedule job %s: %w", job.Name, err)
		}
	}

	s.runner.Log.Info().
		Dur("every", s.every).
		Int("jobs", len(jobs)).
		Msg("scheduler started")
	gs.Start()

	<-ctx.Done()

	if err = gs.Shutdown(); err != nil {
		return fmt.Errorf("poller: scheduler shutdown: %w", err)
	}
	s.runner.Log.Info().Msg("scheduler stopped")
	return nil
}
