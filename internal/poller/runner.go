// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package poller

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gogama/apipoll"
)

// A Runner runs jobs with a retrying client.
type Runner struct {
	Client apipoll.Requester
	Log    zerolog.Logger
}

// Run prepares the job's sinks, sends its request and, if the response
// status is 2xx, hands the response to each sink in turn, stopping at
// the first sink that fails. A non-2xx status is logged and is not an
// error. Failure to get any response is returned.
func (r *Runner) Run(ctx context.Context, job Job) error {
	log := r.Log.With().
		Str("job", job.Name).
		Str("run_id", uuid.NewString()).
		Logger()

	for _, sink := range job.Sinks {
		if p, ok := sink.(Preparer); ok {
			if err := p.Prepare(); err != nil {
				log.Error().Err(err).Msg("failed to prepare storage")
				return fmt.Errorf("poller: job %s: %w", job.Name, err)
			}
		}
	}

	resp, err := r.Client.Request(log.WithContext(ctx), job.Method, job.URL(), job.Options)
	if err != nil {
		log.Error().Err(err).Msg("poll failed")
		return fmt.Errorf("poller: job %s: %w", job.Name, err)
	}

	if !resp.IsSuccess() {
		log.Warn().Int("status", resp.Status()).Msgf("API returned %d", resp.Status())
		return nil
	}

	for _, sink := range job.Sinks {
		if err := sink.Save(log, resp); err != nil {
			log.Error().Err(err).Msg("failed to save results")
			return fmt.Errorf("poller: job %s: %w", job.Name, err)
		}
	}
	return nil
}

// RunAll runs the jobs concurrently and waits for all of them. It
// returns the first error, if any.
func (r *Runner) RunAll(ctx context.Context, jobs ...Job) error {
	var g errgroup.Group
	for _, job := range jobs {
		g.Go(func() error {
			return r.Run(ctx, job)
		})
	}
	return g.Wait()
}
