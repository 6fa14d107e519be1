// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package httplog logs the progress of retrying client calls with
// zerolog.
package httplog

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/gogama/apipoll"
	"github.com/gogama/apipoll/request"
	"github.com/gogama/apipoll/transient"
)

type attemptStartKey struct{}

// Handlers returns a handler group which logs to log: each attempt at
// debug level, timeouts and retry waits at warn level, and the outcome
// of the call at info level, or error level if it failed.
func Handlers(log zerolog.Logger) *apipoll.HandlerGroup {
	g := &apipoll.HandlerGroup{}
	AddTo(g, log)
	return g
}

// AddTo appends the logging handlers to an existing group. A logger
// attached to the call's context with zerolog's WithContext takes
// precedence over log, so per-call fields reach every entry.
func AddTo(g *apipoll.HandlerGroup, log zerolog.Logger) {
	g.PushBack(apipoll.BeforeAttempt, apipoll.HandlerFunc(func(_ apipoll.Event, e *request.Execution) {
		l := loggerFor(e, &log)
		e.SetValue(attemptStartKey{}, time.Now())
		l.Debug().
			Str("method", e.Plan.Method).
			Str("url", e.Plan.URL.String()).
			Int("attempt", e.Attempt+1).
			Msg("sending request")
	}))
	g.PushBack(apipoll.AfterAttempt, apipoll.HandlerFunc(func(_ apipoll.Event, e *request.Execution) {
		l := loggerFor(e, &log)
		ev := l.Debug().
			Int("attempt", e.Attempt+1).
			Dur("latency", attemptLatency(e))
		if e.Err != nil {
			ev = ev.Err(e.Err).Str("category", transient.Categorize(e.Err).String())
		} else {
			ev = ev.Int("status", e.StatusCode()).Int("bytes", len(e.Body))
		}
		ev.Msg("attempt finished")
	}))
	g.PushBack(apipoll.AfterAttemptTimeout, apipoll.HandlerFunc(func(_ apipoll.Event, e *request.Execution) {
		l := loggerFor(e, &log)
		l.Warn().
			Int("attempt", e.Attempt+1).
			Int("timeouts", e.AttemptTimeouts).
			Dur("timeout", e.Options.Timeout).
			Msg("attempt timed out")
	}))
	g.PushBack(apipoll.BeforeRetryWait, apipoll.HandlerFunc(func(_ apipoll.Event, e *request.Execution) {
		l := loggerFor(e, &log)
		ev := l.Warn().
			Int("retry", e.Attempt+1).
			Int("retries", e.Options.Retries).
			Dur("delay", e.Wait)
		if e.Err != nil {
			ev = ev.Str("category", transient.Categorize(e.Err).String())
		} else {
			ev = ev.Int("status", e.StatusCode())
		}
		ev.Msg("retrying after backoff")
	}))
	g.PushBack(apipoll.AfterPlanTimeout, apipoll.HandlerFunc(func(_ apipoll.Event, e *request.Execution) {
		l := loggerFor(e, &log)
		l.Warn().
			Str("url", e.Plan.URL.String()).
			Dur("elapsed", e.Duration()).
			Msg("call deadline exceeded")
	}))
	g.PushBack(apipoll.AfterExecutionEnd, apipoll.HandlerFunc(func(_ apipoll.Event, e *request.Execution) {
		l := loggerFor(e, &log)
		var ev *zerolog.Event
		if e.Err != nil || e.Response == nil {
			ev = l.Error().Err(e.Err)
		} else {
			ev = l.Info().Int("status", e.StatusCode())
		}
		ev.Str("method", e.Plan.Method).
			Str("url", e.Plan.URL.String()).
			Int("attempts", e.Attempt+1).
			Dur("duration", e.Duration()).
			Msg("request complete")
	}))
}

func loggerFor(e *request.Execution, fallback *zerolog.Logger) *zerolog.Logger {
	l := zerolog.Ctx(e.Plan.Context())
	if l == zerolog.DefaultContextLogger || l.GetLevel() == zerolog.Disabled {
		return fallback
	}
	return l
}

func attemptLatency(e *request.Execution) time.Duration {
	start, ok := e.Value(attemptStartKey{}).(time.Time)
	if !ok {
		return 0
	}
	return time.Since(start)
}
