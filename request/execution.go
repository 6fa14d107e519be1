// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"net/http"
	"time"

	"github.com/gogama/apipoll/transient"
)

// An Execution represents the state of a single call to the retrying
// client: the plan being sent, the attempt in progress, and the outcome
// of the most recent attempt.
type Execution struct {
	// Plan is the plan being executed. It is never nil.
	Plan *Plan

	// Options are the resolved options the plan was built from.
	Options Resolved

	// Start is the time the execution started. It is assigned when the
	// execution starts and remains constant thereafter.
	Start time.Time

	// End is the time the execution ended. It holds the zero value until
	// the execution ends.
	End time.Time

	// Attempt is the zero-based index of the current attempt: zero on
	// the initial attempt, one on the first retry, and so on. After the
	// execution ends, Attempt holds the index of the last attempt made,
	// so the number of attempts made is Attempt+1.
	Attempt int

	// AttemptTimeouts counts the attempts which ended in a timeout.
	AttemptTimeouts int

	// Request is the HTTP request sent, or about to be sent, in the
	// current attempt.
	Request *http.Request

	// Response is the HTTP response received in the most recent
	// attempt. Its body has already been consumed; use Head and Body.
	// It is nil if the most recent attempt ended in an error, or if an
	// attempt is underway.
	Response *http.Response

	// Err is the transport error from the most recent attempt, or nil
	// if the most recent attempt received a complete response or an
	// attempt is underway.
	Err error

	// Head is the raw status line and header block of the most recent
	// response, in wire format.
	Head []byte

	// Body is the complete response body of the most recent response.
	Body []byte

	// Wait is the backoff delay before the next attempt. It is set
	// when a retry has been decided on, and reset to zero when the
	// next attempt starts.
	Wait time.Duration

	data context.Context
}

// StatusCode returns the status code of the most recent response, or
// zero if there is none.
func (e *Execution) StatusCode() int {
	if e.Response == nil {
		return 0
	}

	return e.Response.StatusCode
}

// Duration returns the time elapsed since the execution started, or the
// total duration of the execution if it has ended.
func (e *Execution) Duration() time.Duration {
	if !e.Started() {
		return time.Duration(0)
	} else if !e.Ended() {
		return time.Since(e.Start)
	}

	return e.End.Sub(e.Start)
}

// Started reports whether the execution has started.
func (e *Execution) Started() bool {
	return e.Start != (time.Time{})
}

// Ended reports whether the execution has ended.
func (e *Execution) Ended() bool {
	return e.End != (time.Time{})
}

// Timeout reports whether the most recent attempt ended in a timeout.
func (e *Execution) Timeout() bool {
	return transient.Categorize(e.Err) == transient.Timeout
}

// SetValue attaches a value to the execution, in the manner of
// context.WithValue. It is intended for event handlers which need to
// carry state from one event to another.
func (e *Execution) SetValue(key, value interface{}) {
	ctx := e.data
	if ctx == nil {
		ctx = context.Background()
	}

	e.data = context.WithValue(ctx, key, value)
}

// Value returns the value attached to the execution for key, or nil.
func (e *Execution) Value(key interface{}) interface{} {
	ctx := e.data
	if ctx == nil {
		return nil
	}

	return ctx.Value(key)
}
