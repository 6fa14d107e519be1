// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"time"

	"github.com/gogama/apipoll/request"
)

// MaxWait is the longest backoff delay the client will sleep before a
// retry.
const MaxWait = 30 * time.Second

// A Waiter specifies how long to wait before retrying a failed attempt.
//
// Implementations of Waiter must be safe for concurrent use by multiple
// goroutines.
//
// The client will not call the Waiter on a retry policy if the policy
// Decider returned false.
type Waiter interface {
	Wait(e *request.Execution) time.Duration
}

// NewExpWaiter constructs a Waiter implementing an exponential backoff
// formula without jitter.
//
// The wait before retry n, counting the first retry as n=1, is
//
//	min(factor * 2**(n-1), max)
//
// Since Execution.Attempt is the zero-based index of the attempt which
// just failed, that is min(factor * 2**e.Attempt, max).
//
// Factor and max must not be negative. A zero factor means retries
// happen immediately.
func NewExpWaiter(factor, max time.Duration) Waiter {
	if factor < 0 {
		panic("apipoll/retry: factor must not be negative")
	}
	if max < 0 {
		panic("apipoll/retry: max must not be negative")
	}
	return expWaiter{
		factor: factor,
		max:    max,
	}
}

type expWaiter struct {
	factor time.Duration
	max    time.Duration
}

func (w expWaiter) Wait(e *request.Execution) time.Duration {
	if w.factor == 0 {
		return 0
	}

	if e.Attempt >= 63 {
		return w.max
	}
	exp := int64(1) << e.Attempt

	d := int64(w.factor) * exp
	if d/exp != int64(w.factor) || d > int64(w.max) {
		return w.max
	}

	return time.Duration(d)
}
