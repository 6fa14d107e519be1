// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"time"

	"github.com/gogama/apipoll/request"
)

// A Policy controls if and how retries are done in an execution. After
// every attempt, a Policy decides whether a retry should be done and,
// if so, how long the wait should be before retrying.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines.
type Policy interface {
	Decider
	Waiter
}

type policy struct {
	decider Decider
	waiter  Waiter
}

// NewPolicy composes a Decider and a Waiter into a retry Policy.
func NewPolicy(d Decider, w Waiter) Policy {
	if d == nil {
		panic("apipoll/retry: nil decider")
	}
	if w == nil {
		panic("apipoll/retry: nil waiter")
	}
	return policy{decider: d, waiter: w}
}

// For returns the retry policy described by resolved options: up to
// o.Retries retries of transport failures and 5xx responses, with an
// exponential backoff based on o.BackoffFactor and capped at MaxWait.
// A negative backoff factor is treated as zero.
func For(o request.Resolved) Policy {
	factor := o.BackoffFactor
	if factor < 0 {
		factor = 0
	}
	return NewPolicy(
		Times(o.Retries).And(ServerError.Or(TransportErr)),
		NewExpWaiter(factor, MaxWait),
	)
}

func (p policy) Decide(e *request.Execution) bool {
	return p.decider.Decide(e)
}

func (p policy) Wait(e *request.Execution) time.Duration {
	return p.waiter.Wait(e)
}
