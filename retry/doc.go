// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package retry decides whether a failed attempt is retried, and how
// long to wait before retrying.
//
// The interface Policy combines a decision-maker, Decider, with a wait
// time calculator, Waiter. The client builds the policy for each call
// from the resolved request options with For:
//
//	policy := retry.For(resolved)
//
// which is equivalent to
//
//	decider := retry.Times(resolved.Retries).
//	               And(retry.ServerError.Or(retry.TransportErr))
//	waiter := retry.NewExpWaiter(resolved.BackoffFactor, retry.MaxWait)
//	policy := retry.NewPolicy(decider, waiter)
//
// A client error (4xx), or any other response below 500, is never
// retried.
package retry
