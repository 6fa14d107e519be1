// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"time"

	"github.com/gogama/apipoll/request"
)

// A Policy tells the retrying client how long the next attempt may take,
// covering connect, send, and the full read of the response body.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines.
type Policy interface {
	Timeout(e *request.Execution) time.Duration
}

// Infinite never times out.
var Infinite Policy = Fixed(1<<63 - 1)

// Fixed returns a policy giving every attempt the same budget d.
func Fixed(d time.Duration) Policy {
	return fixed(d)
}

// For returns the policy for a set of resolved request options. A zero
// Timeout means the attempt is never cut short.
func For(o request.Resolved) Policy {
	if o.Timeout <= 0 {
		return Infinite
	}

	return Fixed(o.Timeout)
}

type fixed time.Duration

func (p fixed) Timeout(_ *request.Execution) time.Duration {
	return time.Duration(p)
}
