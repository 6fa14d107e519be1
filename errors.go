// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package apipoll

import (
	"fmt"

	"github.com/gogama/apipoll/request"
	"github.com/gogama/apipoll/transient"
)

// A RequestError reports a call that produced no response: the request
// was invalid, every attempt allowed ended in a transport failure, or
// the context ended first.
type RequestError struct {
	Method string
	URL    string
	// Attempts is the number of attempts made. It is zero when the
	// request was rejected before sending.
	Attempts int
	// Category classifies the final transport failure.
	Category transient.Category
	Err      error
}

func newRequestError(e *request.Execution, attempts int) *RequestError {
	return &RequestError{
		Method:   e.Plan.Method,
		URL:      e.Plan.URL.String(),
		Attempts: attempts,
		Category: transient.Categorize(e.Err),
		Err:      e.Err,
	}
}

func (e *RequestError) Error() string {
	if e.Attempts == 0 {
		return fmt.Sprintf("apipoll: invalid request %s %s: %v", e.Method, e.URL, e.Err)
	}
	return fmt.Sprintf("apipoll: %s %s failed after %d attempt(s) [%s]: %v",
		e.Method, e.URL, e.Attempts, e.Category, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the final attempt timed out.
func (e *RequestError) Timeout() bool {
	return e.Category == transient.Timeout
}

// A ResponseError reports a retry loop which ended with neither a
// response nor a transport failure. Under the client's attempt counting
// this does not happen; the type exists so that it cannot go unnoticed
// if it ever does.
type ResponseError struct {
	Method   string
	URL      string
	Attempts int
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("apipoll: %s %s: retries exhausted after %d attempt(s) without a response",
		e.Method, e.URL, e.Attempts)
}
