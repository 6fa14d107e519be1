// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/gogama/apipoll/header"
)

// Options configures a request, or the defaults for all requests made
// by a client.
//
// A nil field is unset. When options are layered with Merge or Resolve,
// a set field replaces the underlying value as a whole; fields are never
// combined (for example, Headers from a later layer replace the headers
// of an earlier layer rather than being appended to them).
//
// At most one request body is sent. If more than one of JSON, FormParams
// and Body is set, JSON takes precedence over FormParams, which takes
// precedence over Body.
type Options struct {
	// Timeout is the total time allowed for one attempt, from dialing
	// until the response body has been read. Zero means no limit.
	Timeout *time.Duration `validate:"omitempty,gte=0s"`

	// ConnectTimeout is the time allowed for establishing the
	// connection, including the TLS handshake. Zero means no limit.
	ConnectTimeout *time.Duration `validate:"omitempty,gte=0s"`

	// Headers are sent with each attempt in insertion order.
	Headers header.Headers `validate:"-"`

	// Retries is the maximum number of attempts made after the first
	// one.
	Retries *int `validate:"omitempty,gte=0"`

	// BackoffFactor is the base delay of the exponential backoff. The
	// delay before retry n (counting from 1) is BackoffFactor*2^(n-1),
	// capped at retry.MaxWait.
	BackoffFactor *time.Duration `validate:"omitempty,gte=0s"`

	// Verify enables verification of the server certificate chain and
	// host name.
	Verify *bool

	// FollowRedirects makes the client follow 3xx responses. When
	// false, a 3xx response is returned as-is.
	FollowRedirects *bool

	// MaxRedirects is the maximum number of redirects followed when
	// FollowRedirects is true.
	MaxRedirects *int `validate:"omitempty,gte=0"`

	// Query is appended to the request URL as a query string.
	Query Values `validate:"-"`

	// JSON, if non-nil, is serialized with encoding/json and sent as
	// the body with Content-Type application/json.
	JSON interface{} `validate:"-"`

	// FormParams, if non-nil, is URL-encoded and sent as the body with
	// Content-Type application/x-www-form-urlencoded.
	FormParams Values `validate:"-"`

	// Body, if non-nil, is sent verbatim as the body.
	Body *string
}

var validate = validator.New()

// Validate checks that every set numeric option is non-negative.
func (o Options) Validate() error {
	return validate.Struct(o)
}

// Defaults returns the built-in defaults which lie beneath every other
// layer of options.
func Defaults() Options {
	return Options{
		Timeout:         Duration(10 * time.Second),
		ConnectTimeout:  Duration(3 * time.Second),
		Headers:         header.Headers{},
		Retries:         Int(0),
		BackoffFactor:   Duration(1 * time.Second),
		Verify:          Bool(true),
		FollowRedirects: Bool(false),
		MaxRedirects:    Int(5),
	}
}

// Merge layers over on top of base and returns the result. Each field
// set in over replaces the same field in base.
func Merge(base, over Options) Options {
	if over.Timeout != nil {
		base.Timeout = over.Timeout
	}
	if over.ConnectTimeout != nil {
		base.ConnectTimeout = over.ConnectTimeout
	}
	if over.Headers != nil {
		base.Headers = over.Headers
	}
	if over.Retries != nil {
		base.Retries = over.Retries
	}
	if over.BackoffFactor != nil {
		base.BackoffFactor = over.BackoffFactor
	}
	if over.Verify != nil {
		base.Verify = over.Verify
	}
	if over.FollowRedirects != nil {
		base.FollowRedirects = over.FollowRedirects
	}
	if over.MaxRedirects != nil {
		base.MaxRedirects = over.MaxRedirects
	}
	if over.Query != nil {
		base.Query = over.Query
	}
	if over.JSON != nil {
		base.JSON = over.JSON
	}
	if over.FormParams != nil {
		base.FormParams = over.FormParams
	}
	if over.Body != nil {
		base.Body = over.Body
	}
	return base
}

// Resolved is a fully-resolved set of options, in which every setting
// has a concrete value.
type Resolved struct {
	Timeout         time.Duration
	ConnectTimeout  time.Duration
	Headers         header.Headers
	Retries         int
	BackoffFactor   time.Duration
	Verify          bool
	FollowRedirects bool
	MaxRedirects    int
	Query           Values
	JSON            interface{}
	FormParams      Values
	Body            *string
}

// Resolve merges layers, in order, on top of Defaults and returns the
// concrete result. Negative retry and redirect counts, and a negative
// backoff factor, are clamped to zero.
func Resolve(layers ...Options) Resolved {
	o := Defaults()
	for _, l := range layers {
		o = Merge(o, l)
	}
	return Resolved{
		Timeout:         *o.Timeout,
		ConnectTimeout:  *o.ConnectTimeout,
		Headers:         o.Headers,
		Retries:         nonNegative(*o.Retries),
		BackoffFactor:   nonNegativeDuration(*o.BackoffFactor),
		Verify:          *o.Verify,
		FollowRedirects: *o.FollowRedirects,
		MaxRedirects:    nonNegative(*o.MaxRedirects),
		Query:           o.Query,
		JSON:            o.JSON,
		FormParams:      o.FormParams,
		Body:            o.Body,
	}
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func nonNegativeDuration(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

// Duration returns a pointer to d.
func Duration(d time.Duration) *time.Duration { return &d }

// Seconds returns a pointer to the duration of s seconds.
func Seconds(s float64) *time.Duration {
	return Duration(time.Duration(s * float64(time.Second)))
}

// Int returns a pointer to n.
func Int(n int) *int { return &n }

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

// String returns a pointer to s.
func String(s string) *string { return &s }
