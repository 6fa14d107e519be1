// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package apipoll

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gogama/apipoll/request"
	"github.com/gogama/apipoll/response"
	"github.com/gogama/apipoll/retry"
	"github.com/gogama/apipoll/timeout"
	"github.com/gogama/apipoll/transport"
)

// An HTTPDoer implements a Do method in the same manner as the GoLang
// standard library http.Client from the net/http package.
type HTTPDoer interface {
	// Do sends an HTTP request and returns an HTTP response. It must
	// follow the contract documented on http.Client.Do, and in
	// particular must not return an error for a non-2xx status.
	Do(r *http.Request) (*http.Response, error)
}

var emptyHandlers = HandlerGroup{}

// A Client is an HTTP client with retry support.
//
// A Client holds read-only default options, fixed at construction.
// Every call merges its own options over those defaults field by field,
// and the merged options decide the timeout, the retry count and
// backoff, TLS verification, and redirect handling for that call alone.
//
// Attempts within a call are sequential. A transport failure, or a
// response with status 500 or above, is retried while retries remain,
// after an exponential backoff of BackoffFactor·2^(n-1) capped at 30
// seconds before retry n. A 4xx status is never retried. After retries
// run out, the last response received is returned as a normal result,
// whatever its status.
//
// Client is safe for concurrent use by multiple goroutines.
type Client struct {
	defaults request.Options
	doer     HTTPDoer
	cache    *transport.Cache
	handlers *HandlerGroup
}

// A ClientOption configures a Client under construction.
type ClientOption func(*Client)

// WithHTTPDoer makes the client send every attempt through d instead of
// through a transport built from the merged options. Connect timeout,
// TLS verification and redirect options are then d's responsibility.
func WithHTTPDoer(d HTTPDoer) ClientOption {
	return func(c *Client) {
		c.doer = d
	}
}

// WithHandlers installs a handler group whose handlers run at the
// designated events of every call.
func WithHandlers(g *HandlerGroup) ClientOption {
	return func(c *Client) {
		c.handlers = g
	}
}

// WithTransportCache shares a transport cache between clients, so that
// clients with compatible options share connections.
func WithTransportCache(cache *transport.Cache) ClientOption {
	return func(c *Client) {
		c.cache = cache
	}
}

// NewClient returns a client using defaults as its default options.
//
// NewClient fails if defaults are invalid, or if the HTTP transport for
// the defaults cannot be built.
func NewClient(defaults request.Options, opts ...ClientOption) (*Client, error) {
	if err := defaults.Validate(); err != nil {
		return nil, fmt.Errorf("apipoll: invalid client defaults: %w", err)
	}

	c := &Client{
		defaults: defaults,
		handlers: &emptyHandlers,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.handlers == nil {
		c.handlers = &emptyHandlers
	}
	if c.doer == nil {
		if c.cache == nil {
			c.cache = &transport.Cache{}
		}
		if _, err := c.cache.Get(transport.ConfigFor(request.Resolve(defaults))); err != nil {
			return nil, fmt.Errorf("apipoll: transport unavailable: %w", err)
		}
	}

	return c, nil
}

// Defaults returns the client's default options.
func (c *Client) Defaults() request.Options {
	return c.defaults
}

// Request sends a request, retrying as the merged options direct, and
// returns the last response received.
//
// Request returns a *RequestError if the options, method or URL are
// invalid (no attempt is made), if the final attempt ended in a
// transport failure, or if ctx ended before a response was obtained.
// A non-2xx status is not an error.
func (c *Client) Request(ctx context.Context, method, url string, o request.Options) (*response.Response, error) {
	if err := o.Validate(); err != nil {
		return nil, &RequestError{Method: method, URL: url, Err: err}
	}
	resolved := request.Resolve(c.defaults, o)
	p, err := request.NewPlan(ctx, method, url, resolved)
	if err != nil {
		return nil, &RequestError{Method: method, URL: url, Err: err}
	}

	e, err := c.Do(p, resolved)
	if err != nil {
		return nil, err
	}

	return response.New(e.StatusCode(), e.Head, e.Body), nil
}

// Get is Request with method GET.
func (c *Client) Get(ctx context.Context, url string, o request.Options) (*response.Response, error) {
	return c.Request(ctx, http.MethodGet, url, o)
}

// Post is Request with method POST.
func (c *Client) Post(ctx context.Context, url string, o request.Options) (*response.Response, error) {
	return c.Request(ctx, http.MethodPost, url, o)
}

// Do executes a prepared plan with resolved options and returns the
// final state of the execution.
//
// The returned Execution is never nil. If the returned error is nil,
// the Execution holds the last response received in Response, Head and
// Body. Otherwise the error is a *RequestError, or, if the retry loop
// ended without either a response or a transport failure, a
// *ResponseError.
func (c *Client) Do(p *request.Plan, o request.Resolved) (*request.Execution, error) {
	e := request.Execution{
		Plan:    p,
		Options: o,
	}

	doer, err := c.doerFor(o)
	if err != nil {
		e.Err = err
		return &e, newRequestError(&e, 0)
	}

	timeoutPolicy := timeout.For(o)
	retryPolicy := retry.For(o)
	handlers := c.handlers

	handlers.run(BeforeExecutionStart, &e)
	e.Start = time.Now()

RetryLoop:
	for {
		sendAndReceive(p, &e, doer, handlers, timeoutPolicy)
		if e.Timeout() {
			e.AttemptTimeouts++
			handlers.run(AfterAttemptTimeout, &e)
		}
		handlers.run(AfterAttempt, &e)
		if planCtxErr := p.Context().Err(); planCtxErr != nil {
			if e.Err == nil && e.Response == nil {
				e.Err = urlErrorWrap(p, planCtxErr)
			}
			if planCtxErr == context.DeadlineExceeded {
				handlers.run(AfterPlanTimeout, &e)
			}
			break
		} else if !retryPolicy.Decide(&e) {
			break
		}

		e.Wait = retryPolicy.Wait(&e)
		handlers.run(BeforeRetryWait, &e)
		timer := time.NewTimer(e.Wait)
		select {
		case <-timer.C:
		case <-p.Context().Done():
			timer.Stop()
			err := p.Context().Err()
			e.Response = nil
			e.Head = nil
			e.Body = nil
			e.Err = urlErrorWrap(p, err)
			if err == context.DeadlineExceeded {
				handlers.run(AfterPlanTimeout, &e)
			}
			break RetryLoop
		}
		e.Wait = 0
		e.Response = nil
		e.Err = nil
		e.Head = nil
		e.Body = nil
		e.Attempt++
	}

	e.End = time.Now()
	handlers.run(AfterExecutionEnd, &e)
	switch {
	case e.Err != nil:
		return &e, newRequestError(&e, e.Attempt+1)
	case e.Response == nil:
		return &e, &ResponseError{Method: p.Method, URL: p.URL.String(), Attempts: e.Attempt + 1}
	default:
		return &e, nil
	}
}

func sendAndReceive(p *request.Plan, e *request.Execution, doer HTTPDoer, handlers *HandlerGroup, timeoutPolicy timeout.Policy) {
	ctx, cancel := context.WithTimeout(p.Context(), timeoutPolicy.Timeout(e))
	defer cancel()
	e.Request = p.ToRequest(ctx)
	handlers.run(BeforeAttempt, e)
	resp, err := doer.Do(e.Request)
	if err != nil {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		e.Err = urlErrorWrap(p, err)
		return
	} else if resp == nil {
		return
	}
	e.Response = resp
	handlers.run(BeforeReadBody, e)
	e.Head, e.Body, err = transport.ReadRaw(resp)
	if err != nil {
		e.Err = urlErrorWrap(p, err)
	}
}

// CloseIdleConnections closes idle connections held by the client's
// transports, or by its HTTPDoer if it has a CloseIdleConnections
// method.
func (c *Client) CloseIdleConnections() {
	if c.doer != nil {
		if ic, ok := c.doer.(IdleCloser); ok {
			ic.CloseIdleConnections()
		}
		return
	}

	c.cache.CloseIdleConnections()
}

func (c *Client) doerFor(o request.Resolved) (HTTPDoer, error) {
	if c.doer != nil {
		return c.doer, nil
	}

	return c.cache.Get(transport.ConfigFor(o))
}

func urlErrorWrap(p *request.Plan, err error) error {
	if _, ok := err.(*url.Error); ok {
		return err
	}

	return &url.Error{
		Op:  urlErrorOp(p.Method),
		URL: p.URL.String(),
		Err: err,
	}
}

// urlErrorOp is lifted verbatim from net/http/client.go
func urlErrorOp(method string) string {
	if method == "" {
		return "Get"
	}
	return method[:1] + strings.ToLower(method[1:])
}
