// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package apipoll

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gogama/apipoll/header"
	"github.com/gogama/apipoll/request"
	"github.com/gogama/apipoll/retry"
	"github.com/gogama/apipoll/transient"
	"github.com/gogama/apipoll/transport"
)

func TestNewClient(t *testing.T) {
	t.Run("zero defaults", func(t *testing.T) {
		cl, err := NewClient(request.Options{})
		require.NoError(t, err)
		assert.Equal(t, request.Options{}, cl.Defaults())
		assert.Equal(t, 1, cl.cache.Len())
	})
	t.Run("invalid defaults", func(t *testing.T) {
		cl, err := NewClient(request.Options{Retries: request.Int(-1)})
		assert.Nil(t, cl)
		assert.Error(t, err)
	})
	t.Run("shared transport cache", func(t *testing.T) {
		cache := &transport.Cache{}
		_, err := NewClient(request.Options{}, WithTransportCache(cache))
		require.NoError(t, err)
		_, err = NewClient(request.Options{}, WithTransportCache(cache))
		require.NoError(t, err)
		_, err = NewClient(request.Options{Verify: request.Bool(false)}, WithTransportCache(cache))
		require.NoError(t, err)
		assert.Equal(t, 2, cache.Len())
	})
	t.Run("custom doer skips transport", func(t *testing.T) {
		cl, err := NewClient(request.Options{}, WithHTTPDoer(newMockHTTPDoer(t)), WithHandlers(nil))
		require.NoError(t, err)
		assert.Nil(t, cl.cache)
		assert.NotNil(t, cl.handlers)
	})
}

func TestURLErrorOp(t *testing.T) {
	assert.Equal(t, "Get", urlErrorOp(""))
	assert.Equal(t, "Get", urlErrorOp("GET"))
	assert.Equal(t, "G", urlErrorOp("G"))
	assert.Equal(t, "Xyz", urlErrorOp("XYZ"))
	assert.Equal(t, "Put", urlErrorOp("PUT"))
}

func TestClient_Request(t *testing.T) {
	t.Run("happy path", testClientHappyPath)
	t.Run("request building", testClientRequestBuilding)
	t.Run("retry", testClientRetry)
	t.Run("negative backoff in resolved options", testClientNegativeBackoff)
	t.Run("transport failure", testClientTransportFailure)
	t.Run("attempt timeout", testClientAttemptTimeout)
	t.Run("read body error", testClientBodyError)
	t.Run("context", testClientContext)
	t.Run("invalid request", testClientInvalidRequest)
	t.Run("no response", testClientNoResponse)
	t.Run("TLS verification", testClientVerify)
	t.Run("redirects", testClientRedirects)
	t.Run("close idle connections", testClientCloseIdleConnections)
}

func testClientHappyPath(t *testing.T) {
	server := newScriptedServer(t, false, serverInstruction{
		StatusCode: 200,
		Header: http.Header{
			"Content-Type": {"application/json"},
			"Set-Cookie":   {"a=1", "b=2"},
		},
		Body: []bodyChunk{{Data: []byte(`{"a":`)}, {Pause: 10 * time.Millisecond, Data: []byte(`1}`)}},
	})
	cl, err := NewClient(request.Options{Retries: request.Int(3)})
	require.NoError(t, err)
	tr := cl.addTraceHandlers()

	r, err := cl.Get(context.Background(), server.URL+"/y", request.Options{})
	require.NoError(t, err)
	assert.Equal(t, 200, r.Status())
	assert.True(t, r.IsSuccess())
	assert.Equal(t, `{"a":1}`, r.String())
	assert.Equal(t, "application/json", r.Header().Get("Content-Type"))
	assert.Equal(t, []string{"a=1", "b=2"}, r.Header().Values("Set-Cookie"))
	assert.Equal(t, []string{"HTTP/1.1 200 OK"}, r.Header().Lines())
	v, err := r.JSON()
	require.NoError(t, err)
	assert.Contains(t, v, "a")
	assert.Equal(t, 1, server.hits())
	assert.Equal(t, []string{
		"BeforeExecutionStart",
		"BeforeAttempt",
		"BeforeReadBody",
		"AfterAttempt",
		"AfterExecutionEnd",
	}, tr.calls)
}

func testClientRequestBuilding(t *testing.T) {
	server := newScriptedServer(t, false, statuses(200)...)
	cl, err := NewClient(request.Options{
		Headers: header.Headers{}.Add("Accept", "text/plain"),
		Timeout: request.Seconds(5),
	})
	require.NoError(t, err)

	t.Run("defaults apply", func(t *testing.T) {
		_, err := cl.Get(context.Background(), server.URL+"/d", request.Options{})
		require.NoError(t, err)
		got := server.requests()
		assert.Equal(t, "text/plain", got[len(got)-1].Header.Get("Accept"))
	})
	t.Run("query, headers, JSON precedence", func(t *testing.T) {
		_, err := cl.Post(context.Background(), server.URL+"/y?z=1", request.Options{
			Headers:    header.Headers{}.Add("X-Multi", "a", "b"),
			Query:      request.Values{}.Add("a", "1"),
			JSON:       map[string]interface{}{"k": "v"},
			FormParams: request.Values{}.Add("f", "1"),
			Body:       request.String("raw"),
		})
		require.NoError(t, err)
		got := server.requests()
		last := got[len(got)-1]
		assert.Equal(t, "POST", last.Method)
		assert.Equal(t, "/y?z=1&a=1", last.URL)
		assert.Equal(t, []string{"a", "b"}, last.Header.Values("X-Multi"))
		assert.Empty(t, last.Header.Get("Accept"), "per-request headers replace defaults")
		assert.Equal(t, "application/json", last.Header.Get("Content-Type"))
		assert.JSONEq(t, `{"k":"v"}`, string(last.Body))
	})
	t.Run("form body", func(t *testing.T) {
		_, err := cl.Post(context.Background(), server.URL+"/f", request.Options{
			FormParams: request.Values{}.Add("a", "1").Add("b", "x y"),
		})
		require.NoError(t, err)
		got := server.requests()
		last := got[len(got)-1]
		assert.Equal(t, "application/x-www-form-urlencoded", last.Header.Get("Content-Type"))
		assert.Equal(t, "a=1&b=x+y", string(last.Body))
	})
	t.Run("JSON struct with validate tags", func(t *testing.T) {
		type signup struct {
			Name  string `json:"name" validate:"required"`
			Email string `json:"email" validate:"omitempty,email"`
		}
		before := server.hits()
		r, err := cl.Post(context.Background(), server.URL+"/s", request.Options{
			JSON: signup{Email: "x"},
		})
		require.NoError(t, err)
		assert.Equal(t, 200, r.Status())
		assert.Equal(t, before+1, server.hits())
		got := server.requests()
		assert.JSONEq(t, `{"name":"","email":"x"}`, string(got[len(got)-1].Body))
	})
	t.Run("arbitrary method", func(t *testing.T) {
		r, err := cl.Request(context.Background(), "put", server.URL+"/p", request.Options{Body: request.String("hello")})
		require.NoError(t, err)
		assert.Equal(t, 200, r.Status())
		got := server.requests()
		last := got[len(got)-1]
		assert.Equal(t, "PUT", last.Method)
		assert.Equal(t, "hello", string(last.Body))
	})
}

func testClientRetry(t *testing.T) {
	t.Run("5xx exhausts retries", func(t *testing.T) {
		for r := 0; r <= 3; r++ {
			server := newScriptedServer(t, false, statuses(503)...)
			cl, err := NewClient(request.Options{
				Retries:       request.Int(r),
				BackoffFactor: request.Duration(time.Millisecond),
			})
			require.NoError(t, err)
			resp, err := cl.Post(context.Background(), server.URL, request.Options{Body: request.String("again")})
			require.NoError(t, err, "last response is returned, not an error")
			assert.Equal(t, 503, resp.Status())
			assert.Equal(t, "503", resp.String())
			require.Equal(t, r+1, server.hits())
			for _, req := range server.requests() {
				assert.Equal(t, "again", string(req.Body))
			}
		}
	})
	t.Run("4xx is never retried", func(t *testing.T) {
		for _, code := range []int{400, 404, 429} {
			server := newScriptedServer(t, false, statuses(code)...)
			cl, err := NewClient(request.Options{Retries: request.Int(5), BackoffFactor: request.Duration(time.Millisecond)})
			require.NoError(t, err)
			resp, err := cl.Get(context.Background(), server.URL, request.Options{})
			require.NoError(t, err)
			assert.Equal(t, code, resp.Status())
			assert.True(t, resp.IsClientError())
			assert.Equal(t, 1, server.hits())
		}
	})
	t.Run("success after 5xx", func(t *testing.T) {
		server := newScriptedServer(t, false, statuses(500, 502, 200, 500)...)
		cl, err := NewClient(request.Options{Retries: request.Int(5), BackoffFactor: request.Duration(time.Millisecond)})
		require.NoError(t, err)
		tr := cl.addTraceHandlers()
		resp, err := cl.Get(context.Background(), server.URL, request.Options{})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.Status())
		assert.Equal(t, 3, server.hits())
		assert.Equal(t, 2, tr.count("BeforeRetryWait"))
		assert.Equal(t, 3, tr.count("BeforeAttempt"))
		assert.Equal(t, "AfterExecutionEnd", tr.calls[len(tr.calls)-1])
	})
	t.Run("per-request retries override defaults", func(t *testing.T) {
		server := newScriptedServer(t, false, statuses(500)...)
		cl, err := NewClient(request.Options{Retries: request.Int(5), BackoffFactor: request.Duration(time.Millisecond)})
		require.NoError(t, err)
		_, err = cl.Get(context.Background(), server.URL, request.Options{Retries: request.Int(1)})
		require.NoError(t, err)
		assert.Equal(t, 2, server.hits())
	})
	t.Run("backoff delays", func(t *testing.T) {
		server := newScriptedServer(t, false, statuses(500)...)
		factor := 2 * time.Millisecond
		g := &HandlerGroup{}
		var waits []time.Duration
		var attempts []int
		g.PushBack(BeforeRetryWait, HandlerFunc(func(_ Event, e *request.Execution) {
			waits = append(waits, e.Wait)
			attempts = append(attempts, e.Attempt)
		}))
		cl, err := NewClient(request.Options{Retries: request.Int(4), BackoffFactor: request.Duration(factor)}, WithHandlers(g))
		require.NoError(t, err)
		_, err = cl.Get(context.Background(), server.URL, request.Options{})
		require.NoError(t, err)
		assert.Equal(t, []time.Duration{2 * time.Millisecond, 4 * time.Millisecond, 8 * time.Millisecond, 16 * time.Millisecond}, waits)
		assert.Equal(t, []int{0, 1, 2, 3}, attempts)
		for i, w := range waits {
			assert.Equal(t, retry.NewExpWaiter(factor, retry.MaxWait).Wait(&request.Execution{Attempt: i}), w)
		}
	})
}

func testClientNegativeBackoff(t *testing.T) {
	server := newScriptedServer(t, false, statuses(503, 200)...)
	cl, err := NewClient(request.Options{})
	require.NoError(t, err)
	o := request.Resolved{Retries: 2, BackoffFactor: -time.Second, Verify: true}
	p, err := request.NewPlan(context.Background(), "GET", server.URL, o)
	require.NoError(t, err)
	var e *request.Execution
	require.NotPanics(t, func() {
		e, err = cl.Do(p, o)
	})
	require.NoError(t, err)
	assert.Equal(t, 200, e.StatusCode())
	assert.Equal(t, 2, server.hits())
}

func testClientTransportFailure(t *testing.T) {
	for r := 0; r <= 3; r++ {
		mockDoer := newMockHTTPDoer(t)
		mockDoer.On("Do", mock.Anything).Return(nil, syscall.ECONNREFUSED).Times(r + 1)
		cl, err := NewClient(request.Options{
			Retries:       request.Int(r),
			BackoffFactor: request.Duration(time.Millisecond),
		}, WithHTTPDoer(mockDoer))
		require.NoError(t, err)
		resp, err := cl.Get(context.Background(), "http://api.invalid/x", request.Options{})
		assert.Nil(t, resp)
		var re *RequestError
		require.True(t, errors.As(err, &re))
		assert.Equal(t, "GET", re.Method)
		assert.Equal(t, "http://api.invalid/x", re.URL)
		assert.Equal(t, r+1, re.Attempts)
		assert.Equal(t, transient.ConnRefused, re.Category)
		assert.False(t, re.Timeout())
		assert.True(t, errors.Is(err, syscall.ECONNREFUSED))
		assert.Contains(t, err.Error(), "conn_refused")
		mockDoer.AssertExpectations(t)
	}
	t.Run("failure then success", func(t *testing.T) {
		mockDoer := newMockHTTPDoer(t)
		mockDoer.On("Do", mock.Anything).Return(nil, syscall.ECONNRESET).Once()
		mockDoer.On("Do", mock.Anything).Return(&http.Response{
			StatusCode: 200,
			Status:     "200 OK",
			Header:     http.Header{"X-Ok": {"yes"}},
			Body:       io.NopCloser(strings.NewReader("fine")),
		}, nil).Once()
		cl, err := NewClient(request.Options{Retries: request.Int(1), BackoffFactor: request.Duration(0)}, WithHTTPDoer(mockDoer))
		require.NoError(t, err)
		resp, err := cl.Get(context.Background(), "http://api.invalid/x", request.Options{})
		require.NoError(t, err)
		assert.Equal(t, "fine", resp.String())
		assert.Equal(t, "yes", resp.Header().Get("X-Ok"))
		mockDoer.AssertExpectations(t)
	})
}

func testClientAttemptTimeout(t *testing.T) {
	server := newScriptedServer(t, false, serverInstruction{
		StatusCode: 200,
		Body:       []bodyChunk{{Data: []byte("a")}, {Pause: 500 * time.Millisecond, Data: []byte("b")}},
	})
	cl, err := NewClient(request.Options{
		Timeout:       request.Duration(50 * time.Millisecond),
		Retries:       request.Int(1),
		BackoffFactor: request.Duration(time.Millisecond),
	})
	require.NoError(t, err)
	tr := cl.addTraceHandlers()
	resp, err := cl.Get(context.Background(), server.URL, request.Options{})
	assert.Nil(t, resp)
	var re *RequestError
	require.True(t, errors.As(err, &re))
	assert.True(t, re.Timeout())
	assert.Equal(t, transient.Timeout, re.Category)
	assert.Equal(t, 2, re.Attempts)
	assert.Equal(t, 2, tr.count("AfterAttemptTimeout"))
	assert.Equal(t, 0, tr.count("AfterPlanTimeout"))
}

func testClientBodyError(t *testing.T) {
	mockDoer := newMockHTTPDoer(t)
	mockReadCloser := newMockReadCloser(t)
	mockReadCloser.On("Read", mock.Anything).Return(0, syscall.ECONNRESET)
	mockReadCloser.On("Close").Return(nil)
	mockDoer.On("Do", mock.Anything).Return(&http.Response{StatusCode: 200, Body: mockReadCloser}, nil)
	var lastHead []byte
	g := &HandlerGroup{}
	g.PushBack(AfterAttempt, HandlerFunc(func(_ Event, e *request.Execution) {
		lastHead = e.Head
	}))
	cl, err := NewClient(request.Options{Retries: request.Int(2), BackoffFactor: request.Duration(0)},
		WithHTTPDoer(mockDoer), WithHandlers(g))
	require.NoError(t, err)
	_, err = cl.Get(context.Background(), "http://api.invalid/x", request.Options{})
	var re *RequestError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, 3, re.Attempts)
	assert.Equal(t, transient.ConnReset, re.Category)
	assert.Equal(t, "HTTP/1.1 200 OK\r\n", string(lastHead))
	mockDoer.AssertNumberOfCalls(t, "Do", 3)
	mockReadCloser.AssertNumberOfCalls(t, "Close", 3)
}

func testClientContext(t *testing.T) {
	t.Run("deadline during backoff", func(t *testing.T) {
		server := newScriptedServer(t, false, statuses(503)...)
		cl, err := NewClient(request.Options{Retries: request.Int(3), BackoffFactor: request.Duration(10 * time.Second)})
		require.NoError(t, err)
		tr := cl.addTraceHandlers()
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		start := time.Now()
		resp, err := cl.Get(ctx, server.URL, request.Options{})
		assert.Less(t, time.Since(start), 5*time.Second)
		assert.Nil(t, resp)
		var re *RequestError
		require.True(t, errors.As(err, &re))
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
		assert.Equal(t, 1, re.Attempts)
		assert.Equal(t, 1, server.hits())
		assert.Equal(t, 1, tr.count("AfterPlanTimeout"))
	})
	t.Run("cancelled before start", func(t *testing.T) {
		server := newScriptedServer(t, false, statuses(200)...)
		cl, err := NewClient(request.Options{Retries: request.Int(3)})
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = cl.Get(ctx, server.URL, request.Options{})
		var re *RequestError
		require.True(t, errors.As(err, &re))
		assert.True(t, errors.Is(err, context.Canceled))
		assert.Equal(t, 0, server.hits())
	})
}

func testClientInvalidRequest(t *testing.T) {
	mockDoer := newMockHTTPDoer(t)
	cl, err := NewClient(request.Options{}, WithHTTPDoer(mockDoer))
	require.NoError(t, err)
	cases := []struct {
		name   string
		method string
		url    string
		opts   request.Options
	}{
		{"bad method", "GE T", "http://x/y", request.Options{}},
		{"bad scheme", "GET", "ftp://x/y", request.Options{}},
		{"no host", "GET", "http:///y", request.Options{}},
		{"bad header", "GET", "http://x/y", request.Options{Headers: header.Headers{}.Add("Bad Name", "v")}},
		{"bad options", "GET", "http://x/y", request.Options{Retries: request.Int(-2)}},
		{"bad JSON", "POST", "http://x/y", request.Options{JSON: func() {}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			resp, err := cl.Request(context.Background(), c.method, c.url, c.opts)
			assert.Nil(t, resp)
			var re *RequestError
			require.True(t, errors.As(err, &re))
			assert.Equal(t, 0, re.Attempts)
			assert.Contains(t, err.Error(), "invalid request")
		})
	}
	mockDoer.AssertNotCalled(t, "Do", mock.Anything)
}

func testClientNoResponse(t *testing.T) {
	mockDoer := newMockHTTPDoer(t)
	mockDoer.On("Do", mock.Anything).Return(nil, nil).Once()
	cl, err := NewClient(request.Options{Retries: request.Int(3)}, WithHTTPDoer(mockDoer))
	require.NoError(t, err)
	resp, err := cl.Get(context.Background(), "http://x/y", request.Options{})
	assert.Nil(t, resp)
	var re *ResponseError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, 1, re.Attempts)
	assert.Contains(t, err.Error(), "without a response")
	mockDoer.AssertExpectations(t)
}

func testClientVerify(t *testing.T) {
	server := newScriptedServer(t, true, statuses(200)...)
	cl, err := NewClient(request.Options{})
	require.NoError(t, err)

	_, err = cl.Get(context.Background(), server.URL, request.Options{})
	var re *RequestError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, transient.TLS, re.Category)

	resp, err := cl.Get(context.Background(), server.URL, request.Options{Verify: request.Bool(false)})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status())
	assert.Equal(t, 2, cl.cache.Len())
}

func testClientRedirects(t *testing.T) {
	target := newScriptedServer(t, false, statuses(200)...)
	server := newScriptedServer(t, false, serverInstruction{
		StatusCode: http.StatusFound,
		Header:     http.Header{"Location": {target.URL + "/landed"}},
	})
	cl, err := NewClient(request.Options{})
	require.NoError(t, err)

	resp, err := cl.Get(context.Background(), server.URL, request.Options{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.Status())
	assert.True(t, resp.IsRedirect())
	assert.Equal(t, 0, target.hits())

	resp, err = cl.Get(context.Background(), server.URL, request.Options{FollowRedirects: request.Bool(true)})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status())
	assert.Equal(t, 1, target.hits())

	_, err = cl.Get(context.Background(), server.URL, request.Options{
		FollowRedirects: request.Bool(true),
		MaxRedirects:    request.Int(0),
	})
	var re *RequestError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, transient.Redirect, re.Category)
}

func testClientCloseIdleConnections(t *testing.T) {
	t.Run("doer without CloseIdleConnections", func(t *testing.T) {
		mockDoer := newMockHTTPDoer(t)
		cl, err := NewClient(request.Options{}, WithHTTPDoer(mockDoer))
		require.NoError(t, err)
		cl.CloseIdleConnections()
		mockDoer.AssertExpectations(t)
	})
	t.Run("doer with CloseIdleConnections", func(t *testing.T) {
		mockDoer := newMockHTTPDoerWithCloseIdleConnections(t)
		mockDoer.On("CloseIdleConnections").Once()
		cl, err := NewClient(request.Options{}, WithHTTPDoer(mockDoer))
		require.NoError(t, err)
		cl.CloseIdleConnections()
		mockDoer.AssertExpectations(t)
	})
	t.Run("transport cache", func(t *testing.T) {
		cl, err := NewClient(request.Options{})
		require.NoError(t, err)
		assert.NotPanics(t, cl.CloseIdleConnections)
	})
}

type mockHTTPDoer struct {
	mock.Mock
}

func newMockHTTPDoer(t *testing.T) *mockHTTPDoer {
	m := &mockHTTPDoer{}
	m.Test(t)
	return m
}

func (m *mockHTTPDoer) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	err := args.Error(1)
	if resp, ok := args.Get(0).(*http.Response); ok {
		return resp, err
	}
	return nil, err
}

type mockHTTPDoerWithCloseIdleConnections struct {
	mockHTTPDoer
}

func newMockHTTPDoerWithCloseIdleConnections(t *testing.T) *mockHTTPDoerWithCloseIdleConnections {
	m := &mockHTTPDoerWithCloseIdleConnections{}
	m.Test(t)
	return m
}

func (m *mockHTTPDoerWithCloseIdleConnections) CloseIdleConnections() {
	m.Called()
}

type trace struct {
	calls []string
}

func (tr *trace) count(name string) int {
	n := 0
	for _, c := range tr.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (c *Client) addTraceHandlers() *trace {
	tr := &trace{}
	g := &HandlerGroup{}
	g.Attach(HandlerFunc(func(evt Event, _ *request.Execution) {
		tr.calls = append(tr.calls, evt.Name())
	}))
	c.handlers = g
	return tr
}

type mockReadCloser struct {
	mock.Mock
}

func newMockReadCloser(t *testing.T) *mockReadCloser {
	m := &mockReadCloser{}
	m.Test(t)
	return m
}

func (m *mockReadCloser) Read(p []byte) (n int, err error) {
	args := m.Called(p)
	n = args.Int(0)
	err = args.Error(1)
	return
}

func (m *mockReadCloser) Close() error {
	args := m.Called()
	return args.Error(0)
}
