// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	urlpkg "net/url"
	"strings"

	"golang.org/x/net/http/httpguts"
)

const (
	nilCtxMsg = "apipoll/request: nil context"

	// ContentTypeJSON is the content type set when Options.JSON is used.
	ContentTypeJSON = "application/json"
	// ContentTypeForm is the content type set when Options.FormParams
	// is used.
	ContentTypeForm = "application/x-www-form-urlencoded"
)

// A Plan is a fully-built HTTP request which may be sent any number of
// times. It is built once per client call from the resolved options, and
// every attempt within the call sends the same plan.
type Plan struct {
	// Method is the upper-case HTTP method.
	Method string

	// URL is the target URL, including the merged query string.
	URL *urlpkg.URL

	// Header contains the request headers, built from the resolved
	// header list plus the content type implied by the body.
	Header http.Header

	// Lines contains the request headers in wire format and insertion
	// order, exactly as they were serialized from the options.
	Lines []string

	// Body is the pre-buffered request body. A nil body means no body
	// is sent.
	Body []byte

	// Host optionally overrides the Host header to send. It is taken
	// from a Host entry in the header list if there is one, and is
	// otherwise the host of URL.
	Host string

	ctx context.Context
}

// NewPlan builds a plan from the method, URL, and resolved options.
//
// An empty method means GET. The query from o is appended to rawURL
// before it is parsed, which must then yield an absolute http or https
// URL. The body is chosen from o.JSON, o.FormParams and o.Body in that
// order of precedence; JSON and form bodies set the matching
// Content-Type header, replacing any Content-Type given in o.Headers.
func NewPlan(ctx context.Context, method, rawURL string, o Resolved) (*Plan, error) {
	if ctx == nil {
		return nil, errors.New(nilCtxMsg)
	}
	if method == "" {
		method = http.MethodGet
	}
	method = strings.ToUpper(method)
	if !httpguts.ValidHeaderFieldName(method) {
		return nil, fmt.Errorf("apipoll/request: invalid method %q", method)
	}
	u, err := urlpkg.Parse(AppendQuery(rawURL, o.Query))
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("apipoll/request: unsupported URL scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("apipoll/request: URL %q has no host", rawURL)
	}
	u.Host = removeEmptyPort(u.Host)

	h := make(http.Header)
	if err = o.Headers.Apply(h); err != nil {
		return nil, err
	}
	lines := o.Headers.Wire()

	body, contentType, err := resolveBody(o)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		h.Set("Content-Type", contentType)
		lines = append(lines, "Content-Type: "+contentType)
	}

	host := u.Host
	if hh := h.Get("Host"); hh != "" {
		host = hh
		h.Del("Host")
	}

	return &Plan{
		Method: method,
		URL:    u,
		Header: h,
		Lines:  lines,
		Body:   body,
		Host:   host,
		ctx:    ctx,
	}, nil
}

func resolveBody(o Resolved) (body []byte, contentType string, err error) {
	switch {
	case o.JSON != nil:
		body, err = json.Marshal(o.JSON)
		if err != nil {
			return nil, "", fmt.Errorf("apipoll/request: cannot encode JSON body: %w", err)
		}
		return body, ContentTypeJSON, nil
	case o.FormParams != nil:
		return []byte(o.FormParams.Encode()), ContentTypeForm, nil
	case o.Body != nil:
		return []byte(*o.Body), "", nil
	default:
		return nil, "", nil
	}
}

// Context returns the plan's context. To change the context, use
// WithContext.
//
// The returned context is always non-nil; it defaults to the
// background context.
func (p *Plan) Context() context.Context {
	if p.ctx != nil {
		return p.ctx
	}
	return context.Background()
}

// WithContext returns a shallow copy of p with its context changed to
// ctx. The provided ctx must be non-nil.
func (p *Plan) WithContext(ctx context.Context) *Plan {
	if ctx == nil {
		panic(nilCtxMsg)
	}
	p2 := new(Plan)
	*p2 = *p
	p2.ctx = ctx
	return p2
}

// ToRequest converts the plan into an *http.Request for one attempt,
// bound to ctx. The body is replayable through GetBody, which the
// standard library needs when following redirects.
func (p *Plan) ToRequest(ctx context.Context) *http.Request {
	r := (&http.Request{
		Method:     p.Method,
		URL:        p.URL,
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     p.Header.Clone(),
		Host:       p.Host,
	}).WithContext(ctx)
	if p.Body != nil {
		r.Body = io.NopCloser(bytes.NewReader(p.Body))
		r.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(p.Body)), nil
		}
		r.ContentLength = int64(len(p.Body))
		if r.ContentLength == 0 {
			r.Body = http.NoBody
		}
	}
	return r
}

func hasPort(s string) bool { return strings.LastIndex(s, ":") > strings.LastIndex(s, "]") }

func removeEmptyPort(host string) string {
	if hasPort(host) {
		return strings.TrimSuffix(host, ":")
	}
	return host
}
