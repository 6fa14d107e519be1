// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package apipoll

import (
	"context"
	"net/http"

	"github.com/gogama/apipoll/request"
	"github.com/gogama/apipoll/response"
)

// A Requester sends a request with arbitrary method, retrying as the
// options direct. Client is the canonical implementation.
type Requester interface {
	Request(ctx context.Context, method, url string, o request.Options) (*response.Response, error)
}

// A Getter sends GET requests.
type Getter interface {
	Get(ctx context.Context, url string, o request.Options) (*response.Response, error)
}

// A Poster sends POST requests.
type Poster interface {
	Post(ctx context.Context, url string, o request.Options) (*response.Response, error)
}

// An IdleCloser can release idle connections.
type IdleCloser interface {
	CloseIdleConnections()
}

// An Executor has every method of Client.
type Executor interface {
	Requester
	Getter
	Poster
	IdleCloser
}

// Get uses the specified Requester to issue a GET.
func Get(ctx context.Context, r Requester, url string, o request.Options) (*response.Response, error) {
	return r.Request(ctx, http.MethodGet, url, o)
}

// Post uses the specified Requester to issue a POST.
func Post(ctx context.Context, r Requester, url string, o request.Options) (*response.Response, error) {
	return r.Request(ctx, http.MethodPost, url, o)
}

// Inflate converts a Requester into a fully-featured Executor.
//
// If the input Requester is already an Executor, it is returned as is.
// Otherwise it is wrapped in an Executor whose Get and Post delegate to
// Request, and whose CloseIdleConnections delegates to the Requester if
// it implements IdleCloser and does nothing otherwise.
func Inflate(r Requester) Executor {
	if r == nil {
		panic("apipoll: nil requester")
	}

	if e, ok := r.(Executor); ok {
		return e
	}

	return inflated{r}
}

type inflated struct {
	requester Requester
}

func (i inflated) Request(ctx context.Context, method, url string, o request.Options) (*response.Response, error) {
	return i.requester.Request(ctx, method, url, o)
}

func (i inflated) Get(ctx context.Context, url string, o request.Options) (*response.Response, error) {
	return Get(ctx, i.requester, url, o)
}

func (i inflated) Post(ctx context.Context, url string, o request.Options) (*response.Response, error) {
	return Post(ctx, i.requester, url, o)
}

func (i inflated) CloseIdleConnections() {
	if ic, ok := i.requester.(IdleCloser); ok {
		ic.CloseIdleConnections()
	}
}
