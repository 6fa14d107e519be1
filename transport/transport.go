// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gogama/apipoll/request"
	"github.com/gogama/apipoll/transient"
)

// ErrTooManyRedirects is the error cause reported when a response
// redirects beyond Config.MaxRedirects.
var ErrTooManyRedirects = transient.ErrTooManyRedirects

// Config holds the options which shape the underlying HTTP client.
// Config is comparable and is used as the Cache key.
type Config struct {
	// ConnectTimeout limits the TCP dial and the TLS handshake. Zero
	// means no limit.
	ConnectTimeout time.Duration
	// Verify enables verification of the server certificate chain and
	// host name.
	Verify bool
	// FollowRedirects makes the client follow 3xx responses. When
	// false, the 3xx response is returned as the result.
	FollowRedirects bool
	// MaxRedirects caps the number of redirects followed.
	MaxRedirects int
}

// ConfigFor extracts the transport configuration from resolved request
// options.
func ConfigFor(o request.Resolved) Config {
	return Config{
		ConnectTimeout:  o.ConnectTimeout,
		Verify:          o.Verify,
		FollowRedirects: o.FollowRedirects,
		MaxRedirects:    o.MaxRedirects,
	}
}

// New builds an HTTP client for the configuration.
//
// The client speaks HTTP/1.1 only, takes proxy settings from the
// environment, and never sets an overall timeout of its own: the
// retrying client bounds each attempt through the request context.
func New(c Config) (*http.Client, error) {
	if c.ConnectTimeout < 0 {
		return nil, fmt.Errorf("apipoll/transport: negative connect timeout %v", c.ConnectTimeout)
	}
	if c.MaxRedirects < 0 {
		return nil, fmt.Errorf("apipoll/transport: negative max redirects %d", c.MaxRedirects)
	}

	dialer := &net.Dialer{
		Timeout:   c.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}
	t := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		TLSHandshakeTimeout: c.ConnectTimeout,
		TLSClientConfig: &tls.Config{
			//nolint:gosec
			InsecureSkipVerify: !c.Verify,
		},
		ForceAttemptHTTP2:     false,
		TLSNextProto:          map[string]func(string, *tls.Conn) http.RoundTripper{},
		MaxIdleConns:          16,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: time.Second,
	}

	return &http.Client{
		Transport:     t,
		CheckRedirect: checkRedirect(c),
	}, nil
}

func checkRedirect(c Config) func(*http.Request, []*http.Request) error {
	if !c.FollowRedirects {
		return func(_ *http.Request, _ []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	max := c.MaxRedirects
	return func(_ *http.Request, via []*http.Request) error {
		if len(via) > max {
			return fmt.Errorf("%w: stopped after %d", ErrTooManyRedirects, max)
		}
		return nil
	}
}

// A Cache memoizes one HTTP client per Config. The zero value is ready
// to use, and a Cache is safe for concurrent use by multiple goroutines.
type Cache struct {
	mu      sync.Mutex
	clients map[Config]*http.Client
}

// Get returns the cached client for c, building it on first use.
func (cache *Cache) Get(c Config) (*http.Client, error) {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	if cl, ok := cache.clients[c]; ok {
		return cl, nil
	}
	cl, err := New(c)
	if err != nil {
		return nil, err
	}
	if cache.clients == nil {
		cache.clients = make(map[Config]*http.Client)
	}
	cache.clients[c] = cl
	return cl, nil
}

// Len returns the number of clients built so far.
func (cache *Cache) Len() int {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	return len(cache.clients)
}

// CloseIdleConnections closes idle connections on every cached client.
func (cache *Cache) CloseIdleConnections() {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	for _, cl := range cache.clients {
		cl.CloseIdleConnections()
	}
}

// IsRedirectLimit reports whether err was caused by exceeding the
// redirect limit.
func IsRedirectLimit(err error) bool {
	return errors.Is(err, ErrTooManyRedirects)
}
