// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"github.com/gogama/apipoll/request"
)

// IsLocal reports whether the configuration is for local development.
func (c *Config) IsLocal() bool {
	return c.App.Env == EnvLocal
}

// ClientDefaults converts the HTTP section into default options for the
// retrying client. In the local environment, TLS verification is off
// whatever the HTTP section says.
func (c *Config) ClientDefaults() request.Options {
	h := c.HTTP
	return request.Options{
		Timeout:         request.Duration(h.Timeout),
		ConnectTimeout:  request.Duration(h.ConnectTimeout),
		Retries:         request.Int(h.Retries),
		BackoffFactor:   request.Duration(h.BackoffFactor),
		Verify:          request.Bool(h.Verify && !c.IsLocal()),
		FollowRedirects: request.Bool(h.FollowRedirects),
		MaxRedirects:    request.Int(h.MaxRedirects),
	}
}
