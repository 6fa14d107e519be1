// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package poller

import (
	"strings"

	"github.com/gogama/apipoll/request"
)

// A Job describes one poll: the request to send and where to put the
// response.
type Job struct {
	Name    string
	Method  string
	BaseURL string
	Path    string
	Options request.Options
	Sinks   []Sink
}

// URL joins the base URL and path with exactly one slash.
func (j *Job) URL() string {
	if j.Path == "" {
		return j.BaseURL
	}
	return strings.TrimRight(j.BaseURL, "/") + "/" + strings.TrimLeft(j.Path, "/")
}
