// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package mockapi is a small JSON API for exercising the pollers
// locally. It serves a random sensor reading, a JSON echo, and a canned
// timeseries search result.
package mockapi
