// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package response defines the immutable result of a successful call
// to the retrying client.
//
// A Response exists only once a status line has been received. Any
// status, including 4xx and 5xx, produces a Response; the caller
// decides what the status means.
package response
