// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transport builds the HTTP/1.1 clients that carry each attempt
// made by the retrying client, and reads complete responses off them.
//
// A client is built per distinct Config: connect timeout, TLS
// verification, and redirect policy. Cache memoizes them so repeated
// calls with the same options reuse connections.
package transport
