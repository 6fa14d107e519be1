// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package header provides an ordered list of HTTP header fields which is
shared by outgoing request plans and received responses.

Unlike http.Header, a Headers value remembers insertion order, keeps the
original spelling of each name, and can hold positional entries: raw
lines that have no name, such as an already-formatted "Name: Value"
string supplied by a caller, or the status line at the top of a raw
response header block.

	h := header.Headers{}.
		Add("Accept", "application/json").
		Line("X-Trace: abc")
	lines := h.Wire() // ["Accept: application/json", "X-Trace: abc"]

Use Parse to turn a raw response header block into a Headers value.
*/
package header
