// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request contains the types which describe what the retrying
client should send, and how far along it is in sending it.

Options is the request configuration. Every field is optional, so that
per-request options can be layered over client defaults one field at a
time:

	o := request.Options{
		Retries: request.Int(2),
		Query:   request.Values{}.Add("sensor", "temp"),
		Headers: header.Headers{}.Add("Accept", "application/json"),
	}
	r := request.Resolve(clientDefaults, o)

Resolve produces a Resolved value in which every field is concrete.

Plan is one fully-built outgoing request: method, URL with the query
merged in, headers, and a pre-buffered body. A plan can be turned into an
*http.Request any number of times, which is what makes retries possible.

	p, err := request.NewPlan(ctx, "POST", "https://example.com/search", r)

Execution is the state of a plan execution. It is handed to retry and
timeout policies and to event handlers; you will typically not allocate
one yourself.
*/
package request
