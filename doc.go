// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package apipoll provides the retrying HTTP client at the heart of the
apipoll API poller.

Create a Client with default options, then make calls which merge their
own options over the defaults:

	client, err := apipoll.NewClient(request.Options{
		Timeout:       request.Seconds(8),
		Retries:       request.Int(2),
		BackoffFactor: request.Seconds(1),
	})
	...
	resp, err := client.Get(ctx, "https://api.example.com/results",
		request.Options{Query: request.Values{}.Add("sensor", "temp")})
	...
	resp, err := client.Post(ctx, "https://api.example.com/search",
		request.Options{JSON: payload})

A call retries transport failures and 5xx responses while retries
remain, sleeping BackoffFactor·2^(n-1) (capped at 30 seconds) before
retry n. Any status, 4xx and 5xx included, comes back as a
*response.Response rather than an error. Errors are always a
*RequestError, except for the unreachable *ResponseError, and JSON
parse failures surface only from Response.JSON as a
*response.ParseError.

To hook into the details of the retry loop, install handlers:

	handlers := &apipoll.HandlerGroup{}
	handlers.PushBack(apipoll.BeforeRetryWait, apipoll.HandlerFunc(
		func(_ apipoll.Event, e *request.Execution) {
			log.Printf("retry %d in %s", e.Attempt+1, e.Wait)
		}),
	)
	client, err := apipoll.NewClient(defaults, apipoll.WithHandlers(handlers))

Package httplog provides a ready-made handler group that logs with
zerolog.
*/
package apipoll
