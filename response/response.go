// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package response

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/tidwall/gjson"

	"github.com/gogama/apipoll/header"
)

// A Response is the status, headers and body of the last attempt made
// by a client call. It is immutable: accessors return copies.
type Response struct {
	status int
	header header.Headers
	body   []byte
}

// New builds a Response from a status code, the raw status line and
// header block, and the body. The header block is parsed once, here.
func New(status int, head, body []byte) *Response {
	b := make([]byte, len(body))
	copy(b, body)
	return &Response{
		status: status,
		header: header.Parse(string(head)),
		body:   b,
	}
}

// Status returns the HTTP status code.
func (r *Response) Status() int {
	return r.status
}

// Header returns a copy of the parsed headers, including the status
// line as a positional entry.
func (r *Response) Header() header.Headers {
	return r.header.Clone()
}

// Body returns a copy of the raw body.
func (r *Response) Body() []byte {
	b := make([]byte, len(r.body))
	copy(b, r.body)
	return b
}

// Len returns the body length in bytes.
func (r *Response) Len() int {
	return len(r.body)
}

func (r *Response) String() string {
	return string(r.body)
}

// JSON parses the body. Objects decode to map[string]interface{},
// arrays to []interface{}, and numbers to json.Number so that large
// integers survive intact.
//
// If the body is not a single valid JSON value, JSON returns a
// *ParseError.
func (r *Response) JSON() (interface{}, error) {
	var v interface{}
	if err := r.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// Decode parses the body into v, in the manner of json.Unmarshal
// except that numbers decoding into interface{} become json.Number.
// It fails with a *ParseError.
func (r *Response) Decode(v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(r.body))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return &ParseError{Body: r.String(), Err: err}
	}
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = fmt.Errorf("invalid character after top-level value")
		}
		return &ParseError{Body: r.String(), Err: err}
	}
	return nil
}

// Get looks up a value in a JSON body with a gjson path such as
// "results.0.id" or "results.#.component_id". A body which is not
// JSON yields a result that does not exist.
func (r *Response) Get(path string) gjson.Result {
	return gjson.GetBytes(r.body, path)
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool { return r.status >= 200 && r.status < 300 }

// IsRedirect reports a 3xx status.
func (r *Response) IsRedirect() bool { return r.status >= 300 && r.status < 400 }

// IsClientError reports a 4xx status.
func (r *Response) IsClientError() bool { return r.status >= 400 && r.status < 500 }

// IsServerError reports a 5xx status.
func (r *Response) IsServerError() bool { return r.status >= 500 }

// ParseError is returned when a response body cannot be parsed as JSON.
// The Response itself remains valid.
type ParseError struct {
	// Body is the body that failed to parse, possibly truncated.
	Body string
	Err  error
}

const maxErrorBody = 64

func (e *ParseError) Error() string {
	b := e.Body
	if len(b) > maxErrorBody {
		b = b[:maxErrorBody] + "..."
	}
	return fmt.Sprintf("apipoll/response: body is not valid JSON: %v (body %q)", e.Err, b)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
