// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"net/url"
	"strings"
)

// A Param is a single key/value pair in a query string or form body.
type Param struct {
	Key   string
	Value string
}

// Values is an ordered list of parameters. Unlike url.Values, Values
// encodes its parameters in insertion order.
type Values []Param

// Add appends a parameter and returns the extended list.
func (v Values) Add(key, value string) Values {
	return append(v, Param{Key: key, Value: value})
}

// Encode encodes v in "URL encoded" form ("bar=baz&foo=quux"), keeping
// insertion order.
func (v Values) Encode() string {
	var b strings.Builder
	for i, p := range v {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// AppendQuery appends the encoded form of q to rawURL. The separator is
// '?' if rawURL has no query component yet, and '&' otherwise. An empty
// q leaves rawURL unchanged.
func AppendQuery(rawURL string, q Values) string {
	if len(q) == 0 {
		return rawURL
	}
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + q.Encode()
}
