// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package header

import (
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// A Field is one entry in a Headers list.
//
// A named field has a non-empty Name and one or more Values. It renders
// on the wire as one "Name: Value" line per value.
//
// A positional field has an empty Name and exactly one value, which is
// used verbatim.
type Field struct {
	Name   string
	Values []string
}

// Positional reports whether f is a positional (unnamed) entry.
func (f Field) Positional() bool {
	return f.Name == ""
}

// Headers is an ordered list of header fields. The zero value is an
// empty list ready to use.
//
// Methods which add entries return the extended list, in the manner of
// the built-in append, so a Headers value can be built in one expression.
type Headers []Field

// Add appends values under name. If a field with the same name (compared
// case-insensitively) is already present, the values accumulate on that
// field in order; otherwise a new field is appended at the end. The
// receiver's existing fields are never modified.
//
// Add panics if name is empty. Use Line to add positional entries.
func (h Headers) Add(name string, values ...string) Headers {
	if name == "" {
		panic("apipoll/header: empty name")
	}
	if i := h.index(name); i >= 0 {
		// Lists derived from a shared base must not write through to it.
		vs := make([]string, 0, len(h[i].Values)+len(values))
		vs = append(append(vs, h[i].Values...), values...)
		h2 := make(Headers, len(h))
		copy(h2, h)
		h2[i].Values = vs
		return h2
	}
	vs := make([]string, len(values))
	copy(vs, values)
	return append(h, Field{Name: name, Values: vs})
}

// Line appends a positional entry holding raw verbatim.
func (h Headers) Line(raw string) Headers {
	return append(h, Field{Values: []string{raw}})
}

// Get returns the first value of the named field, or the empty string
// if no such field exists. Names are compared case-insensitively.
func (h Headers) Get(name string) string {
	if i := h.index(name); i >= 0 && len(h[i].Values) > 0 {
		return h[i].Values[0]
	}
	return ""
}

// Values returns all values of the named field in the order they were
// added, or nil if no such field exists.
func (h Headers) Values(name string) []string {
	if i := h.index(name); i >= 0 {
		return h[i].Values
	}
	return nil
}

// Has reports whether a named field is present.
func (h Headers) Has(name string) bool {
	return h.index(name) >= 0
}

// Lines returns the values of all positional entries in order.
func (h Headers) Lines() []string {
	var lines []string
	for _, f := range h {
		if f.Positional() {
			lines = append(lines, f.Values...)
		}
	}
	return lines
}

// Clone returns a deep copy of h.
func (h Headers) Clone() Headers {
	if h == nil {
		return nil
	}
	h2 := make(Headers, len(h))
	for i, f := range h {
		vs := make([]string, len(f.Values))
		copy(vs, f.Values)
		h2[i] = Field{Name: f.Name, Values: vs}
	}
	return h2
}

// Wire serializes h into wire-format header lines, preserving insertion
// order. Positional entries pass through verbatim and named entries
// render as "Name: Value", one line per value.
func (h Headers) Wire() []string {
	lines := make([]string, 0, len(h))
	for _, f := range h {
		if f.Positional() {
			lines = append(lines, f.Values...)
			continue
		}
		for _, v := range f.Values {
			lines = append(lines, f.Name+": "+v)
		}
	}
	return lines
}

// Apply adds every wire line of h to dst, in order.
//
// Each line must have the form "Name: Value" with a valid field name
// and value, otherwise Apply returns an error and dst may have been
// partially modified.
func (h Headers) Apply(dst http.Header) error {
	for _, line := range h.Wire() {
		name, value, ok := split(line)
		if !ok {
			return fmt.Errorf("apipoll/header: malformed header line %q", line)
		}
		if !httpguts.ValidHeaderFieldName(name) {
			return fmt.Errorf("apipoll/header: invalid header name %q", name)
		}
		if !httpguts.ValidHeaderFieldValue(value) {
			return fmt.Errorf("apipoll/header: invalid value for header %q", name)
		}
		dst.Add(name, value)
	}
	return nil
}

// Parse parses a raw header block, such as the text preceding the blank
// line in an HTTP/1.x response, into a Headers value.
//
// Lines may be separated by CRLF, LF, or CR. Blank lines are skipped. A
// line without a colon, such as the status line, is kept as a
// positional entry. A repeated name accumulates its values in order on
// the field where the name first appeared.
func Parse(raw string) Headers {
	raw = strings.NewReplacer("\r\n", "\n", "\r", "\n").Replace(strings.TrimSpace(raw))
	var h Headers
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		name, value, ok := split(line)
		if !ok || name == "" {
			h = h.Line(line)
			continue
		}
		h = h.Add(name, value)
	}
	return h
}

func split(line string) (name, value string, ok bool) {
	i := strings.IndexByte(line, ':')
	if i < 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:]), true
}

func (h Headers) index(name string) int {
	for i, f := range h {
		if !f.Positional() && strings.EqualFold(f.Name, name) {
			return i
		}
	}
	return -1
}
