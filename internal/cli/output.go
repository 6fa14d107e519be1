// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/tidwall/gjson"

	"github.com/gogama/apipoll/header"
	"github.com/gogama/apipoll/response"
)

type colors struct {
	method      *color.Color
	url         *color.Color
	statusOK    *color.Color
	statusWarn  *color.Color
	statusError *color.Color
	headerKey   *color.Color
}

type printer struct {
	w io.Writer
	c colors
}

func newPrinter(w io.Writer, noColor bool) *printer {
	c := colors{
		method:      color.New(color.FgBlue, color.Bold),
		url:         color.New(color.FgCyan),
		statusOK:    color.New(color.FgGreen, color.Bold),
		statusWarn:  color.New(color.FgYellow, color.Bold),
		statusError: color.New(color.FgRed, color.Bold),
		headerKey:   color.New(color.FgYellow),
	}
	if noColor {
		for _, x := range []*color.Color{c.method, c.url, c.statusOK, c.statusWarn, c.statusError, c.headerKey} {
			x.DisableColor()
		}
	}
	return &printer{w: w, c: c}
}

func (p *printer) status(method, url string, resp *response.Response) {
	sc := p.c.statusOK
	switch {
	case resp.IsServerError():
		sc = p.c.statusError
	case resp.IsClientError(), resp.IsRedirect():
		sc = p.c.statusWarn
	}
	fmt.Fprintf(p.w, "%s %s %s\n", p.c.method.Sprint(method), p.c.url.Sprint(url), sc.Sprint(resp.Status()))
}

func (p *printer) headers(h header.Headers) {
	for _, line := range h.Wire() {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			fmt.Fprintln(p.w, line)
			continue
		}
		fmt.Fprintf(p.w, "%s:%s\n", p.c.headerKey.Sprint(name), value)
	}
	fmt.Fprintln(p.w)
}

// body prints b, indented if it is JSON.
func (p *printer) body(b []byte) {
	if gjson.ValidBytes(b) {
		b = []byte(gjson.GetBytes(b, "@pretty").Raw)
	}
	s := string(b)
	if s != "" && !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	fmt.Fprint(p.w, s)
}
