// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gogama/apipoll/request"
)

// requestFlags are the flags shared by get and post.
type requestFlags struct {
	headers  []string
	query    []string
	json     string
	form     []string
	data     string
	retries  int
	timeout  time.Duration
	insecure bool
	selector string
	noColor  bool
	verbose  bool
}

func (f *requestFlags) register(cmd *cobra.Command, withBody bool) {
	fs := cmd.Flags()
	fs.StringArrayVarP(&f.headers, "header", "H", nil, "HTTP header as 'Name: value' (repeatable)")
	fs.StringArrayVarP(&f.query, "query", "q", nil, "Query parameter as key=value (repeatable)")
	if withBody {
		fs.StringVar(&f.json, "json", "", "JSON request body")
		fs.StringArrayVar(&f.form, "form", nil, "Form parameter as key=value (repeatable)")
		fs.StringVar(&f.data, "data", "", "Raw request body")
	}
	fs.IntVar(&f.retries, "retries", 0, "Maximum retries after the first attempt (default from configuration)")
	fs.DurationVarP(&f.timeout, "timeout", "t", 0, "Per-attempt timeout (default from configuration)")
	fs.BoolVarP(&f.insecure, "insecure", "k", false, "Skip TLS certificate verification")
	fs.StringVarP(&f.selector, "select", "s", "", "Print only the value at this gjson path")
	fs.BoolVar(&f.noColor, "no-color", false, "Disable colored output")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "Print response headers")
}

// options converts the flags into per-request options. Only flags the
// user set override the client defaults.
func (f *requestFlags) options(cmd *cobra.Command) (request.Options, error) {
	var o request.Options

	for _, line := range f.headers {
		name, value, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return o, fmt.Errorf("invalid header %q, want 'Name: value'", line)
		}
		o.Headers = o.Headers.Add(strings.TrimSpace(name), strings.TrimSpace(value))
	}

	var err error
	if o.Query, err = pairs("query", f.query); err != nil {
		return o, err
	}

	fs := cmd.Flags()
	if fs.Changed("json") {
		if !json.Valid([]byte(f.json)) {
			return o, fmt.Errorf("--json is not valid JSON")
		}
		o.JSON = json.RawMessage(f.json)
	}
	if fs.Changed("form") {
		if o.FormParams, err = pairs("form", f.form); err != nil {
			return o, err
		}
	}
	if fs.Changed("data") {
		o.Body = request.String(f.data)
	}
	if fs.Changed("retries") {
		o.Retries = request.Int(f.retries)
	}
	if fs.Changed("timeout") {
		o.Timeout = request.Duration(f.timeout)
	}
	if f.insecure {
		o.Verify = request.Bool(false)
	}
	return o, o.Validate()
}

func pairs(flag string, kvs []string) (request.Values, error) {
	var v request.Values
	for _, kv := range kvs {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --%s %q, want key=value", flag, kv)
		}
		v = v.Add(key, value)
	}
	return v, nil
}

func newGetCmd(a *app) *cobra.Command {
	f := &requestFlags{}
	cmd := &cobra.Command{
		Use:   "get URL",
		Short: "Send a GET request with retries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.send(cmd, f, http.MethodGet, args[0])
		},
	}
	f.register(cmd, false)
	return cmd
}

func newPostCmd(a *app) *cobra.Command {
	f := &requestFlags{}
	cmd := &cobra.Command{
		Use:   "post URL",
		Short: "Send a POST request with retries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.send(cmd, f, http.MethodPost, args[0])
		},
	}
	f.register(cmd, true)
	return cmd
}

func (a *app) send(cmd *cobra.Command, f *requestFlags, method, url string) error {
	o, err := f.options(cmd)
	if err != nil {
		return err
	}
	c, err := a.client()
	if err != nil {
		return err
	}
	defer c.CloseIdleConnections()

	resp, err := c.Request(cmd.Context(), method, url, o)
	if err != nil {
		return err
	}

	p := newPrinter(cmd.OutOrStdout(), f.noColor)
	p.status(method, url, resp)
	if f.verbose {
		p.headers(resp.Header())
	}
	if f.selector != "" {
		r := resp.Get(f.selector)
		if !r.Exists() {
			return fmt.Errorf("nothing at %q", f.selector)
		}
		p.body([]byte(r.String()))
		return nil
	}
	p.body(resp.Body())
	return nil
}
