// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
)

// ReadRaw reads a response in one pass, returning its status line and
// header block in wire format, and its complete body. The body is
// always closed.
//
// Header names in the block are in canonical form and sorted, which is
// how net/http holds them; repeated headers keep the order in which
// their values arrived.
func ReadRaw(resp *http.Response) (head, body []byte, err error) {
	defer func() {
		_ = resp.Body.Close()
	}()

	var b bytes.Buffer
	status := resp.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	proto := resp.Proto
	if proto == "" {
		proto = "HTTP/1.1"
	}
	fmt.Fprintf(&b, "%s %s\r\n", proto, status)
	if err = resp.Header.Write(&b); err != nil {
		return nil, nil, err
	}
	head = b.Bytes()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return head, nil, err
	}
	return head, body, nil
}
