// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package apipoll

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"
)

type bodyChunk struct {
	Pause time.Duration
	Data  []byte
}

// A serverInstruction tells the scripted server how to answer one hit.
type serverInstruction struct {
	HeaderPause time.Duration
	StatusCode  int
	Header      http.Header
	Body        []bodyChunk
}

type receivedRequest struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// A scriptedServer answers each hit with the next instruction in its
// script. Once the script runs out, the last instruction repeats.
type scriptedServer struct {
	*httptest.Server

	mu       sync.Mutex
	script   []serverInstruction
	received []receivedRequest
}

func newScriptedServer(t *testing.T, tls bool, script ...serverInstruction) *scriptedServer {
	if len(script) == 0 {
		panic("empty script")
	}
	s := &scriptedServer{script: script}
	s.Server = httptest.NewUnstartedServer(http.HandlerFunc(s.handle))
	if tls {
		s.StartTLS()
	} else {
		s.Start()
	}
	t.Cleanup(s.Close)
	return s
}

func statuses(codes ...int) []serverInstruction {
	script := make([]serverInstruction, len(codes))
	for i, code := range codes {
		script[i] = serverInstruction{
			StatusCode: code,
			Body:       []bodyChunk{{Data: []byte(strconv.Itoa(code))}},
		}
	}
	return script
}

func (s *scriptedServer) hits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.received)
}

func (s *scriptedServer) requests() []receivedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := make([]receivedRequest, len(s.received))
	copy(r, s.received)
	return r
}

func (s *scriptedServer) handle(w http.ResponseWriter, req *http.Request) {
	b, _ := io.ReadAll(req.Body)
	_ = req.Body.Close()

	s.mu.Lock()
	n := len(s.received)
	s.received = append(s.received, receivedRequest{
		Method: req.Method,
		URL:    req.URL.String(),
		Header: req.Header.Clone(),
		Body:   b,
	})
	i := s.script[len(s.script)-1]
	if n < len(s.script) {
		i = s.script[n]
	}
	s.mu.Unlock()

	f, ok := w.(http.Flusher)
	if !ok {
		panic("w does not implement Flusher")
	}

	contentLength := 0
	for _, chunk := range i.Body {
		contentLength += len(chunk.Data)
	}
	header := w.Header()
	for name, values := range i.Header {
		for _, v := range values {
			header.Add(name, v)
		}
	}
	header.Set("Content-Length", strconv.Itoa(contentLength))

	time.Sleep(i.HeaderPause)
	w.WriteHeader(i.StatusCode)
	f.Flush()

	for _, chunk := range i.Body {
		time.Sleep(chunk.Pause)
		if _, err := w.Write(chunk.Data); err != nil {
			return
		}
		f.Flush()
	}
}
