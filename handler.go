// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package apipoll

import (
	"github.com/gogama/apipoll/request"
)

// A HandlerGroup is a group of event handler chains which can be
// installed in a Client.
//
// Handlers must be added before the group is installed; a HandlerGroup
// is read concurrently by every call made through the client.
type HandlerGroup struct {
	handlers [][]Handler
}

// PushBack adds an event handler to the back of the handler chain for
// an event.
func (g *HandlerGroup) PushBack(evt Event, h Handler) {
	if h == nil {
		panic("apipoll: nil handler")
	}

	if g.handlers == nil {
		g.handlers = make([][]Handler, numEvents)
	}

	g.handlers[evt] = append(g.handlers[evt], h)
}

// Attach adds h to the back of the handler chain of every event.
func (g *HandlerGroup) Attach(h Handler) {
	for _, evt := range Events() {
		g.PushBack(evt, h)
	}
}

func (g *HandlerGroup) run(evt Event, e *request.Execution) {
	i := int(evt)
	if i < len(g.handlers) {
		run(g.handlers[i], evt, e)
	}
}

func run(chain []Handler, evt Event, e *request.Execution) {
	for _, h := range chain {
		h.Handle(evt, e)
	}
}

// A Handler handles the occurrence of an event during a call.
//
// Handlers run synchronously on the goroutine making the call. They may
// read the execution and attach values to it with SetValue, but must
// not otherwise modify it.
type Handler interface {
	Handle(Event, *request.Execution)
}

// The HandlerFunc type is an adapter to allow the use of ordinary
// functions as event handlers.
type HandlerFunc func(Event, *request.Execution)

// Handle calls f(evt, e).
func (f HandlerFunc) Handle(evt Event, e *request.Execution) {
	f(evt, e)
}
