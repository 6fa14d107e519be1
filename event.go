// Copyright 2025 The apipoll Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package apipoll

// An Event identifies the event type when installing or running a
// Handler.
type Event int

const (
	// BeforeExecutionStart identifies the event that occurs before the
	// first attempt of a call starts.
	//
	// When the client fires BeforeExecutionStart, the execution is not
	// started yet: its Start field is zero and it has no Request.
	BeforeExecutionStart Event = iota

	// BeforeAttempt identifies the event that occurs before each
	// attempt is sent. The execution's Request field is the request
	// about to be sent.
	BeforeAttempt

	// BeforeReadBody identifies the event that occurs after a status
	// line and headers have been received, but before the body is read.
	BeforeReadBody

	// AfterAttemptTimeout identifies the event that occurs after an
	// attempt ran out of its timeout.
	AfterAttemptTimeout

	// AfterAttempt identifies the event that occurs after each
	// attempt, successful or not. Either Err is set, or Response, Head
	// and Body hold the complete response.
	AfterAttempt

	// BeforeRetryWait identifies the event that occurs once a retry has
	// been decided on, before the backoff sleep. The execution's Wait
	// field holds the backoff delay.
	BeforeRetryWait

	// AfterPlanTimeout identifies the event that occurs when the
	// context of the call passes its deadline.
	AfterPlanTimeout

	// AfterExecutionEnd identifies the event that occurs after the
	// call ends, just before the client returns.
	AfterExecutionEnd

	eventSentinel

	numEvents = int(eventSentinel)
)

var eventNames = []string{
	"BeforeExecutionStart",
	"BeforeAttempt",
	"BeforeReadBody",
	"AfterAttemptTimeout",
	"AfterAttempt",
	"BeforeRetryWait",
	"AfterPlanTimeout",
	"AfterExecutionEnd",
}

// Events returns a slice containing all events which can occur during
// a call, in the order in which they would occur.
func Events() []Event {
	return []Event{
		BeforeExecutionStart,
		BeforeAttempt,
		BeforeReadBody,
		AfterAttemptTimeout,
		AfterAttempt,
		BeforeRetryWait,
		AfterPlanTimeout,
		AfterExecutionEnd,
	}
}

// Name returns the name of the event.
func (evt Event) Name() string {
	return eventNames[int(evt)]
}

func (evt Event) String() string {
	return evt.Name()
}
