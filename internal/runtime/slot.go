package runtime

import (
	"github.com/sirupsen/logrus"

	"vapor-http-bridge/pkg/canonical"
)

// ResponseSlot is a single-slot mailbox holding at most one pending response.
// The worker's capture callback writes it once per invocation and the bridge
// drains it exactly once after the worker returns. It is owned by a Bridge
// rather than living in package state, so the writer/reader pairing is
// explicit in the call graph.
//
// No locking: the platform delivers invocations strictly one at a time, and
// within one invocation the worker's execution returns before the bridge
// reads the slot.
type ResponseSlot struct {
	response *canonical.Response
	logger   *logrus.Logger
}

// NewResponseSlot returns an empty slot.
func NewResponseSlot(logger *logrus.Logger) *ResponseSlot {
	if logger == nil {
		logger = logrus.New()
	}
	return &ResponseSlot{logger: logger}
}

// Put stores a response. A second Put before the slot is drained overwrites
// the first; that is a worker contract violation, kept last-write-wins but
// logged so it is observable.
func (s *ResponseSlot) Put(resp *canonical.Response) {
	if s.response != nil {
		s.logger.WithField("discarded_status", s.response.StatusCode).
			Warn("Response slot overwritten before drain")
	}
	s.response = resp
}

// Drain returns the pending response and empties the slot. Returns nil when
// the slot is empty, which the caller must treat as a failed invocation.
func (s *ResponseSlot) Drain() *canonical.Response {
	resp := s.response
	s.response = nil
	return resp
}

// Empty reports whether no response is pending.
func (s *ResponseSlot) Empty() bool {
	return s.response == nil
}
