// Package signal ships no real trading strategy — the Signal Stage is
// user-supplied (spec.md §2 item 2). PassthroughSignal exists only to
// demonstrate the handler contract a real strategy stage must satisfy:
// it never computes "amount", since sizing is entirely the Risk
// Stage's job (spec.md §9, resolved open question 5).
package signal

import (
	"riskwave/internal/event"
	"riskwave/internal/pipeline"
)

// PassthroughSignal is a Stage that passes every event through
// unchanged. It registers no handlers, relying entirely on the
// Dispatcher's pass-through default — useful in tests wiring a full
// six-stage pipeline without a real strategy, and as a minimal example
// of the Signal Stage's position in the pipeline.
type PassthroughSignal struct {
	dispatcher *pipeline.Dispatcher
}

// NewPassthroughSignal builds a Signal Stage that emits nothing of its
// own.
func NewPassthroughSignal() *PassthroughSignal {
	return &PassthroughSignal{dispatcher: pipeline.NewDispatcher()}
}

// Process implements pipeline.Stage.
func (s *PassthroughSignal) Process(events []event.Event) ([]event.Event, error) {
	return s.dispatcher.Process(events)
}
