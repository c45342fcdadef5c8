// Package window implements the Time-Sliding Window auxiliary
// structure named in spec.md §3: a FIFO of events whose newest-oldest
// event-time span is bounded by a configured duration. It is a general
// utility for embedders building feature-engineering stages on top of
// the core pipeline; it is not itself a pipeline stage.
package window

import (
	"riskwave/internal/apperror"
	"riskwave/internal/event"
)

// Fixed is a FIFO of events bounded by a duration span in event time:
// pushing an event evicts every older event whose age (relative to the
// newly pushed event's timestamp) exceeds SpanNs.
type Fixed struct {
	SpanNs int64
	items  []event.Event
}

// NewFixed builds a Fixed window spanning spanNs nanoseconds of event
// time.
func NewFixed(spanNs int64) *Fixed {
	return &Fixed{SpanNs: spanNs}
}

// Push appends e and evicts every item now older than SpanNs relative
// to e's timestamp.
func (f *Fixed) Push(e event.Event) {
	f.items = append(f.items, e)
	cutoff := e.TimestampNs - f.SpanNs

	i := 0
	for i < len(f.items) && f.items[i].TimestampNs < cutoff {
		i++
	}
	if i > 0 {
		f.items = append([]event.Event(nil), f.items[i:]...)
	}
}

// Len reports the number of events currently held.
func (f *Fixed) Len() int { return len(f.items) }

// Items returns the window's contents, oldest first. The returned slice
// must not be mutated by the caller.
func (f *Fixed) Items() []event.Event { return f.items }

// Oldest returns the oldest event in the window, failing with
// EmptyQueue if the window holds nothing.
func (f *Fixed) Oldest(ctx string) (event.Event, error) {
	if len(f.items) == 0 {
		return event.Event{}, apperror.NewEmptyQueue(ctx)
	}
	return f.items[0], nil
}

// Newest returns the most recently pushed event, failing with
// EmptyQueue if the window holds nothing.
func (f *Fixed) Newest(ctx string) (event.Event, error) {
	if len(f.items) == 0 {
		return event.Event{}, apperror.NewEmptyQueue(ctx)
	}
	return f.items[len(f.items)-1], nil
}

// Snapshot is one emission of a Sliding window: the window's contents
// at the moment a step boundary in event time was crossed.
type Snapshot struct {
	AtTimestampNs int64
	Items         []event.Event
}

// Sliding wraps a Fixed window and additionally emits a Snapshot every
// StepNs of event time, measured from the first event pushed.
type Sliding struct {
	fixed  *Fixed
	StepNs int64

	nextBoundary int64
	started      bool
}

// NewSliding builds a Sliding window spanning spanNs of event time and
// emitting a snapshot every stepNs.
func NewSliding(spanNs, stepNs int64) *Sliding {
	return &Sliding{fixed: NewFixed(spanNs), StepNs: stepNs}
}

// Push appends e to the underlying Fixed window and returns the
// Snapshot for every step boundary crossed since the last push, oldest
// boundary first (ordinarily at most one, but a push spanning a gap in
// the event stream larger than StepNs may cross several).
func (s *Sliding) Push(e event.Event) []Snapshot {
	s.fixed.Push(e)

	if !s.started {
		s.started = true
		s.nextBoundary = e.TimestampNs + s.StepNs
		return nil
	}

	var snapshots []Snapshot
	for e.TimestampNs >= s.nextBoundary {
		items := make([]event.Event, len(s.fixed.Items()))
		copy(items, s.fixed.Items())
		snapshots = append(snapshots, Snapshot{AtTimestampNs: s.nextBoundary, Items: items})
		s.nextBoundary += s.StepNs
	}
	return snapshots
}

// Len reports the number of events currently held in the underlying
// Fixed window.
func (s *Sliding) Len() int { return s.fixed.Len() }
