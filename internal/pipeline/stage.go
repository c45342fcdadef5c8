// Package pipeline implements the composable chain of stateful stages
// that turn one event list into another (spec.md §4.1), and the
// Backtest driver that feeds a chronological event source through it.
package pipeline

import (
	"riskwave/internal/event"
)

// Stage transforms an input list of events into an output list of
// events. Concrete stages are pure-ish: they may carry internal state
// (mid-market history, pending-order queues, open positions) and mutate
// the shared exchange registry, but never the event lists themselves.
type Stage interface {
	Process(events []event.Event) ([]event.Event, error)
}

// Handler receives one event's timestamp and payload and returns the
// list of events it produces (possibly empty). Handler errors propagate
// and abort the backtest: there is no local recovery (spec.md §4.1,
// §7).
type Handler func(ts int64, payload event.Payload) ([]event.Event, error)

// Dispatcher implements the uniform per-event-name handler lookup every
// concrete stage inherits: look up a handler named after the event; if
// present, replace the input event with the handler's output list; if
// absent, pass the event through unchanged. This is the Go-native
// replacement for the reference's runtime getattr(self, f"on_{name}")
// dispatch (spec.md §9: "replace runtime attribute lookup with ... a
// dispatch(event) -> [event] ... whose default forwards the event").
type Dispatcher struct {
	handlers map[event.Name]Handler
}

// NewDispatcher builds an empty Dispatcher; concrete stages call
// Register in their constructor for every event name they handle.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[event.Name]Handler)}
}

// Register binds a handler to an event name. Registering the same name
// twice replaces the previous handler.
func (d *Dispatcher) Register(name event.Name, h Handler) {
	d.handlers[name] = h
}

// Process implements Stage by dispatching each input event to its
// handler, or passing it through unchanged if no handler is registered.
// Unknown events are never dropped, and the relative order of
// pass-through events is preserved with respect to each other, since
// output is built by appending to a single slice in input order.
func (d *Dispatcher) Process(events []event.Event) ([]event.Event, error) {
	out := make([]event.Event, 0, len(events))

	for _, e := range events {
		h, ok := d.handlers[e.Name]
		if !ok {
			out = append(out, e)
			continue
		}

		produced, err := h(e.TimestampNs, e.Payload)
		if err != nil {
			return nil, err
		}
		out = append(out, produced...)
	}

	return out, nil
}
