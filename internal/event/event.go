// Package event defines the engine's event data model: the (name,
// timestamp, payload) triple every stage consumes and produces, and the
// closed set of event names the pipeline understands.
package event

import (
	"fmt"

	"riskwave/internal/apperror"
)

// Name identifies the kind of an event. The set is closed: stages only
// ever emit one of these.
type Name string

const (
	BestBid                Name = "best_bid"
	BestAsk                Name = "best_ask"
	MidMarketPrice         Name = "mid_market_price"
	MidMarketPriceReturns  Name = "mid_market_price_returns"
	Long                   Name = "long"
	Short                  Name = "short"
	LongExecuted           Name = "long_executed"
	ShortExecuted          Name = "short_executed"
	TakeFromBids           Name = "take_from_bids"
	TakeFromAsks           Name = "take_from_asks"
	GiveToBids             Name = "give_to_bids"
	GiveToAsks             Name = "give_to_asks"
	EntryBidQueueAppend    Name = "entry_bid_queue_append"
	EntryAskQueueAppend    Name = "entry_ask_queue_append"
	ExitBidQueueAppend     Name = "exit_bid_queue_append"
	ExitAskQueueAppend     Name = "exit_ask_queue_append"
	BidFill                Name = "bid_fill"
	AskFill                Name = "ask_fill"
)

// Payload is a semantically open record: each event Name has a required
// field set (enforced by the typed accessors below) but stages pass
// unrecognized keys through untouched via Clone + overwrite, the Go
// analogue of the reference implementation's dict **spread merges.
type Payload map[string]interface{}

// Clone returns a shallow copy of p so a handler can add/override fields
// without mutating the payload it received.
func (p Payload) Clone() Payload {
	out := make(Payload, len(p)+4)
	for k, v := range p {
		out[k] = v
	}
	return out
}

// With returns a shallow copy of p with the given key set, leaving p
// itself unmodified.
func (p Payload) With(key string, value interface{}) Payload {
	out := p.Clone()
	out[key] = value
	return out
}

// Merge returns a shallow copy of p with every key of extra applied on
// top, mirroring {**p, **extra} in the reference.
func (p Payload) Merge(extra Payload) Payload {
	out := p.Clone()
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// Float64 reads a required float64 field, returning a MissingField error
// (wrapped with ctx) if absent or of the wrong type.
func (p Payload) Float64(ctx, key string) (float64, error) {
	v, ok := p[key]
	if !ok {
		return 0, apperror.NewMissingField(ctx, key)
	}
	f, ok := toFloat64(v)
	if !ok {
		return 0, apperror.NewMissingField(ctx, key).Wrap(fmt.Errorf("field %q is not numeric: %v", key, v))
	}
	return f, nil
}

// String reads a required string field.
func (p Payload) String(ctx, key string) (string, error) {
	v, ok := p[key]
	if !ok {
		return "", apperror.NewMissingField(ctx, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", apperror.NewMissingField(ctx, key).Wrap(fmt.Errorf("field %q is not a string: %v", key, v))
	}
	return s, nil
}

// Int64 reads a required integer field (accepting int64 or float64 as
// stored, since payloads often arrive from JSON decoding).
func (p Payload) Int64(ctx, key string) (int64, error) {
	v, ok := p[key]
	if !ok {
		return 0, apperror.NewMissingField(ctx, key)
	}
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	default:
		return 0, apperror.NewMissingField(ctx, key).Wrap(fmt.Errorf("field %q is not an integer: %v", key, v))
	}
}

func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// Event is the engine's unit of data: an ordered (name, timestamp,
// payload) triple per spec.md §3.
type Event struct {
	Name        Name
	TimestampNs int64
	Payload     Payload
}

// Context renders a short identifier for error messages: "event_name@ts".
func (e Event) Context() string {
	return fmt.Sprintf("%s@%d", e.Name, e.TimestampNs)
}

// New builds an Event, a small convenience used throughout the stages
// package to avoid repeating struct literals.
func New(name Name, ts int64, payload Payload) Event {
	return Event{Name: name, TimestampNs: ts, Payload: payload}
}
