// Package execution implements the matching algorithm shared by the
// Entry Stage and Exit Stage specializations (spec.md §4.4), grounded
// on dyno.strategy.ExecutionStrategy/BidQueue/AskQueue and implemented
// with container/heap in place of the reference's manual bisect-based
// priority queues.
package execution

import "riskwave/internal/event"

// Order is a queued taker order (spec.md §3 PendingOrder). Payload
// carries the full originating event payload so bid_fill/ask_fill
// emission can spread it per the wire contract ("order payload +
// {amount, fee}").
type Order struct {
	Payload event.Payload

	MarketID      string
	ExchangeName  string
	BaseCurrency  string
	QuoteCurrency string

	LimitPrice     float64
	RemainingQuote float64

	seq int
}

// less orders two Order pointers by price, falling back to insertion
// sequence so equal-price ties resolve in FIFO order (spec.md §4.4
// "Determinism: heap tie-breaks on equal limit_price follow insertion
// order").
type lessFunc func(a, b *Order) bool

// orderHeap adapts a []*Order plus a comparator into container/heap's
// Interface. The same type backs both the bid (min-heap) and ask
// (max-heap) queues by swapping the comparator.
type orderHeap struct {
	orders []*Order
	less   lessFunc
}

func (h *orderHeap) Len() int { return len(h.orders) }

func (h *orderHeap) Less(i, j int) bool { return h.less(h.orders[i], h.orders[j]) }

func (h *orderHeap) Swap(i, j int) { h.orders[i], h.orders[j] = h.orders[j], h.orders[i] }

func (h *orderHeap) Push(x interface{}) {
	h.orders = append(h.orders, x.(*Order))
}

func (h *orderHeap) Pop() interface{} {
	n := len(h.orders)
	o := h.orders[n-1]
	h.orders[n-1] = nil
	h.orders = h.orders[:n-1]
	return o
}
