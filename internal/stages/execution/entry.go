package execution

import (
	"fmt"

	"go.uber.org/zap"

	"riskwave/internal/event"
	"riskwave/internal/exchange"
	"riskwave/internal/logger"
	"riskwave/internal/pipeline"
)

// EntryStage is the Entry Stage (spec.md §4.4): it queues taker orders
// from take_from_bids/take_from_asks and runs the matching loop on
// every best_bid/best_ask update.
type EntryStage struct {
	registry *exchange.Registry
	engine   *Engine
	log      *zap.Logger

	dispatcher *pipeline.Dispatcher
}

// NewEntryStage builds the Entry Stage wired against the given
// registry.
func NewEntryStage(registry *exchange.Registry, log *zap.Logger) *EntryStage {
	s := &EntryStage{
		registry: registry,
		engine:   New(),
		log:      logger.OrDefault(log),
	}

	s.dispatcher = pipeline.NewDispatcher()
	s.dispatcher.Register(event.TakeFromBids, s.handleTakeFromBids)
	s.dispatcher.Register(event.TakeFromAsks, s.handleTakeFromAsks)
	s.dispatcher.Register(event.BestBid, s.handleBestBid)
	s.dispatcher.Register(event.BestAsk, s.handleBestAsk)
	return s
}

// Process implements pipeline.Stage.
func (s *EntryStage) Process(events []event.Event) ([]event.Event, error) {
	return s.dispatcher.Process(events)
}

func (s *EntryStage) handleTakeFromBids(ts int64, payload event.Payload) ([]event.Event, error) {
	return enqueue(ts, payload, s.engine.Bid, event.EntryBidQueueAppend)
}

func (s *EntryStage) handleTakeFromAsks(ts int64, payload event.Payload) ([]event.Event, error) {
	return enqueue(ts, payload, s.engine.Ask, event.EntryAskQueueAppend)
}

// handleBestBid passes the triggering event through and then runs the
// bid-queue matching loop, since a dispatcher handler replaces its
// input event entirely (spec.md §4.1) and later stages still need to
// observe best_bid.
func (s *EntryStage) handleBestBid(ts int64, payload event.Payload) ([]event.Event, error) {
	ctx := fmt.Sprintf("%s@%d", event.BestBid, ts)
	fills, err := s.engine.MatchBid(ctx, ts, s.registry)
	if err != nil {
		return nil, err
	}
	return append([]event.Event{event.New(event.BestBid, ts, payload)}, fills...), nil
}

func (s *EntryStage) handleBestAsk(ts int64, payload event.Payload) ([]event.Event, error) {
	ctx := fmt.Sprintf("%s@%d", event.BestAsk, ts)
	fills, err := s.engine.MatchAsk(ctx, ts, s.registry)
	if err != nil {
		return nil, err
	}
	return append([]event.Event{event.New(event.BestAsk, ts, payload)}, fills...), nil
}

// enqueue builds a PendingOrder from a take_from_bids/take_from_asks
// (or give_to_bids/give_to_asks) payload, pushes it onto q, and emits
// the queue-append diagnostic with the original payload spread plus
// initial_amount (spec.md §6).
func enqueue(ts int64, payload event.Payload, q *Queue, appendName event.Name) ([]event.Event, error) {
	ctx := fmt.Sprintf("%s@%d", appendName, ts)

	marketID, err := payload.String(ctx, "market_id")
	if err != nil {
		return nil, err
	}
	exchangeName, err := payload.String(ctx, "exchange_name")
	if err != nil {
		return nil, err
	}
	baseCurrency, err := payload.String(ctx, "base_currency")
	if err != nil {
		return nil, err
	}
	quoteCurrency, err := payload.String(ctx, "quote_currency")
	if err != nil {
		return nil, err
	}
	price, err := payload.Float64(ctx, "price")
	if err != nil {
		return nil, err
	}
	amount, err := payload.Float64(ctx, "amount")
	if err != nil {
		return nil, err
	}

	order := &Order{
		Payload:        payload,
		MarketID:       marketID,
		ExchangeName:   exchangeName,
		BaseCurrency:   baseCurrency,
		QuoteCurrency:  quoteCurrency,
		LimitPrice:     price,
		RemainingQuote: amount,
	}
	q.Push(order)

	appendPayload := payload.Merge(event.Payload{"initial_amount": amount})
	return []event.Event{event.New(appendName, ts, appendPayload)}, nil
}
