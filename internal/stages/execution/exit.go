package execution

import (
	"fmt"

	"go.uber.org/zap"

	"riskwave/internal/event"
	"riskwave/internal/exchange"
	"riskwave/internal/logger"
	"riskwave/internal/pipeline"
)

// ExitStage is the Exit Stage (spec.md §4.4/§4.6): symmetric with
// EntryStage, queuing from give_to_bids/give_to_asks and running the
// same matching algorithm on every best_bid/best_ask update.
type ExitStage struct {
	registry *exchange.Registry
	engine   *Engine
	log      *zap.Logger

	dispatcher *pipeline.Dispatcher
}

// NewExitStage builds the Exit Stage wired against the given registry.
func NewExitStage(registry *exchange.Registry, log *zap.Logger) *ExitStage {
	s := &ExitStage{
		registry: registry,
		engine:   New(),
		log:      logger.OrDefault(log),
	}

	s.dispatcher = pipeline.NewDispatcher()
	s.dispatcher.Register(event.GiveToBids, s.handleGiveToBids)
	s.dispatcher.Register(event.GiveToAsks, s.handleGiveToAsks)
	s.dispatcher.Register(event.BestBid, s.handleBestBid)
	s.dispatcher.Register(event.BestAsk, s.handleBestAsk)
	return s
}

// Process implements pipeline.Stage.
func (s *ExitStage) Process(events []event.Event) ([]event.Event, error) {
	return s.dispatcher.Process(events)
}

func (s *ExitStage) handleGiveToBids(ts int64, payload event.Payload) ([]event.Event, error) {
	return enqueue(ts, payload, s.engine.Bid, event.ExitBidQueueAppend)
}

func (s *ExitStage) handleGiveToAsks(ts int64, payload event.Payload) ([]event.Event, error) {
	return enqueue(ts, payload, s.engine.Ask, event.ExitAskQueueAppend)
}

func (s *ExitStage) handleBestBid(ts int64, payload event.Payload) ([]event.Event, error) {
	ctx := fmt.Sprintf("%s@%d", event.BestBid, ts)
	fills, err := s.engine.MatchBid(ctx, ts, s.registry)
	if err != nil {
		return nil, err
	}
	return append([]event.Event{event.New(event.BestBid, ts, payload)}, fills...), nil
}

func (s *ExitStage) handleBestAsk(ts int64, payload event.Payload) ([]event.Event, error) {
	ctx := fmt.Sprintf("%s@%d", event.BestAsk, ts)
	fills, err := s.engine.MatchAsk(ctx, ts, s.registry)
	if err != nil {
		return nil, err
	}
	return append([]event.Event{event.New(event.BestAsk, ts, payload)}, fills...), nil
}
