// Package data implements the Data Stage: it writes top-of-book updates
// into the shared exchange registry and derives mid-market price and
// mid-market returns, grounded on dyno.strategy.DataStrategy.
package data

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"riskwave/internal/apperror"
	"riskwave/internal/event"
	"riskwave/internal/exchange"
	"riskwave/internal/logger"
	"riskwave/internal/pipeline"
)

// marketKey identifies one (exchange, market) pair for mid-market
// history tracking.
type marketKey struct {
	ExchangeName string
	MarketID     string
}

// mids holds the running mid-market history for one market. known
// guards against treating a legitimate 0.0 price as "not yet observed"
// (spec.md §4.2 resolved: Go's float64 zero value is a valid-looking
// value, not absence).
type mids struct {
	prev, curr float64
	prevKnown  bool
	currKnown  bool
}

// Stage is the Data Stage. It owns per-market mid-market history and
// dispatches best_bid/best_ask through the shared Dispatcher contract.
type Stage struct {
	registry *exchange.Registry
	log      *zap.Logger

	history map[marketKey]*mids

	dispatcher *pipeline.Dispatcher
}

// New builds the Data Stage wired against the given registry.
func New(registry *exchange.Registry, log *zap.Logger) *Stage {
	s := &Stage{
		registry: registry,
		log:      logger.OrDefault(log),
		history:  make(map[marketKey]*mids),
	}

	s.dispatcher = pipeline.NewDispatcher()
	s.dispatcher.Register(event.BestBid, s.handleBestBid)
	s.dispatcher.Register(event.BestAsk, s.handleBestAsk)
	return s
}

// Process implements pipeline.Stage.
func (s *Stage) Process(events []event.Event) ([]event.Event, error) {
	return s.dispatcher.Process(events)
}

func (s *Stage) handleBestBid(ts int64, payload event.Payload) ([]event.Event, error) {
	return s.handleBestSide(ts, payload, event.BestBid, true)
}

func (s *Stage) handleBestAsk(ts int64, payload event.Payload) ([]event.Event, error) {
	return s.handleBestSide(ts, payload, event.BestAsk, false)
}

// handleBestSide implements the shared best_bid/best_ask handling:
// write the book side, recompute mid-market price if both sides are
// now populated, recompute returns if a previous mid exists. Output
// order is original event, then mid_market_price, then
// mid_market_price_returns (spec.md §4.2 "Event ordering in output").
func (s *Stage) handleBestSide(ts int64, payload event.Payload, name event.Name, isBid bool) ([]event.Event, error) {
	ctx := fmt.Sprintf("%s@%d", name, ts)

	exchangeName, err := payload.String(ctx, "exchange_name")
	if err != nil {
		return nil, err
	}
	marketID, err := payload.String(ctx, "market_id")
	if err != nil {
		return nil, err
	}
	price, err := payload.Float64(ctx, "price")
	if err != nil {
		return nil, err
	}
	liquidity, err := payload.Float64(ctx, "liquidity")
	if err != nil {
		return nil, err
	}

	ex, err := s.registry.Get(exchangeName)
	if err != nil {
		return nil, err
	}

	if isBid {
		err = ex.SetBestBid(ctx, marketID, price, liquidity)
	} else {
		err = ex.SetBestAsk(ctx, marketID, price, liquidity)
	}
	if err != nil {
		return nil, err
	}

	out := []event.Event{event.New(name, ts, payload)}

	book, err := ex.Book(ctx, marketID)
	if err != nil {
		return nil, err
	}
	if !book.BothSidesSet() {
		return out, nil
	}

	key := marketKey{ExchangeName: exchangeName, MarketID: marketID}
	h, ok := s.history[key]
	if !ok {
		h = &mids{}
		s.history[key] = h
	}

	mid := (book.Bid.Price + book.Ask.Price) / 2
	h.prev, h.prevKnown = h.curr, h.currKnown
	h.curr, h.currKnown = mid, true

	midPayload := event.Payload{
		"market_id":        marketID,
		"exchange_name":    exchangeName,
		"mid_market_price": mid,
	}
	out = append(out, event.New(event.MidMarketPrice, ts, midPayload))

	if !h.prevKnown || h.prev <= 0 || h.curr <= 0 {
		return out, nil
	}

	lin := (h.curr - h.prev) / h.prev
	log, err := safeLog(ctx, h.curr/h.prev)
	if err != nil {
		return nil, err
	}

	returnsPayload := event.Payload{
		"market_id":     marketID,
		"exchange_name": exchangeName,
		"lin":           lin,
		"log":           log,
	}
	out = append(out, event.New(event.MidMarketPriceReturns, ts, returnsPayload))

	return out, nil
}

func safeLog(ctx string, ratio float64) (float64, error) {
	if ratio <= 0 {
		return 0, apperror.NewNumericDomain(ctx, "log of non-positive ratio")
	}
	return math.Log(ratio), nil
}
