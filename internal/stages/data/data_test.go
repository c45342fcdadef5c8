package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"riskwave/internal/event"
	"riskwave/internal/exchange"
)

func bidEvent(ts int64, price, liq float64) event.Event {
	return event.New(event.BestBid, ts, event.Payload{
		"exchange_name": "TEST",
		"market_id":     "BTC-USD",
		"price":         price,
		"liquidity":     liq,
	})
}

func askEvent(ts int64, price, liq float64) event.Event {
	return event.New(event.BestAsk, ts, event.Payload{
		"exchange_name": "TEST",
		"market_id":     "BTC-USD",
		"price":         price,
		"liquidity":     liq,
	})
}

func newStage(t *testing.T) (*Stage, *exchange.Registry) {
	t.Helper()
	registry := exchange.NewRegistry()
	registry.Add(exchange.New("TEST", exchange.FeeSchedule{}, nil))
	return New(registry, zap.NewNop()), registry
}

// Scenario A: mid-market price is only emitted once both sides of the
// book are populated.
func TestMidMarketPriceEmittedOnlyWhenBothSidesSet(t *testing.T) {
	s, _ := newStage(t)

	out, err := s.Process([]event.Event{bidEvent(1, 100, 5)})
	require.NoError(t, err)
	require.Len(t, out, 1, "no mid-market price until the ask side is also set")
	assert.Equal(t, event.BestBid, out[0].Name)

	out, err = s.Process([]event.Event{askEvent(2, 102, 5)})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, event.BestAsk, out[0].Name)
	assert.Equal(t, event.MidMarketPrice, out[1].Name)
	mid, _ := out[1].Payload.Float64("test", "mid_market_price")
	assert.InDelta(t, 101.0, mid, 1e-9)
}

// Scenario B: returns are emitted starting from the second mid-market
// update, not the first.
func TestReturnsEmittedOnlyFromSecondMidUpdate(t *testing.T) {
	s, _ := newStage(t)

	_, err := s.Process([]event.Event{bidEvent(1, 100, 5), askEvent(1, 102, 5)})
	require.NoError(t, err)

	out, err := s.Process([]event.Event{bidEvent(2, 110, 5)})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, event.MidMarketPriceReturns, out[2].Name)

	lin, _ := out[2].Payload.Float64("test", "lin")
	assert.InDelta(t, (106.0-101.0)/101.0, lin, 1e-9)
}

func TestEventOrderingIsBidOrAskThenMidThenReturns(t *testing.T) {
	s, _ := newStage(t)

	_, err := s.Process([]event.Event{bidEvent(1, 100, 5), askEvent(1, 102, 5)})
	require.NoError(t, err)

	out, err := s.Process([]event.Event{askEvent(2, 104, 5)})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, event.BestAsk, out[0].Name)
	assert.Equal(t, event.MidMarketPrice, out[1].Name)
	assert.Equal(t, event.MidMarketPriceReturns, out[2].Name)
}

func TestPassThroughForUnrelatedEvents(t *testing.T) {
	s, _ := newStage(t)

	unrelated := event.New(event.Long, 1, event.Payload{"foo": "bar"})
	out, err := s.Process([]event.Event{unrelated})
	require.NoError(t, err)
	assert.Equal(t, []event.Event{unrelated}, out)
}
