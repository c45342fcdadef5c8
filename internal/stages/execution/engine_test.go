package execution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskwave/internal/event"
	"riskwave/internal/exchange"
)

func testExchange(t *testing.T, takerPct float64) *exchange.Registry {
	t.Helper()
	registry := exchange.NewRegistry()
	registry.Add(exchange.New("TEST", exchange.FeeSchedule{TakerPct: takerPct}, map[string]float64{
		"USD": 10000,
		"BTC": 10,
	}))
	return registry
}

func pendingOrder(limitPrice, remainingQuote float64) *Order {
	return &Order{
		Payload:        event.Payload{"foo": "bar"},
		MarketID:       "BTC-USD",
		ExchangeName:   "TEST",
		BaseCurrency:   "BTC",
		QuoteCurrency:  "USD",
		LimitPrice:     limitPrice,
		RemainingQuote: remainingQuote,
	}
}

func TestMatchBidFullFillEmitsBidFill(t *testing.T) {
	registry := testExchange(t, 0)
	ex, _ := registry.Get("TEST")
	require.NoError(t, ex.SetBestBid("test", "BTC-USD", 101, 1))

	e := New()
	e.Bid.Push(pendingOrder(100, 50))

	out, err := e.MatchBid("test", 1, registry)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, event.BidFill, out[0].Name)

	amount, _ := out[0].Payload.Float64("test", "amount")
	assert.InDelta(t, 50, amount, 1e-9)
	assert.Equal(t, 0, e.Bid.Len(), "fully filled order is removed from the queue")

	book, err := ex.Book("test", "BTC-USD")
	require.NoError(t, err)
	assert.InDelta(t, 1-(50.0/101), book.Bid.Liquidity, 1e-9)
}

func TestMatchBidPartialFillLeavesOrderQueued(t *testing.T) {
	registry := testExchange(t, 0)
	ex, _ := registry.Get("TEST")
	// Liquidity (in base units) worth less than the order wants in quote.
	require.NoError(t, ex.SetBestBid("test", "BTC-USD", 100, 0.1))

	e := New()
	e.Bid.Push(pendingOrder(100, 50))

	out, err := e.MatchBid("test", 1, registry)
	require.NoError(t, err)
	require.Len(t, out, 1)

	amount, _ := out[0].Payload.Float64("test", "amount")
	assert.InDelta(t, 10, amount, 1e-9) // 0.1 base * 100 price

	assert.Equal(t, 1, e.Bid.Len(), "partially filled order remains queued")
	remaining := e.Bid.Peek()
	assert.InDelta(t, 40, remaining.RemainingQuote, 1e-9)
}

func TestMatchBidIneligibleOrderStopsAtHead(t *testing.T) {
	registry := testExchange(t, 0)
	ex, _ := registry.Get("TEST")
	require.NoError(t, ex.SetBestBid("test", "BTC-USD", 90, 1)) // below limit price

	e := New()
	e.Bid.Push(pendingOrder(100, 50))

	out, err := e.MatchBid("test", 1, registry)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, 1, e.Bid.Len(), "ineligible order remains queued, not evicted")
}

func TestMatchAskEmitsAskFill(t *testing.T) {
	registry := testExchange(t, 0)
	ex, _ := registry.Get("TEST")
	require.NoError(t, ex.SetBestAsk("test", "BTC-USD", 100, 1))

	e := New()
	e.Ask.Push(pendingOrder(101, 30))

	out, err := e.MatchAsk("test", 1, registry)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, event.AskFill, out[0].Name)
}

func TestFillAmountNeverExceedsOrderOrLiquidityValue(t *testing.T) {
	registry := testExchange(t, 0.5)
	ex, _ := registry.Get("TEST")
	require.NoError(t, ex.SetBestBid("test", "BTC-USD", 50, 0.2))

	e := New()
	e.Bid.Push(pendingOrder(50, 1000))

	out, err := e.MatchBid("test", 1, registry)
	require.NoError(t, err)
	require.Len(t, out, 1)

	amount, _ := out[0].Payload.Float64("test", "amount")
	assert.Greater(t, amount, 0.0)
	assert.LessOrEqual(t, amount, 1000.0)
	assert.LessOrEqual(t, amount, 0.2*50+1e-9)
}
