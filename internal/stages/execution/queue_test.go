package execution

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBidQueuePopsNonDecreasingLimitPrice(t *testing.T) {
	q := newQueue(func(a, b *Order) bool {
		if a.LimitPrice != b.LimitPrice {
			return a.LimitPrice < b.LimitPrice
		}
		return a.seq < b.seq
	})

	q.Push(&Order{LimitPrice: 103})
	q.Push(&Order{LimitPrice: 101})
	q.Push(&Order{LimitPrice: 105})
	q.Push(&Order{LimitPrice: 101})

	var prices []float64
	for q.Len() > 0 {
		prices = append(prices, q.Pop().LimitPrice)
	}
	assert.Equal(t, []float64{101, 101, 103, 105}, prices)
}

func TestAskQueuePopsNonIncreasingLimitPrice(t *testing.T) {
	q := newQueue(func(a, b *Order) bool {
		if a.LimitPrice != b.LimitPrice {
			return a.LimitPrice > b.LimitPrice
		}
		return a.seq < b.seq
	})

	q.Push(&Order{LimitPrice: 103})
	q.Push(&Order{LimitPrice: 107})
	q.Push(&Order{LimitPrice: 99})

	var prices []float64
	for q.Len() > 0 {
		prices = append(prices, q.Pop().LimitPrice)
	}
	assert.Equal(t, []float64{107, 103, 99}, prices)
}

func TestEqualPriceTiesBreakByInsertionOrder(t *testing.T) {
	q := newQueue(func(a, b *Order) bool {
		if a.LimitPrice != b.LimitPrice {
			return a.LimitPrice < b.LimitPrice
		}
		return a.seq < b.seq
	})

	first := &Order{LimitPrice: 100, QuoteCurrency: "first"}
	second := &Order{LimitPrice: 100, QuoteCurrency: "second"}
	q.Push(first)
	q.Push(second)

	assert.Equal(t, "first", q.Pop().QuoteCurrency)
	assert.Equal(t, "second", q.Pop().QuoteCurrency)
}
