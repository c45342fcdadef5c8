package exchange

import "riskwave/internal/apperror"

// Side is one half of an OrderBook: a price and the liquidity quoted at
// that price in base-currency units.
type Side struct {
	Price     float64
	Liquidity float64
	set       bool
}

// Book represents the top of one market: best_bid and best_ask. Either
// side may be uninitialized until the first write (spec.md §3).
type Book struct {
	Bid Side
	Ask Side
}

// SetBid writes the best bid. Liquidity must be non-negative.
func (b *Book) SetBid(ctx string, price, liquidity float64) error {
	if liquidity < 0 {
		return apperror.NewNegativeLiquidity(ctx, 0, -liquidity)
	}
	b.Bid = Side{Price: price, Liquidity: liquidity, set: true}
	return nil
}

// SetAsk writes the best ask. Liquidity must be non-negative.
func (b *Book) SetAsk(ctx string, price, liquidity float64) error {
	if liquidity < 0 {
		return apperror.NewNegativeLiquidity(ctx, 0, -liquidity)
	}
	b.Ask = Side{Price: price, Liquidity: liquidity, set: true}
	return nil
}

// RemoveBidLiquidity decrements bid-side liquidity, failing if the
// result would go negative (spec.md §3 invariant).
func (b *Book) RemoveBidLiquidity(ctx string, amount float64) error {
	if b.Bid.Liquidity-amount < 0 {
		return apperror.NewNegativeLiquidity(ctx, b.Bid.Liquidity, amount)
	}
	b.Bid.Liquidity -= amount
	return nil
}

// RemoveAskLiquidity decrements ask-side liquidity, failing if the
// result would go negative.
func (b *Book) RemoveAskLiquidity(ctx string, amount float64) error {
	if b.Ask.Liquidity-amount < 0 {
		return apperror.NewNegativeLiquidity(ctx, b.Ask.Liquidity, amount)
	}
	b.Ask.Liquidity -= amount
	return nil
}

// BothSidesSet reports whether both best bid and best ask have been
// observed at least once.
func (b *Book) BothSidesSet() bool {
	return b.Bid.set && b.Ask.set
}
