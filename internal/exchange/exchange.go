package exchange

import "riskwave/internal/apperror"

// FeeSchedule holds the maker/taker percentage fee rates for an
// exchange, recovering the reference's StaticFeeSchedule/
// VolumeFeeSchedule distinction: this engine only needs the static
// case, since volume-tiered fee scheduling is a strategy concern (the
// teacher's TieredFeeModel in internal/backtest/fee.go) layered on top,
// not a core-engine requirement of spec.md.
type FeeSchedule struct {
	MakerPct float64
	TakerPct float64
}

// TakerFee returns the taker fee for a trade of the given size in quote
// currency. The reference passes a single amount argument to
// get_taker_quoted_fee at every call site (resolved open question,
// spec.md §9 item 3) — this is that single-argument signature.
func (f FeeSchedule) TakerFee(amountQuote float64) float64 {
	return amountQuote * f.TakerPct / 100
}

// MakerFee returns the maker fee for a trade of the given size in quote
// currency. Unused by the core matching loop (makers are not simulated,
// per the glossary), kept for symmetry and for embedders modelling
// resting orders on top of this engine.
func (f FeeSchedule) MakerFee(amountQuote float64) float64 {
	return amountQuote * f.MakerPct / 100
}

// SizeLimit bounds the minimum/maximum trade size, in quote currency,
// for one base×quote market pair.
type SizeLimit struct {
	Min float64
	Max float64
}

// sizeLimitKey identifies a base×quote pair in an exchange's size-limits
// table.
type sizeLimitKey struct {
	Base  string
	Quote string
}

// Exchange owns one BankRoll, one fee schedule, a size-limits table, and
// a mapping from market identifier to order book (spec.md §3). Books
// are created lazily on first write.
type Exchange struct {
	Name string

	Fee        FeeSchedule
	sizeLimits map[sizeLimitKey]SizeLimit

	// defaultSizeLimit applies to any base×quote pair with no
	// pair-specific override, set by NewRegistryFromPresets.
	defaultSizeLimit SizeLimit

	bankRoll *BankRoll
	books    map[string]*Book
}

// New builds an Exchange with the given fee schedule and initial
// balances. Use SetSizeLimit to populate the size-limits table.
func New(name string, fee FeeSchedule, initialBalances map[string]float64) *Exchange {
	return &Exchange{
		Name:             name,
		Fee:              fee,
		sizeLimits:       make(map[sizeLimitKey]SizeLimit),
		defaultSizeLimit: SizeLimit{Min: 0, Max: maxFloat},
		bankRoll:         NewBankRoll(initialBalances),
		books:            make(map[string]*Book),
	}
}

// SetSizeLimit registers the minimum/maximum trade size (quote currency)
// for a base×quote pair.
func (e *Exchange) SetSizeLimit(base, quote string, limit SizeLimit) {
	e.sizeLimits[sizeLimitKey{Base: base, Quote: quote}] = limit
}

// SizeLimit returns the registered min/max trade size for a base×quote
// pair, falling back to the exchange-wide default (unrestricted unless
// set via NewRegistryFromPresets) when no pair-specific limit exists.
func (e *Exchange) SizeLimit(base, quote string) SizeLimit {
	if limit, ok := e.sizeLimits[sizeLimitKey{Base: base, Quote: quote}]; ok {
		return limit
	}
	return e.defaultSizeLimit
}

const maxFloat = 1.0e308

// Balance returns the bankroll balance for a currency.
func (e *Exchange) Balance(currency string) float64 {
	return e.bankRoll.Balance(currency)
}

// AddBalance credits a currency's balance.
func (e *Exchange) AddBalance(currency string, amount float64) {
	e.bankRoll.Add(currency, amount)
}

// SubBalance debits a currency's balance, failing on NegativeBalance.
func (e *Exchange) SubBalance(ctx, currency string, amount float64) error {
	return e.bankRoll.Sub(ctx, currency, amount)
}

// book returns the Book for marketID, creating it lazily on first
// access.
func (e *Exchange) book(marketID string) *Book {
	b, ok := e.books[marketID]
	if !ok {
		b = &Book{}
		e.books[marketID] = b
	}
	return b
}

// Book returns the existing Book for marketID, failing with
// UnknownMarket if it has never been written to.
func (e *Exchange) Book(ctx, marketID string) (*Book, error) {
	b, ok := e.books[marketID]
	if !ok {
		return nil, apperror.NewUnknownMarket(ctx, marketID)
	}
	return b, nil
}

// SetBestBid writes the best bid for marketID, creating the book lazily.
func (e *Exchange) SetBestBid(ctx, marketID string, price, liquidity float64) error {
	return e.book(marketID).SetBid(ctx, price, liquidity)
}

// SetBestAsk writes the best ask for marketID, creating the book lazily.
func (e *Exchange) SetBestAsk(ctx, marketID string, price, liquidity float64) error {
	return e.book(marketID).SetAsk(ctx, price, liquidity)
}
