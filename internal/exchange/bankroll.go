package exchange

import "riskwave/internal/apperror"

// BankRoll is a mapping from currency code to non-negative balance
// (spec.md §3). Operations that would violate non-negativity fail.
type BankRoll struct {
	balances map[string]float64
}

// NewBankRoll builds a BankRoll seeded with the given initial balances.
func NewBankRoll(initial map[string]float64) *BankRoll {
	b := &BankRoll{balances: make(map[string]float64, len(initial))}
	for currency, amount := range initial {
		b.balances[currency] = amount
	}
	return b
}

// Balance returns the balance for currency, defaulting to zero if never
// set.
func (b *BankRoll) Balance(currency string) float64 {
	return b.balances[currency]
}

// Set assigns the balance for currency directly.
func (b *BankRoll) Set(currency string, amount float64) {
	b.balances[currency] = amount
}

// Add credits amount to currency's balance.
func (b *BankRoll) Add(currency string, amount float64) {
	b.balances[currency] += amount
}

// Sub debits amount from currency's balance, failing if the result would
// go negative.
func (b *BankRoll) Sub(ctx, currency string, amount float64) error {
	current := b.balances[currency]
	if current-amount < 0 {
		return apperror.NewNegativeBalance(ctx, currency, current, amount)
	}
	b.balances[currency] = current - amount
	return nil
}
