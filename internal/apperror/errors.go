// Package apperror defines the fatal error taxonomy used across the
// backtesting engine. Every kind here aborts the backtest: there is no
// retry or local recovery path (see design notes on error handling).
package apperror

import (
	"errors"
	"fmt"
)

// Kind identifies a class of fatal engine error.
type Kind string

const (
	NegativeBalance  Kind = "NEGATIVE_BALANCE"
	NegativeLiquidity Kind = "NEGATIVE_LIQUIDITY"
	EmptyQueue       Kind = "EMPTY_QUEUE"
	UnknownMarket    Kind = "UNKNOWN_MARKET"
	UnknownPosition  Kind = "UNKNOWN_POSITION"
	MissingField     Kind = "MISSING_FIELD"
	NumericDomain    Kind = "NUMERIC_DOMAIN"
)

// Error is the engine's single error type. Context identifies the
// offending event (name + timestamp) so failures are traceable back to
// the input that caused them.
type Error struct {
	Kind    Kind
	Message string
	Context string
	Err     error
}

func (e *Error) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Context)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same Kind.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

func newErr(kind Kind, context string, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Context: context}
}

// NewNegativeBalance reports an operation that would drive a currency
// balance below zero.
func NewNegativeBalance(context, currency string, balance, delta float64) *Error {
	return newErr(NegativeBalance, context, "balance for %s would go negative: %.8f - %.8f", currency, balance, delta)
}

// NewNegativeLiquidity reports an operation that would drive order-book
// liquidity below zero.
func NewNegativeLiquidity(context string, liquidity, delta float64) *Error {
	return newErr(NegativeLiquidity, context, "liquidity would go negative: %.8f - %.8f", liquidity, delta)
}

// NewEmptyQueue reports a peek/pop against an empty queue.
func NewEmptyQueue(context string) *Error {
	return newErr(EmptyQueue, context, "queue is empty")
}

// NewUnknownMarket reports a book read before any write for a market.
func NewUnknownMarket(context, marketID string) *Error {
	return newErr(UnknownMarket, context, "no book for market %q", marketID)
}

// NewUnknownPosition reports a fill referencing a position_ts with no
// open position.
func NewUnknownPosition(context string, positionTS int64) *Error {
	return newErr(UnknownPosition, context, "no open position for position_ts %d", positionTS)
}

// NewMissingField reports an absent required payload field.
func NewMissingField(context, field string) *Error {
	return newErr(MissingField, context, "missing required field %q", field)
}

// NewNumericDomain reports a log/division-by-zero or non-positive
// operand where a positive one was required.
func NewNumericDomain(context, reason string) *Error {
	return newErr(NumericDomain, context, "numeric domain error: %s", reason)
}

// Wrap attaches an underlying cause to an *Error, matching the teacher's
// AppError.Unwrap chaining so errors.Is/As still walk to the root cause.
func (e *Error) Wrap(cause error) *Error {
	e.Err = cause
	return e
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
