// Package logger centralizes zap logger construction so every component
// falls back to the same development logger when the embedder doesn't
// inject one, matching the teacher's NewXxx(..., logger *zap.Logger)
// convention used throughout internal/backtest.
package logger

import "go.uber.org/zap"

// OrDefault returns l unchanged if non-nil, otherwise a development
// logger. Components call this once in their constructor rather than
// checking for nil on every log call.
func OrDefault(l *zap.Logger) *zap.Logger {
	if l != nil {
		return l
	}
	dev, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return dev
}

// Nop returns a logger that discards everything, for tests.
func Nop() *zap.Logger {
	return zap.NewNop()
}
