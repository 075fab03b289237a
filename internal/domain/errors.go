package domain

import "errors"

var (
	// ErrAlreadyActive is returned by Start when the user already has a
	// running bot.
	ErrAlreadyActive = errors.New("bot already active for user")

	// ErrNotActive is returned by Stop when the user has no running bot.
	ErrNotActive = errors.New("no active bot for user")

	// ErrInsufficientData is returned by the backtest when the series is
	// shorter than the minimum window.
	ErrInsufficientData = errors.New("insufficient historical data")

	// ErrExecutionFailed is returned when the order executor rejects an
	// entry; the entry is abandoned and no position is recorded.
	ErrExecutionFailed = errors.New("order execution failed")

	// ErrDataUnavailable marks a tick where market data or indicators
	// were missing; the tick is skipped without state changes.
	ErrDataUnavailable = errors.New("market data unavailable")
)
