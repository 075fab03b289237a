package domain

import "time"

// MarketSnapshot is a read-only view of the last quote for a symbol.
type MarketSnapshot struct {
	Symbol    string
	Price     float64
	Volume    float64
	Timestamp time.Time
}

// IndicatorSet carries the indicator values the entry evaluator scores.
type IndicatorSet struct {
	RSI        float64 // RSI(9)
	EMA9       float64
	EMA21      float64
	MACD       float64
	MACDSignal float64
	Volatility float64 // short-window standard deviation
}

// EntryDecision is the outcome of scoring one snapshot.
type EntryDecision struct {
	ShouldEnter bool
	Direction   Direction
	Score       int
}
