package usecase

import (
	"time"

	"github.com/vitos/futures_day_bot/internal/domain"
)

// Strategy scoring constants. These weights define the entry strategy
// and changing any of them changes live behavior; tests pin them.
const (
	scoreRSINeutral    = 20
	scoreRSIOversold   = 15
	scoreRSIOverbought = 10
	scoreTrendUp       = 20
	scoreTrendDown     = 15
	scoreMomentum      = 15
	scoreVolatility    = 20
	scoreSession       = 25

	entryThreshold = 60
)

type EntryEvaluator struct{}

func NewEntryEvaluator() *EntryEvaluator {
	return &EntryEvaluator{}
}

// Evaluate scores a snapshot against the indicator set. The score is
// additive across independent signals (max 100) and an entry is taken
// at 60 or above. The trend signal always sets the direction last, so
// it overrides any RSI bias.
func (e *EntryEvaluator) Evaluate(snapshot *domain.MarketSnapshot, ind *domain.IndicatorSet) domain.EntryDecision {
	score := 0
	direction := domain.DirectionLong

	// RSI bands. The neutral zone wins over the oversold/overbought
	// thresholds where they overlap.
	switch {
	case ind.RSI >= 30 && ind.RSI <= 70:
		score += scoreRSINeutral
	case ind.RSI < 35:
		score += scoreRSIOversold
		direction = domain.DirectionLong
	case ind.RSI > 65:
		score += scoreRSIOverbought
		direction = domain.DirectionShort
	}

	// Trend is the dominant directional signal.
	if ind.EMA9 > ind.EMA21 {
		score += scoreTrendUp
		direction = domain.DirectionLong
	} else {
		score += scoreTrendDown
		direction = domain.DirectionShort
	}

	if ind.MACD > ind.MACDSignal {
		score += scoreMomentum
	}

	if ind.Volatility >= 20 && ind.Volatility <= 200 {
		score += scoreVolatility
	}

	if inTradingSession(snapshot.Timestamp) {
		score += scoreSession
	}

	return domain.EntryDecision{
		ShouldEnter: score >= entryThreshold,
		Direction:   direction,
		Score:       score,
	}
}

// inTradingSession reports whether t falls in the 09:30-17:25 session.
func inTradingSession(t time.Time) bool {
	h, m := t.Hour(), t.Minute()
	switch {
	case h == 9 && m >= 30:
		return true
	case h >= 10 && h <= 16:
		return true
	case h == 17 && m <= 25:
		return true
	}
	return false
}
