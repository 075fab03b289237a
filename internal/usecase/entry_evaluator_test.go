package usecase_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vitos/futures_day_bot/internal/domain"
	"github.com/vitos/futures_day_bot/internal/usecase"
)

func snapshotAt(hour, min int) *domain.MarketSnapshot {
	return &domain.MarketSnapshot{
		Symbol:    "WIN",
		Price:     112450,
		Timestamp: time.Date(2025, 3, 10, hour, min, 0, 0, time.UTC),
	}
}

func TestEvaluate_AllSignalsAligned(t *testing.T) {
	e := usecase.NewEntryEvaluator()
	ind := &domain.IndicatorSet{
		RSI:        55,
		EMA9:       112500,
		EMA21:      112400,
		MACD:       0.15,
		MACDSignal: 0.10,
		Volatility: 100,
	}

	decision := e.Evaluate(snapshotAt(11, 0), ind)
	assert.True(t, decision.ShouldEnter)
	assert.Equal(t, domain.DirectionLong, decision.Direction)
	assert.Equal(t, 100, decision.Score)
}

func TestEvaluate_TrendDownGivesShort(t *testing.T) {
	e := usecase.NewEntryEvaluator()
	ind := &domain.IndicatorSet{
		RSI:        55,
		EMA9:       112400,
		EMA21:      112500,
		MACD:       0.15,
		MACDSignal: 0.10,
		Volatility: 100,
	}

	decision := e.Evaluate(snapshotAt(11, 0), ind)
	assert.True(t, decision.ShouldEnter)
	assert.Equal(t, domain.DirectionShort, decision.Direction)
	assert.Equal(t, 95, decision.Score)
}

func TestEvaluate_TrendOverridesRSIBias(t *testing.T) {
	// Oversold RSI suggests Long, but the trend signal runs last and
	// wins the direction.
	e := usecase.NewEntryEvaluator()
	ind := &domain.IndicatorSet{
		RSI:        25,
		EMA9:       112400,
		EMA21:      112500,
		MACD:       0.15,
		MACDSignal: 0.10,
		Volatility: 100,
	}

	decision := e.Evaluate(snapshotAt(11, 0), ind)
	assert.Equal(t, domain.DirectionShort, decision.Direction)
	assert.Equal(t, 90, decision.Score) // 15 + 15 + 15 + 20 + 25
}

func TestEvaluate_WeakSignalsRejected(t *testing.T) {
	e := usecase.NewEntryEvaluator()
	// RSI 85 is overbought (outside the neutral band) and volatility
	// 500 is outside the [20,200] band, so neither contributes.
	ind := &domain.IndicatorSet{
		RSI:        85,
		EMA9:       112400,
		EMA21:      112500,
		MACD:       0.05,
		MACDSignal: 0.10,
		Volatility: 500,
	}

	decision := e.Evaluate(snapshotAt(11, 0), ind)
	assert.False(t, decision.ShouldEnter)
	assert.Equal(t, 50, decision.Score) // 10 + 15 + 25
	assert.Less(t, decision.Score, 60)
}

func TestEvaluate_NeutralRSIPrecedence(t *testing.T) {
	// RSI 32 sits in both the neutral zone and below the oversold
	// threshold; the neutral zone is checked first.
	e := usecase.NewEntryEvaluator()
	ind := &domain.IndicatorSet{
		RSI:        32,
		EMA9:       112500,
		EMA21:      112400,
		MACD:       0.05,
		MACDSignal: 0.10,
		Volatility: 500,
	}

	decision := e.Evaluate(snapshotAt(11, 0), ind)
	assert.Equal(t, 65, decision.Score) // 20 neutral + 20 trend + 25 session
}

func TestEvaluate_SessionWindow(t *testing.T) {
	e := usecase.NewEntryEvaluator()
	ind := &domain.IndicatorSet{
		RSI:        55,
		EMA9:       112500,
		EMA21:      112400,
		MACD:       0.15,
		MACDSignal: 0.10,
		Volatility: 100,
	}

	tests := []struct {
		name      string
		hour, min int
		wantScore int
	}{
		{"before open", 9, 29, 75},
		{"at open", 9, 30, 100},
		{"mid session", 14, 0, 100},
		{"last minute", 17, 25, 100},
		{"after close", 17, 26, 75},
		{"evening", 20, 0, 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := e.Evaluate(snapshotAt(tt.hour, tt.min), ind)
			assert.Equal(t, tt.wantScore, decision.Score)
		})
	}
}
