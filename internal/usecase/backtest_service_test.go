package usecase_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/futures_day_bot/internal/domain"
	"github.com/vitos/futures_day_bot/internal/usecase"
	"go.uber.org/zap"
)

func sessionSeries(prices []float64) []domain.MarketSnapshot {
	base := time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC)
	series := make([]domain.MarketSnapshot, len(prices))
	for i, p := range prices {
		series[i] = domain.MarketSnapshot{
			Symbol:    "WIN",
			Price:     p,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}
	}
	return series
}

// rampPrices rises 4 points per bar: enough volatility to score an
// entry but too slow to ever reach the take-profit.
func rampPrices(n int) []float64 {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = 112000 + 4*float64(i)
	}
	return prices
}

func TestBacktestRejectsShortSeries(t *testing.T) {
	b := usecase.NewBacktestService(zap.NewNop())
	_, err := b.Run(baseConfig(), sessionSeries(rampPrices(49)))
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestBacktestRejectsInvalidConfig(t *testing.T) {
	b := usecase.NewBacktestService(zap.NewNop())
	cfg := baseConfig()
	cfg.MaxTradesPerDay = 0
	_, err := b.Run(cfg, sessionSeries(rampPrices(80)))
	assert.Error(t, err)
}

func TestBacktestDiscardsPositionOpenAtSeriesEnd(t *testing.T) {
	// The slow ramp opens a long that never hits either level, so the
	// run ends with the position still open and nothing is aggregated.
	b := usecase.NewBacktestService(zap.NewNop())
	result, err := b.Run(baseConfig(), sessionSeries(rampPrices(80)))
	require.NoError(t, err)

	assert.Equal(t, 0, result.TotalTrades)
	assert.Empty(t, result.Positions)
	assert.Equal(t, 0.0, result.TotalReturn)
	assert.Equal(t, 0.0, result.WinRate)
}

func TestBacktestSettlesExitAtConfiguredLevel(t *testing.T) {
	// Ramp until bar 21 (entry at 112084, take-profit 833 points up at
	// 112917), then jump above the level and stay flat.
	prices := rampPrices(22)
	for len(prices) < 60 {
		prices = append(prices, 113100)
	}

	b := usecase.NewBacktestService(zap.NewNop())
	result, err := b.Run(baseConfig(), sessionSeries(prices))
	require.NoError(t, err)

	require.Equal(t, 1, result.TotalTrades)
	assert.Equal(t, 1, result.WinningTrades)
	assert.Equal(t, 0, result.LosingTrades)
	assert.Equal(t, 100.0, result.WinRate)
	assert.Equal(t, 0.0, result.MaxDrawdown)

	pos := result.Positions[0]
	assert.Equal(t, domain.DirectionLong, pos.Direction)
	assert.Equal(t, 112084.0, pos.EntryPrice)
	assert.Equal(t, 112917.0, pos.ExitPrice) // the level, not the 113100 close
	assert.Equal(t, domain.ExitTakeProfit, pos.ExitReason)
	assert.InDelta(t, 166.6, result.TotalReturn, 0.001)
	assert.InDelta(t, 166.6, result.AverageReturn, 0.001)
}

func TestBacktestAggregatesAreConsistent(t *testing.T) {
	// A choppy series: whatever trades come out, the aggregate
	// identities must hold.
	prices := make([]float64, 120)
	for i := range prices {
		prices[i] = 112000 + 4*float64(i)
		if i%7 == 0 {
			prices[i] -= 120
		}
	}

	b := usecase.NewBacktestService(zap.NewNop())
	result, err := b.Run(baseConfig(), sessionSeries(prices))
	require.NoError(t, err)

	assert.Equal(t, result.TotalTrades, result.WinningTrades+result.LosingTrades)
	assert.GreaterOrEqual(t, result.WinRate, 0.0)
	assert.LessOrEqual(t, result.WinRate, 100.0)
	assert.GreaterOrEqual(t, result.MaxDrawdown, 0.0)
	assert.Len(t, result.Positions, result.TotalTrades)
}

func TestBacktestMaxDrawdown(t *testing.T) {
	// Drawdown is computed over the cumulative return of the trade
	// sequence, peak to trough.
	b := usecase.NewBacktestService(zap.NewNop())
	result := &usecase.BacktestResult{
		Positions: []*domain.Position{
			closedLong(112000, 112833), // +166.6
			closedLong(112000, 111850), // -30
			closedLong(112000, 111850), // -30
			closedLong(112000, 112833), // +166.6
		},
	}
	b.Aggregate(result)

	assert.Equal(t, 4, result.TotalTrades)
	assert.Equal(t, 2, result.WinningTrades)
	assert.Equal(t, 2, result.LosingTrades)
	assert.Equal(t, 50.0, result.WinRate)
	assert.InDelta(t, 60.0, result.MaxDrawdown, 0.001)
}

func closedLong(entry, exit float64) *domain.Position {
	return &domain.Position{
		Direction:  domain.DirectionLong,
		EntryPrice: entry,
		ExitPrice:  exit,
		Quantity:   1,
		PointValue: 0.20,
		Status:     domain.PositionClosed,
	}
}
