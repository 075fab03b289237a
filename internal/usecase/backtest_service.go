package usecase

import (
	"fmt"

	"github.com/vitos/futures_day_bot/internal/domain"
	"github.com/vitos/futures_day_bot/pkg/id"
	"go.uber.org/zap"
)

// minBacktestBars is the shortest series a backtest accepts.
const minBacktestBars = 50

// warmupBars is the first index with a full 21-bar indicator window.
const warmupBars = 21

// BacktestResult aggregates the closed synthetic trades of one run.
type BacktestResult struct {
	Positions     []*domain.Position
	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	TotalReturn   float64
	AverageReturn float64
	WinRate       float64 // percent
	MaxDrawdown   float64
}

// BacktestService replays the entry evaluator and risk manager over a
// historical series without live order placement.
type BacktestService struct {
	evaluator *EntryEvaluator
	risk      *RiskManager
	logger    *zap.Logger
}

func NewBacktestService(logger *zap.Logger) *BacktestService {
	return &BacktestService{
		evaluator: NewEntryEvaluator(),
		risk:      NewRiskManager(),
		logger:    logger,
	}
}

// Run simulates the strategy over the series, which must be in
// chronological order and at least 50 bars long. At most one synthetic
// position is open at a time; exits always settle at the configured
// take-profit or stop-loss level. A position still open when the series
// ends is discarded and does not enter the aggregates.
func (b *BacktestService) Run(cfg *domain.StrategyConfig, series []domain.MarketSnapshot) (*BacktestResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid strategy config: %w", err)
	}
	if len(series) < minBacktestBars {
		return nil, fmt.Errorf("%w: need %d bars, got %d", domain.ErrInsufficientData, minBacktestBars, len(series))
	}

	contract, known := domain.LookupContract(cfg.Symbol)
	if !known {
		b.logger.Warn("unknown contract symbol, using default spec",
			zap.String("symbol", cfg.Symbol))
	}

	closes := make([]float64, len(series))
	for i, s := range series {
		closes[i] = s.Price
	}

	result := &BacktestResult{}
	var open *domain.Position

	for i := warmupBars; i < len(series); i++ {
		price := series[i].Price

		if open != nil {
			if exit := b.risk.CheckExit(open, price); exit != nil {
				open.Status = domain.PositionClosed
				open.ExitPrice = exit.Price
				open.ExitReason = exit.Reason
				open.ClosedAt = series[i].Timestamp
				result.Positions = append(result.Positions, open)
				open = nil
				continue
			}
			if newStop, updated := b.risk.TrailStop(cfg, open, price); updated {
				open.StopLoss = newStop
			}
			continue
		}

		ind := ComputeIndicators(closes[:i+1])
		decision := b.evaluator.Evaluate(&series[i], ind)
		if !decision.ShouldEnter {
			continue
		}

		pos, err := b.risk.OpenPosition(cfg, contract, decision.Direction, price, series[i].Timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to open synthetic position at bar %d: %w", i, err)
		}
		pos.ID = id.New()
		open = pos
	}

	if open != nil {
		b.logger.Debug("position still open at series end, discarded",
			zap.Float64("entry", open.EntryPrice))
	}

	b.Aggregate(result)
	return result, nil
}

// Aggregate fills the summary statistics. Max drawdown is the largest
// peak-to-trough decline of the running cumulative return across the
// trade sequence.
func (b *BacktestService) Aggregate(result *BacktestResult) {
	result.TotalTrades = len(result.Positions)

	var cumulative, peak, maxDD float64
	for _, pos := range result.Positions {
		ret := pos.Realized()
		result.TotalReturn += ret
		if ret > 0 {
			result.WinningTrades++
		} else {
			result.LosingTrades++
		}

		cumulative += ret
		if cumulative > peak {
			peak = cumulative
		}
		if dd := peak - cumulative; dd > maxDD {
			maxDD = dd
		}
	}
	result.MaxDrawdown = maxDD

	if result.TotalTrades > 0 {
		result.AverageReturn = result.TotalReturn / float64(result.TotalTrades)
		result.WinRate = float64(result.WinningTrades) / float64(result.TotalTrades) * 100
	}
}
