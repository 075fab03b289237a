package usecase

import (
	"math"
	"time"

	"github.com/vitos/futures_day_bot/internal/domain"
)

// ExitSignal describes a triggered exit. Price is the configured
// take-profit or stop-loss level, not the live tick price, so realized
// results are deterministic.
type ExitSignal struct {
	Reason domain.ExitReason
	Price  float64
}

type RiskManager struct{}

func NewRiskManager() *RiskManager {
	return &RiskManager{}
}

// TargetPoints returns the per-trade point distance needed to reach a
// pro-rata share of the daily profit target. Never below 1.
func (r *RiskManager) TargetPoints(cfg *domain.StrategyConfig, contract domain.Contract) float64 {
	perTrade := cfg.DailyProfitTarget / float64(cfg.MaxTradesPerDay)
	points := math.Round(perTrade / (contract.PointValue * float64(cfg.Quantity)))
	if points < 1 {
		return 1
	}
	return points
}

// OpenPosition builds a position with take-profit and stop-loss set
// atomically from the entry price.
func (r *RiskManager) OpenPosition(cfg *domain.StrategyConfig, contract domain.Contract, direction domain.Direction, entryPrice float64, openedAt time.Time) (*domain.Position, error) {
	target := r.TargetPoints(cfg, contract)

	pos := &domain.Position{
		UserID:     cfg.UserID,
		Symbol:     cfg.Symbol,
		Direction:  direction,
		EntryPrice: entryPrice,
		Quantity:   cfg.Quantity,
		PointValue: contract.PointValue,
		Status:     domain.PositionOpen,
		OpenedAt:   openedAt,
	}

	if direction == domain.DirectionLong {
		pos.TakeProfit = entryPrice + target
		pos.StopLoss = entryPrice - cfg.StopLossPoints
	} else {
		pos.TakeProfit = entryPrice - target
		pos.StopLoss = entryPrice + cfg.StopLossPoints
	}

	if err := pos.Validate(); err != nil {
		return nil, err
	}
	return pos, nil
}

// CheckExit reports whether the current price triggers an exit. The
// returned signal settles at the configured level price.
func (r *RiskManager) CheckExit(pos *domain.Position, price float64) *ExitSignal {
	if pos.Direction == domain.DirectionLong {
		if price >= pos.TakeProfit {
			return &ExitSignal{Reason: domain.ExitTakeProfit, Price: pos.TakeProfit}
		}
		if price <= pos.StopLoss {
			return &ExitSignal{Reason: domain.ExitStopLoss, Price: pos.StopLoss}
		}
		return nil
	}

	if price <= pos.TakeProfit {
		return &ExitSignal{Reason: domain.ExitTakeProfit, Price: pos.TakeProfit}
	}
	if price >= pos.StopLoss {
		return &ExitSignal{Reason: domain.ExitStopLoss, Price: pos.StopLoss}
	}
	return nil
}

// TrailStop computes a ratchet-only trailing stop update. The stop may
// only move in the direction that reduces risk; otherwise the current
// stop is returned with updated=false.
func (r *RiskManager) TrailStop(cfg *domain.StrategyConfig, pos *domain.Position, price float64) (newStop float64, updated bool) {
	if !cfg.TrailingStop {
		return pos.StopLoss, false
	}

	if pos.Direction == domain.DirectionLong {
		candidate := price - cfg.TrailingStopPoints
		if candidate > pos.StopLoss {
			return candidate, true
		}
		return pos.StopLoss, false
	}

	candidate := price + cfg.TrailingStopPoints
	if candidate < pos.StopLoss {
		return candidate, true
	}
	return pos.StopLoss, false
}
