package domain

import (
	"context"
	"time"
)

// MarketDataProvider supplies quotes, indicators and candle history.
// Implementations return ErrDataUnavailable (possibly wrapped) when a
// symbol has no data for the requested query.
type MarketDataProvider interface {
	Latest(ctx context.Context, symbol string) (*MarketSnapshot, error)
	Indicators(ctx context.Context, symbol, timeframe string) (*IndicatorSet, error)
	History(ctx context.Context, symbol, period, interval string) ([]MarketSnapshot, error)
}

// ExecutionReport is the outcome of one order submission.
type ExecutionReport struct {
	Success bool
	OrderID string
	Price   float64
	Reason  string
}

// OrderExecutor submits orders to the broker.
type OrderExecutor interface {
	Execute(ctx context.Context, symbol string, direction Direction, quantity int, price float64) (*ExecutionReport, error)
}

// DailyStats aggregates a user's closed trades for one day.
type DailyStats struct {
	Trades int
	Profit float64
}

// PersistenceStore defines storage for configs, trades and audit logs.
type PersistenceStore interface {
	SaveConfig(ctx context.Context, cfg *StrategyConfig) error
	GetConfig(ctx context.Context, userID string) (*StrategyConfig, error)
	SetActive(ctx context.Context, userID string, active bool) error

	OpenTrade(ctx context.Context, pos *Position) error
	CloseTrade(ctx context.Context, id string, exitPrice float64, reason ExitReason, realized float64, closedAt time.Time) error
	UpdateStopLoss(ctx context.Context, id string, stopLoss float64) error
	GetOpenTrade(ctx context.Context, userID string) (*Position, error)
	GetDailyStats(ctx context.Context, userID string, day time.Time) (*DailyStats, error)

	AppendAudit(ctx context.Context, entry *AuditEntry) error
}

// EventSink receives status-change and trade notifications. Publish is
// fire-and-forget; at-least-once delivery is acceptable.
type EventSink interface {
	Publish(event Event)
}
