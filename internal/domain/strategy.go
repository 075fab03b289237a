package domain

import (
	"fmt"
	"time"
)

// StrategyConfig holds the immutable per-bot parameters. One config
// belongs to one user; the bot reloads it every monitoring tick.
type StrategyConfig struct {
	ID                 string
	UserID             string
	Symbol             string
	Quantity           int
	DailyProfitTarget  float64 // currency
	StopLossPoints     float64 // points
	MaxTradesPerDay    int
	TrailingStop       bool
	TrailingStopPoints float64 // points
	DynamicHours       bool
	CreatedAt          time.Time
}

func (c *StrategyConfig) Validate() error {
	if c.Quantity < 1 {
		return fmt.Errorf("contract quantity must be >= 1, got %d", c.Quantity)
	}
	if c.MaxTradesPerDay < 1 {
		return fmt.Errorf("max trades per day must be >= 1, got %d", c.MaxTradesPerDay)
	}
	return nil
}

// BotStatus is a read-only snapshot of a running bot.
type BotStatus struct {
	UserID       string
	Active       bool
	ConfigID     string
	Symbol       string
	TradesToday  int
	ProfitToday  float64
	OpenPosition *Position
	LastCheck    time.Time
}
