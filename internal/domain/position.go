package domain

import (
	"fmt"
	"time"
)

type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

type PositionStatus string

const (
	PositionOpen   PositionStatus = "OPEN"
	PositionClosed PositionStatus = "CLOSED"
)

type ExitReason string

const (
	ExitTakeProfit    ExitReason = "TAKE_PROFIT"
	ExitStopLoss      ExitReason = "STOP_LOSS"
	ExitBotStopped    ExitReason = "BOT_STOPPED"
	ExitEmergencyStop ExitReason = "EMERGENCY_STOP"
)

// Position represents a single open or closed trade. While open it is
// owned by the bot runtime; once closed it becomes an immutable record
// in the store.
type Position struct {
	ID         string
	UserID     string
	Symbol     string
	Direction  Direction
	EntryPrice float64
	TakeProfit float64
	StopLoss   float64
	Quantity   int
	PointValue float64
	Status     PositionStatus
	ExitPrice  float64
	ExitReason ExitReason
	OpenedAt   time.Time
	ClosedAt   time.Time
}

// Validate checks the entry invariants: take-profit and stop-loss are
// set together and must bracket the entry price per direction.
func (p *Position) Validate() error {
	switch p.Direction {
	case DirectionLong:
		if !(p.TakeProfit > p.EntryPrice && p.EntryPrice > p.StopLoss) {
			return fmt.Errorf("long position levels invalid: tp=%.2f entry=%.2f sl=%.2f", p.TakeProfit, p.EntryPrice, p.StopLoss)
		}
	case DirectionShort:
		if !(p.TakeProfit < p.EntryPrice && p.EntryPrice < p.StopLoss) {
			return fmt.Errorf("short position levels invalid: tp=%.2f entry=%.2f sl=%.2f", p.TakeProfit, p.EntryPrice, p.StopLoss)
		}
	default:
		return fmt.Errorf("invalid direction: %s", p.Direction)
	}
	if p.Quantity < 1 {
		return fmt.Errorf("quantity must be >= 1, got %d", p.Quantity)
	}
	return nil
}

// Realized returns the closed result in currency.
func (p *Position) Realized() float64 {
	if p.Direction == DirectionLong {
		return (p.ExitPrice - p.EntryPrice) * p.PointValue * float64(p.Quantity)
	}
	return (p.EntryPrice - p.ExitPrice) * p.PointValue * float64(p.Quantity)
}
