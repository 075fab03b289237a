package domain

import "time"

type EventType string

const (
	EventStatusChanged EventType = "status_changed"
	EventTradeOpened   EventType = "trade_opened"
	EventTradeUpdated  EventType = "trade_updated"
	EventTradeClosed   EventType = "trade_closed"
)

// Event is a fire-and-forget notification pushed to external observers.
type Event struct {
	Type    EventType      `json:"type"`
	UserID  string         `json:"user_id"`
	Payload map[string]any `json:"payload,omitempty"`
	At      time.Time      `json:"at"`
}

type AuditLevel string

const (
	AuditInfo  AuditLevel = "INFO"
	AuditWarn  AuditLevel = "WARN"
	AuditError AuditLevel = "ERROR"
)

// AuditEntry is an append-only audit log record.
type AuditEntry struct {
	ID        string
	UserID    string
	Level     AuditLevel
	Message   string
	CreatedAt time.Time
}
