package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vitos/futures_day_bot/internal/domain"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS strategy_configs (
			user_id TEXT PRIMARY KEY,
			id TEXT NOT NULL,
			symbol TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			daily_profit_target REAL NOT NULL,
			stop_loss_points REAL NOT NULL,
			max_trades_per_day INTEGER NOT NULL,
			trailing_stop BOOLEAN NOT NULL DEFAULT 0,
			trailing_stop_points REAL NOT NULL DEFAULT 0,
			dynamic_hours BOOLEAN NOT NULL DEFAULT 0,
			active BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS trades (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			symbol TEXT NOT NULL,
			direction TEXT NOT NULL,
			entry_price REAL NOT NULL,
			take_profit REAL NOT NULL,
			stop_loss REAL NOT NULL,
			quantity INTEGER NOT NULL,
			point_value REAL NOT NULL,
			status TEXT NOT NULL,
			exit_price REAL,
			exit_reason TEXT,
			realized REAL,
			opened_at DATETIME NOT NULL,
			closed_at DATETIME
		);`,
		`CREATE INDEX IF NOT EXISTS idx_trades_user_status ON trades(user_id, status);`,
		`CREATE INDEX IF NOT EXISTS idx_trades_user_closed ON trades(user_id, closed_at);`,
		`CREATE TABLE IF NOT EXISTS audit_log (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			level TEXT NOT NULL,
			message TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_audit_user ON audit_log(user_id, created_at);`,
		`CREATE TABLE IF NOT EXISTS candles (
			symbol TEXT NOT NULL,
			ts DATETIME NOT NULL,
			close REAL NOT NULL,
			volume REAL NOT NULL DEFAULT 0,
			PRIMARY KEY (symbol, ts)
		);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to exec query %s: %w", q, err)
		}
	}

	return nil
}

// PersistenceStore implementation

func (s *SQLiteStore) SaveConfig(ctx context.Context, cfg *domain.StrategyConfig) error {
	query := `INSERT INTO strategy_configs (user_id, id, symbol, quantity, daily_profit_target, stop_loss_points, max_trades_per_day, trailing_stop, trailing_stop_points, dynamic_hours, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			  ON CONFLICT(user_id) DO UPDATE SET
			  id=excluded.id,
			  symbol=excluded.symbol,
			  quantity=excluded.quantity,
			  daily_profit_target=excluded.daily_profit_target,
			  stop_loss_points=excluded.stop_loss_points,
			  max_trades_per_day=excluded.max_trades_per_day,
			  trailing_stop=excluded.trailing_stop,
			  trailing_stop_points=excluded.trailing_stop_points,
			  dynamic_hours=excluded.dynamic_hours`
	_, err := s.db.ExecContext(ctx, query,
		cfg.UserID, cfg.ID, cfg.Symbol, cfg.Quantity, cfg.DailyProfitTarget,
		cfg.StopLossPoints, cfg.MaxTradesPerDay, cfg.TrailingStop, cfg.TrailingStopPoints,
		cfg.DynamicHours, cfg.CreatedAt)
	return err
}

func (s *SQLiteStore) GetConfig(ctx context.Context, userID string) (*domain.StrategyConfig, error) {
	query := `SELECT user_id, id, symbol, quantity, daily_profit_target, stop_loss_points, max_trades_per_day, trailing_stop, trailing_stop_points, dynamic_hours, created_at
			  FROM strategy_configs WHERE user_id = ?`
	row := s.db.QueryRowContext(ctx, query, userID)

	var c domain.StrategyConfig
	err := row.Scan(&c.UserID, &c.ID, &c.Symbol, &c.Quantity, &c.DailyProfitTarget,
		&c.StopLossPoints, &c.MaxTradesPerDay, &c.TrailingStop, &c.TrailingStopPoints,
		&c.DynamicHours, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *SQLiteStore) SetActive(ctx context.Context, userID string, active bool) error {
	_, err := s.db.ExecContext(ctx, `UPDATE strategy_configs SET active = ? WHERE user_id = ?`, active, userID)
	return err
}

func (s *SQLiteStore) OpenTrade(ctx context.Context, pos *domain.Position) error {
	query := `INSERT INTO trades (id, user_id, symbol, direction, entry_price, take_profit, stop_loss, quantity, point_value, status, opened_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		pos.ID, pos.UserID, pos.Symbol, pos.Direction, pos.EntryPrice,
		pos.TakeProfit, pos.StopLoss, pos.Quantity, pos.PointValue,
		pos.Status, pos.OpenedAt)
	return err
}

func (s *SQLiteStore) CloseTrade(ctx context.Context, id string, exitPrice float64, reason domain.ExitReason, realized float64, closedAt time.Time) error {
	query := `UPDATE trades SET status = ?, exit_price = ?, exit_reason = ?, realized = ?, closed_at = ? WHERE id = ?`
	res, err := s.db.ExecContext(ctx, query, domain.PositionClosed, exitPrice, reason, realized, closedAt, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("trade %s not found", id)
	}
	return nil
}

func (s *SQLiteStore) UpdateStopLoss(ctx context.Context, id string, stopLoss float64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE trades SET stop_loss = ? WHERE id = ?`, stopLoss, id)
	return err
}

func (s *SQLiteStore) GetOpenTrade(ctx context.Context, userID string) (*domain.Position, error) {
	query := `SELECT id, user_id, symbol, direction, entry_price, take_profit, stop_loss, quantity, point_value, status, opened_at
			  FROM trades WHERE user_id = ? AND status = ? ORDER BY opened_at DESC LIMIT 1`
	row := s.db.QueryRowContext(ctx, query, userID, domain.PositionOpen)

	var p domain.Position
	err := row.Scan(&p.ID, &p.UserID, &p.Symbol, &p.Direction, &p.EntryPrice,
		&p.TakeProfit, &p.StopLoss, &p.Quantity, &p.PointValue, &p.Status, &p.OpenedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *SQLiteStore) GetDailyStats(ctx context.Context, userID string, day time.Time) (*domain.DailyStats, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	query := `SELECT COUNT(*), COALESCE(SUM(realized), 0) FROM trades
			  WHERE user_id = ? AND status = ? AND closed_at >= ? AND closed_at < ?`
	row := s.db.QueryRowContext(ctx, query, userID, domain.PositionClosed, start, end)

	var stats domain.DailyStats
	if err := row.Scan(&stats.Trades, &stats.Profit); err != nil {
		return nil, err
	}

	// Open trades count toward the daily cap as well.
	row = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM trades WHERE user_id = ? AND status = ? AND opened_at >= ? AND opened_at < ?`,
		userID, domain.PositionOpen, start, end)
	var open int
	if err := row.Scan(&open); err != nil {
		return nil, err
	}
	stats.Trades += open

	return &stats, nil
}

func (s *SQLiteStore) AppendAudit(ctx context.Context, entry *domain.AuditEntry) error {
	query := `INSERT INTO audit_log (id, user_id, level, message, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		entry.ID, entry.UserID, entry.Level, entry.Message, entry.CreatedAt)
	return err
}

// Candle history

func (s *SQLiteStore) SaveCandle(ctx context.Context, symbol string, ts time.Time, close, volume float64) error {
	query := `INSERT INTO candles (symbol, ts, close, volume) VALUES (?, ?, ?, ?)
			  ON CONFLICT(symbol, ts) DO UPDATE SET close=excluded.close, volume=excluded.volume`
	_, err := s.db.ExecContext(ctx, query, symbol, ts, close, volume)
	return err
}

func (s *SQLiteStore) ListCandles(ctx context.Context, symbol string, limit int) ([]domain.MarketSnapshot, error) {
	query := `SELECT ts, close, volume FROM (
				SELECT ts, close, volume FROM candles WHERE symbol = ? ORDER BY ts DESC LIMIT ?
			  ) ORDER BY ts ASC`
	rows, err := s.db.QueryContext(ctx, query, symbol, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.MarketSnapshot
	for rows.Next() {
		snap := domain.MarketSnapshot{Symbol: symbol}
		if err := rows.Scan(&snap.Timestamp, &snap.Price, &snap.Volume); err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}
