package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vitos/futures_day_bot/internal/domain"
	"github.com/vitos/futures_day_bot/pkg/id"
	"go.uber.org/zap"
)

// errStopBot signals the monitoring loop to shut the bot down from
// within a tick (config gone, daily goal reached).
var errStopBot = errors.New("stop bot")

// botRuntime is the live state of one user's bot. Exactly one exists
// per user while the bot is active.
type botRuntime struct {
	userID    string
	config    *domain.StrategyConfig
	position  *domain.Position
	trades    int
	profit    float64
	lastPrice float64
	lastCheck time.Time

	cancel context.CancelFunc
	done   chan struct{}

	mu sync.Mutex
}

// BotService orchestrates the per-user bot lifecycle: start/stop,
// periodic monitoring, daily limits and position management.
type BotService struct {
	store    domain.PersistenceStore
	market   domain.MarketDataProvider
	executor domain.OrderExecutor
	events   domain.EventSink

	evaluator *EntryEvaluator
	risk      *RiskManager
	logger    *zap.Logger
	interval  time.Duration

	mu   sync.Mutex
	bots map[string]*botRuntime
}

func NewBotService(
	store domain.PersistenceStore,
	market domain.MarketDataProvider,
	executor domain.OrderExecutor,
	events domain.EventSink,
	logger *zap.Logger,
	interval time.Duration,
) *BotService {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &BotService{
		store:     store,
		market:    market,
		executor:  executor,
		events:    events,
		evaluator: NewEntryEvaluator(),
		risk:      NewRiskManager(),
		logger:    logger,
		interval:  interval,
		bots:      make(map[string]*botRuntime),
	}
}

// Start activates a bot for the config's user and begins monitoring.
// Fails with ErrAlreadyActive if the user already has a running bot.
func (s *BotService) Start(ctx context.Context, cfg *domain.StrategyConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid strategy config: %w", err)
	}

	s.mu.Lock()
	if _, exists := s.bots[cfg.UserID]; exists {
		s.mu.Unlock()
		return domain.ErrAlreadyActive
	}

	runCtx, cancel := context.WithCancel(context.Background())
	rt := &botRuntime{
		userID: cfg.UserID,
		config: cfg,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.bots[cfg.UserID] = rt
	s.mu.Unlock()

	if err := s.store.SaveConfig(ctx, cfg); err != nil {
		s.removeRuntime(cfg.UserID, rt)
		cancel()
		close(rt.done)
		return fmt.Errorf("failed to save config: %w", err)
	}
	if err := s.store.SetActive(ctx, cfg.UserID, true); err != nil {
		s.removeRuntime(cfg.UserID, rt)
		cancel()
		close(rt.done)
		return fmt.Errorf("failed to persist active state: %w", err)
	}

	s.audit(ctx, cfg.UserID, domain.AuditInfo, fmt.Sprintf("bot started: symbol=%s qty=%d", cfg.Symbol, cfg.Quantity))
	s.publishStatus(cfg.UserID, true, "started")

	go s.monitor(runCtx, rt)

	s.logger.Info("bot started",
		zap.String("user", cfg.UserID),
		zap.String("symbol", cfg.Symbol))
	return nil
}

// Stop cancels monitoring, force-closes any open position and removes
// the runtime state. Fails with ErrNotActive if no bot is running.
func (s *BotService) Stop(ctx context.Context, userID string) error {
	return s.stop(ctx, userID, domain.ExitBotStopped)
}

// EmergencyStop is the best-effort variant of Stop: it is a no-op when
// no bot is running and always leaves a warning-level audit entry.
func (s *BotService) EmergencyStop(ctx context.Context, userID string) error {
	err := s.stop(ctx, userID, domain.ExitEmergencyStop)
	if errors.Is(err, domain.ErrNotActive) {
		err = nil
	}
	s.audit(ctx, userID, domain.AuditWarn, "emergency stop requested")
	s.logger.Warn("emergency stop", zap.String("user", userID))
	return err
}

func (s *BotService) stop(ctx context.Context, userID string, reason domain.ExitReason) error {
	s.mu.Lock()
	rt, ok := s.bots[userID]
	if !ok {
		s.mu.Unlock()
		return domain.ErrNotActive
	}
	delete(s.bots, userID)
	s.mu.Unlock()

	// No tick starts after cancel; wait for an in-flight one to finish.
	rt.cancel()
	<-rt.done

	rt.mu.Lock()
	pos := rt.position
	price := rt.lastPrice
	rt.position = nil
	rt.mu.Unlock()

	if pos != nil {
		if err := s.closePosition(ctx, userID, pos, reason, price); err != nil {
			s.logger.Error("failed to close position on stop",
				zap.String("user", userID), zap.Error(err))
		}
	}

	if err := s.store.SetActive(ctx, userID, false); err != nil {
		s.logger.Error("failed to persist inactive state",
			zap.String("user", userID), zap.Error(err))
	}

	s.audit(ctx, userID, domain.AuditInfo, fmt.Sprintf("bot stopped: reason=%s", reason))
	s.publishStatus(userID, false, string(reason))
	s.logger.Info("bot stopped", zap.String("user", userID), zap.String("reason", string(reason)))
	return nil
}

// Status returns a snapshot of the user's running bot.
func (s *BotService) Status(userID string) (*domain.BotStatus, error) {
	s.mu.Lock()
	rt, ok := s.bots[userID]
	s.mu.Unlock()
	if !ok {
		return nil, domain.ErrNotActive
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()
	status := &domain.BotStatus{
		UserID:      userID,
		Active:      true,
		ConfigID:    rt.config.ID,
		Symbol:      rt.config.Symbol,
		TradesToday: rt.trades,
		ProfitToday: rt.profit,
		LastCheck:   rt.lastCheck,
	}
	if rt.position != nil {
		posCopy := *rt.position
		status.OpenPosition = &posCopy
	}
	return status, nil
}

// monitor runs the periodic tick loop for one user. Ticks are strictly
// sequential: the loop is a single goroutine, so a slow tick delays the
// next one instead of overlapping it.
func (s *BotService) monitor(ctx context.Context, rt *botRuntime) {
	defer close(rt.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// First evaluation runs right away; later ones follow the ticker.
	if err := s.safeTick(ctx, rt); err != nil {
		if errors.Is(err, errStopBot) {
			go s.selfStop(rt)
			return
		}
		s.logger.Error("monitoring tick failed",
			zap.String("user", rt.userID), zap.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.safeTick(ctx, rt); err != nil {
				if errors.Is(err, errStopBot) {
					go s.selfStop(rt)
					return
				}
				s.logger.Error("monitoring tick failed",
					zap.String("user", rt.userID), zap.Error(err))
			}
		}
	}
}

// selfStop finishes a shutdown initiated from inside a tick. It runs
// outside the monitor goroutine so Stop's done-wait cannot deadlock.
func (s *BotService) selfStop(rt *botRuntime) {
	ctx := context.Background()

	s.mu.Lock()
	if current, ok := s.bots[rt.userID]; !ok || current != rt {
		s.mu.Unlock()
		return
	}
	delete(s.bots, rt.userID)
	s.mu.Unlock()

	rt.cancel()

	rt.mu.Lock()
	pos := rt.position
	price := rt.lastPrice
	rt.position = nil
	rt.mu.Unlock()

	if pos != nil {
		if err := s.closePosition(ctx, rt.userID, pos, domain.ExitBotStopped, price); err != nil {
			s.logger.Error("failed to close position on self-stop",
				zap.String("user", rt.userID), zap.Error(err))
		}
	}

	if err := s.store.SetActive(ctx, rt.userID, false); err != nil {
		s.logger.Error("failed to persist inactive state",
			zap.String("user", rt.userID), zap.Error(err))
	}
	s.publishStatus(rt.userID, false, "stopped")
}

// safeTick catches panics at the tick boundary so one user's failure
// never takes down the scheduler or other users' bots.
func (s *BotService) safeTick(ctx context.Context, rt *botRuntime) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tick panicked: %v", r)
		}
	}()
	return s.tick(ctx, rt)
}

func (s *BotService) tick(ctx context.Context, rt *botRuntime) error {
	rt.mu.Lock()
	rt.lastCheck = time.Now()
	rt.mu.Unlock()

	// Reload config; a missing config stops the bot.
	cfg, err := s.store.GetConfig(ctx, rt.userID)
	if err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}
	if cfg == nil {
		s.audit(ctx, rt.userID, domain.AuditWarn, "config missing, stopping bot")
		return errStopBot
	}
	rt.mu.Lock()
	rt.config = cfg
	rt.mu.Unlock()

	snapshot, err := s.market.Latest(ctx, cfg.Symbol)
	if err != nil || snapshot == nil {
		s.audit(ctx, rt.userID, domain.AuditWarn, fmt.Sprintf("market data unavailable for %s", cfg.Symbol))
		return nil
	}

	// Refresh open position and today's totals from the store; other
	// processes may have closed trades since the last tick.
	pos, err := s.store.GetOpenTrade(ctx, rt.userID)
	if err != nil {
		return fmt.Errorf("failed to load open trade: %w", err)
	}
	stats, err := s.store.GetDailyStats(ctx, rt.userID, snapshot.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to load daily stats: %w", err)
	}

	rt.mu.Lock()
	rt.position = pos
	rt.trades = stats.Trades
	rt.profit = stats.Profit
	rt.lastPrice = snapshot.Price
	rt.mu.Unlock()

	// Daily goal reached: normal stop, nothing further is closed here;
	// the shutdown path handles any open position.
	if stats.Profit >= cfg.DailyProfitTarget {
		s.audit(ctx, rt.userID, domain.AuditInfo,
			fmt.Sprintf("daily profit target reached: %.2f", stats.Profit))
		return errStopBot
	}

	if pos != nil {
		return s.managePosition(ctx, rt, cfg, pos, snapshot.Price)
	}

	// Trade cap only suppresses new entries; monitoring continues.
	if stats.Trades >= cfg.MaxTradesPerDay {
		return nil
	}

	return s.evaluateEntry(ctx, rt, cfg, snapshot)
}

func (s *BotService) managePosition(ctx context.Context, rt *botRuntime, cfg *domain.StrategyConfig, pos *domain.Position, price float64) error {
	if exit := s.risk.CheckExit(pos, price); exit != nil {
		if err := s.closePosition(ctx, rt.userID, pos, exit.Reason, exit.Price); err != nil {
			return fmt.Errorf("failed to close position: %w", err)
		}
		rt.mu.Lock()
		rt.position = nil
		rt.mu.Unlock()
		return nil
	}

	if newStop, updated := s.risk.TrailStop(cfg, pos, price); updated {
		if err := s.store.UpdateStopLoss(ctx, pos.ID, newStop); err != nil {
			return fmt.Errorf("failed to persist trailing stop: %w", err)
		}
		pos.StopLoss = newStop
		s.events.Publish(domain.Event{
			Type:   domain.EventTradeUpdated,
			UserID: rt.userID,
			Payload: map[string]any{
				"position_id": pos.ID,
				"stop_loss":   newStop,
			},
			At: time.Now(),
		})
		s.logger.Debug("trailing stop updated",
			zap.String("user", rt.userID), zap.Float64("stop", newStop))
	}
	return nil
}

func (s *BotService) evaluateEntry(ctx context.Context, rt *botRuntime, cfg *domain.StrategyConfig, snapshot *domain.MarketSnapshot) error {
	ind, err := s.market.Indicators(ctx, cfg.Symbol, "5m")
	if err != nil || ind == nil {
		s.audit(ctx, rt.userID, domain.AuditWarn, fmt.Sprintf("indicators unavailable for %s", cfg.Symbol))
		return nil
	}

	decision := s.evaluator.Evaluate(snapshot, ind)
	if !decision.ShouldEnter {
		return nil
	}

	contract, known := domain.LookupContract(cfg.Symbol)
	if !known {
		s.logger.Warn("unknown contract symbol, using default spec",
			zap.String("symbol", cfg.Symbol))
	}

	report, err := s.executor.Execute(ctx, cfg.Symbol, decision.Direction, cfg.Quantity, snapshot.Price)
	if err != nil || report == nil || !report.Success {
		reason := "executor error"
		if err != nil {
			reason = err.Error()
		} else if report != nil {
			reason = report.Reason
		}
		s.audit(ctx, rt.userID, domain.AuditError, fmt.Sprintf("order execution failed: %s", reason))
		s.logger.Error("order execution failed",
			zap.String("user", rt.userID), zap.String("symbol", cfg.Symbol))
		return nil
	}

	pos, err := s.risk.OpenPosition(cfg, contract, decision.Direction, snapshot.Price, snapshot.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to build position: %w", err)
	}
	pos.ID = report.OrderID
	if pos.ID == "" {
		pos.ID = id.New()
	}

	if err := s.store.OpenTrade(ctx, pos); err != nil {
		return fmt.Errorf("failed to record trade: %w", err)
	}

	rt.mu.Lock()
	rt.position = pos
	rt.trades++
	rt.mu.Unlock()

	s.audit(ctx, rt.userID, domain.AuditInfo,
		fmt.Sprintf("entered %s %s @ %.2f score=%d", decision.Direction, cfg.Symbol, snapshot.Price, decision.Score))
	s.events.Publish(domain.Event{
		Type:   domain.EventTradeOpened,
		UserID: rt.userID,
		Payload: map[string]any{
			"position_id": pos.ID,
			"direction":   string(pos.Direction),
			"entry":       pos.EntryPrice,
			"take_profit": pos.TakeProfit,
			"stop_loss":   pos.StopLoss,
		},
		At: time.Now(),
	})
	return nil
}

func (s *BotService) closePosition(ctx context.Context, userID string, pos *domain.Position, reason domain.ExitReason, exitPrice float64) error {
	pos.Status = domain.PositionClosed
	pos.ExitPrice = exitPrice
	pos.ExitReason = reason
	pos.ClosedAt = time.Now()
	realized := pos.Realized()

	if err := s.store.CloseTrade(ctx, pos.ID, exitPrice, reason, realized, pos.ClosedAt); err != nil {
		return err
	}

	s.audit(ctx, userID, domain.AuditInfo,
		fmt.Sprintf("closed %s @ %.2f reason=%s result=%.2f", pos.Symbol, exitPrice, reason, realized))
	s.events.Publish(domain.Event{
		Type:   domain.EventTradeClosed,
		UserID: userID,
		Payload: map[string]any{
			"position_id": pos.ID,
			"exit_price":  exitPrice,
			"reason":      string(reason),
			"realized":    realized,
		},
		At: time.Now(),
	})
	return nil
}

func (s *BotService) removeRuntime(userID string, rt *botRuntime) {
	s.mu.Lock()
	if current, ok := s.bots[userID]; ok && current == rt {
		delete(s.bots, userID)
	}
	s.mu.Unlock()
}

func (s *BotService) publishStatus(userID string, active bool, reason string) {
	s.events.Publish(domain.Event{
		Type:   domain.EventStatusChanged,
		UserID: userID,
		Payload: map[string]any{
			"active": active,
			"reason": reason,
		},
		At: time.Now(),
	})
}

func (s *BotService) audit(ctx context.Context, userID string, level domain.AuditLevel, msg string) {
	entry := &domain.AuditEntry{
		ID:        id.New(),
		UserID:    userID,
		Level:     level,
		Message:   msg,
		CreatedAt: time.Now(),
	}
	if err := s.store.AppendAudit(ctx, entry); err != nil {
		s.logger.Error("failed to append audit entry",
			zap.String("user", userID), zap.Error(err))
	}
}
