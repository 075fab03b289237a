package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vitos/futures_day_bot/internal/config"
	"github.com/vitos/futures_day_bot/internal/domain"
	"github.com/vitos/futures_day_bot/internal/infrastructure/broker"
	"github.com/vitos/futures_day_bot/internal/infrastructure/logger"
	"github.com/vitos/futures_day_bot/internal/infrastructure/marketdata"
	"github.com/vitos/futures_day_bot/internal/infrastructure/storage"
	"github.com/vitos/futures_day_bot/internal/usecase"
	"github.com/vitos/futures_day_bot/internal/web"
	"github.com/vitos/futures_day_bot/pkg/id"
	"go.uber.org/zap"
)

func main() {
	var configPath string

	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Run the intraday trading bot service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "config/config.yaml", "path to config file")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer log.Sync()

	store, err := storage.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		log.Fatal("failed to init sqlite", zap.Error(err))
	}
	defer store.Close()

	market := marketdata.NewReplayProvider(log)
	if cfg.Replay.CSV != "" {
		if _, err := market.LoadCSV(cfg.Replay.Symbol, cfg.Replay.CSV); err != nil {
			log.Fatal("failed to load candle data", zap.Error(err))
		}
	}

	executor := broker.NewPaperExecutor(log)
	hub := web.NewHub(log)

	interval := time.Duration(cfg.Bot.IntervalSeconds) * time.Second
	bots := usecase.NewBotService(store, market, executor, hub, log, interval)

	server := web.NewServer(cfg.Server.Port, hub, bots, log)
	go func() {
		if err := server.Start(); err != nil {
			log.Error("web server failed", zap.Error(err))
		}
	}()

	ctx := context.Background()

	if cfg.Strategy.UserID != "" {
		strategy := &domain.StrategyConfig{
			ID:                 id.New(),
			UserID:             cfg.Strategy.UserID,
			Symbol:             cfg.Strategy.Symbol,
			Quantity:           cfg.Strategy.Quantity,
			DailyProfitTarget:  cfg.Strategy.DailyProfitTarget,
			StopLossPoints:     cfg.Strategy.StopLossPoints,
			MaxTradesPerDay:    cfg.Strategy.MaxTradesPerDay,
			TrailingStop:       cfg.Strategy.TrailingStop,
			TrailingStopPoints: cfg.Strategy.TrailingStopPoints,
			DynamicHours:       cfg.Strategy.DynamicHours,
			CreatedAt:          time.Now(),
		}
		if err := bots.Start(ctx, strategy); err != nil {
			log.Fatal("failed to start bot", zap.Error(err))
		}
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	if cfg.Strategy.UserID != "" {
		if err := bots.Stop(ctx, cfg.Strategy.UserID); err != nil {
			log.Error("failed to stop bot", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
