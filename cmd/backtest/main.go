package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/vitos/futures_day_bot/internal/domain"
	"github.com/vitos/futures_day_bot/internal/infrastructure/logger"
	"github.com/vitos/futures_day_bot/internal/infrastructure/marketdata"
	"github.com/vitos/futures_day_bot/internal/usecase"
)

type flags struct {
	CSV                string
	Symbol             string
	Quantity           int
	DailyProfitTarget  float64
	StopLossPoints     float64
	MaxTradesPerDay    int
	TrailingStop       bool
	TrailingStopPoints float64
	LogLevel           string
}

func main() {
	var f flags

	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Replay the trading strategy over historical candles",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(&f)
		},
	}

	cmd.Flags().StringVar(&f.CSV, "csv", "", "path to candle CSV (timestamp,close[,volume])")
	cmd.Flags().StringVar(&f.Symbol, "symbol", "WIN", "contract symbol")
	cmd.Flags().IntVar(&f.Quantity, "quantity", 1, "contracts per trade")
	cmd.Flags().Float64Var(&f.DailyProfitTarget, "daily-target", 500, "daily profit target in currency")
	cmd.Flags().Float64Var(&f.StopLossPoints, "stop-loss", 150, "stop-loss distance in points")
	cmd.Flags().IntVar(&f.MaxTradesPerDay, "max-trades", 3, "max trades per day")
	cmd.Flags().BoolVar(&f.TrailingStop, "trailing", false, "enable trailing stop")
	cmd.Flags().Float64Var(&f.TrailingStopPoints, "trailing-points", 100, "trailing stop distance in points")
	cmd.Flags().StringVar(&f.LogLevel, "log-level", "warn", "log level")
	cmd.MarkFlagRequired("csv")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(f *flags) error {
	log, err := logger.NewLogger(f.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	market := marketdata.NewReplayProvider(log)
	bars, err := market.LoadCSV(f.Symbol, f.CSV)
	if err != nil {
		return fmt.Errorf("failed to load candles: %w", err)
	}

	series, err := market.History(context.Background(), f.Symbol, fmt.Sprint(bars), "")
	if err != nil {
		return err
	}

	cfg := &domain.StrategyConfig{
		UserID:             "backtest",
		Symbol:             f.Symbol,
		Quantity:           f.Quantity,
		DailyProfitTarget:  f.DailyProfitTarget,
		StopLossPoints:     f.StopLossPoints,
		MaxTradesPerDay:    f.MaxTradesPerDay,
		TrailingStop:       f.TrailingStop,
		TrailingStopPoints: f.TrailingStopPoints,
		CreatedAt:          time.Now(),
	}

	start := time.Now()
	result, err := usecase.NewBacktestService(log).Run(cfg, series)
	if err != nil {
		return err
	}

	fmt.Printf("Backtest: %s over %d bars (%s)\n", f.Symbol, bars, time.Since(start).Round(time.Millisecond))
	fmt.Printf("  Trades:         %d (%d wins / %d losses)\n", result.TotalTrades, result.WinningTrades, result.LosingTrades)
	fmt.Printf("  Win rate:       %.1f%%\n", result.WinRate)
	fmt.Printf("  Total return:   %.2f\n", result.TotalReturn)
	fmt.Printf("  Average return: %.2f\n", result.AverageReturn)
	fmt.Printf("  Max drawdown:   %.2f\n", result.MaxDrawdown)
	return nil
}
