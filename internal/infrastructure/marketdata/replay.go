package marketdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/vitos/futures_day_bot/internal/domain"
	"github.com/vitos/futures_day_bot/internal/usecase"
	"go.uber.org/zap"
)

// ReplayProvider serves market data from pre-loaded candle series. It
// implements domain.MarketDataProvider for dry runs and backtests:
// each Latest call advances a per-symbol cursor through the series.
type ReplayProvider struct {
	logger *zap.Logger

	mu     sync.Mutex
	series map[string][]domain.MarketSnapshot
	cursor map[string]int
}

func NewReplayProvider(logger *zap.Logger) *ReplayProvider {
	return &ReplayProvider{
		logger: logger,
		series: make(map[string][]domain.MarketSnapshot),
		cursor: make(map[string]int),
	}
}

// Load registers a candle series for a symbol. The series must be in
// chronological order.
func (p *ReplayProvider) Load(symbol string, series []domain.MarketSnapshot) {
	p.mu.Lock()
	p.series[symbol] = series
	p.cursor[symbol] = 0
	p.mu.Unlock()
}

// LoadCSV reads rows of "timestamp,close[,volume]" where timestamp is
// RFC3339 or a unix epoch in seconds. A header row is skipped.
func (p *ReplayProvider) LoadCSV(symbol, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var series []domain.MarketSnapshot
	line := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to read %s: %w", path, err)
		}
		line++
		if len(record) < 2 {
			return 0, fmt.Errorf("%s line %d: need at least timestamp,close", path, line)
		}

		ts, err := parseTimestamp(record[0])
		if err != nil {
			if line == 1 {
				continue // header
			}
			return 0, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		close, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return 0, fmt.Errorf("%s line %d: bad close %q", path, line, record[1])
		}

		snap := domain.MarketSnapshot{Symbol: symbol, Price: close, Timestamp: ts}
		if len(record) > 2 && record[2] != "" {
			snap.Volume, _ = strconv.ParseFloat(record[2], 64)
		}
		series = append(series, snap)
	}

	p.Load(symbol, series)
	p.logger.Info("loaded candle series",
		zap.String("symbol", symbol), zap.Int("bars", len(series)))
	return len(series), nil
}

func parseTimestamp(s string) (time.Time, error) {
	if epoch, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(epoch, 0), nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad timestamp %q", s)
	}
	return ts, nil
}

// Latest returns the next bar of the symbol's series and advances the
// replay cursor. Returns ErrDataUnavailable once the series runs out.
func (p *ReplayProvider) Latest(ctx context.Context, symbol string) (*domain.MarketSnapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	series, ok := p.series[symbol]
	if !ok || p.cursor[symbol] >= len(series) {
		return nil, fmt.Errorf("%w: %s", domain.ErrDataUnavailable, symbol)
	}

	snap := series[p.cursor[symbol]]
	p.cursor[symbol]++
	return &snap, nil
}

// Indicators computes the indicator set over the bars consumed so far.
func (p *ReplayProvider) Indicators(ctx context.Context, symbol, timeframe string) (*domain.IndicatorSet, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	series, ok := p.series[symbol]
	if !ok || p.cursor[symbol] == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrDataUnavailable, symbol)
	}

	prices := make([]float64, p.cursor[symbol])
	for i := range prices {
		prices[i] = series[i].Price
	}
	return usecase.ComputeIndicators(prices), nil
}

// History returns up to `period` bars ending at the replay cursor.
func (p *ReplayProvider) History(ctx context.Context, symbol, period, interval string) ([]domain.MarketSnapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	series, ok := p.series[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrDataUnavailable, symbol)
	}

	end := p.cursor[symbol]
	if end == 0 {
		end = len(series)
	}

	n, err := strconv.Atoi(period)
	if err != nil || n <= 0 || n > end {
		n = end
	}

	out := make([]domain.MarketSnapshot, n)
	copy(out, series[end-n:end])
	return out, nil
}
