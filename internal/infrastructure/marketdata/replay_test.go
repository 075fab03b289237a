package marketdata_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/futures_day_bot/internal/domain"
	"github.com/vitos/futures_day_bot/internal/infrastructure/marketdata"
	"go.uber.org/zap"
)

func sampleSeries(n int) []domain.MarketSnapshot {
	base := time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC)
	series := make([]domain.MarketSnapshot, n)
	for i := range series {
		series[i] = domain.MarketSnapshot{
			Symbol:    "WIN",
			Price:     112000 + float64(i),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}
	}
	return series
}

func TestLatestAdvancesCursor(t *testing.T) {
	p := marketdata.NewReplayProvider(zap.NewNop())
	p.Load("WIN", sampleSeries(3))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		snap, err := p.Latest(ctx, "WIN")
		require.NoError(t, err)
		assert.Equal(t, 112000+float64(i), snap.Price)
	}

	_, err := p.Latest(ctx, "WIN")
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
}

func TestLatestUnknownSymbol(t *testing.T) {
	p := marketdata.NewReplayProvider(zap.NewNop())
	_, err := p.Latest(context.Background(), "XYZ")
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
}

func TestIndicatorsUseConsumedBars(t *testing.T) {
	p := marketdata.NewReplayProvider(zap.NewNop())
	p.Load("WIN", sampleSeries(40))
	ctx := context.Background()

	_, err := p.Indicators(ctx, "WIN", "5m")
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)

	for i := 0; i < 30; i++ {
		_, err := p.Latest(ctx, "WIN")
		require.NoError(t, err)
	}

	ind, err := p.Indicators(ctx, "WIN", "5m")
	require.NoError(t, err)
	assert.Equal(t, 100.0, ind.RSI) // strictly rising series
	assert.Greater(t, ind.EMA9, ind.EMA21)
}

func TestHistoryWindow(t *testing.T) {
	p := marketdata.NewReplayProvider(zap.NewNop())
	p.Load("WIN", sampleSeries(10))

	history, err := p.History(context.Background(), "WIN", "4", "")
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, 112006.0, history[0].Price)
	assert.Equal(t, 112009.0, history[3].Price)
}

func TestLoadCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "win.csv")
	content := "timestamp,close,volume\n" +
		"2025-03-10T11:00:00Z,112000,10\n" +
		"2025-03-10T11:01:00Z,112005,12\n" +
		"1741604520,112010,8\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	p := marketdata.NewReplayProvider(zap.NewNop())
	bars, err := p.LoadCSV("WIN", path)
	require.NoError(t, err)
	assert.Equal(t, 3, bars)

	snap, err := p.Latest(context.Background(), "WIN")
	require.NoError(t, err)
	assert.Equal(t, 112000.0, snap.Price)
	assert.Equal(t, 10.0, snap.Volume)
	assert.Equal(t, 2025, snap.Timestamp.Year())
}

func TestLoadCSVBadRow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("2025-03-10T11:00:00Z,notaprice\n"), 0o644))

	p := marketdata.NewReplayProvider(zap.NewNop())
	_, err := p.LoadCSV("WIN", path)
	assert.Error(t, err)
}
