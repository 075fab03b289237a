package broker

import (
	"context"

	"github.com/vitos/futures_day_bot/internal/domain"
	"github.com/vitos/futures_day_bot/pkg/id"
	"go.uber.org/zap"
)

// PaperExecutor fills every order at the requested price without
// touching a real broker. Used for dry runs and development.
type PaperExecutor struct {
	logger *zap.Logger
}

func NewPaperExecutor(logger *zap.Logger) *PaperExecutor {
	return &PaperExecutor{logger: logger}
}

func (p *PaperExecutor) Execute(ctx context.Context, symbol string, direction domain.Direction, quantity int, price float64) (*domain.ExecutionReport, error) {
	report := &domain.ExecutionReport{
		Success: true,
		OrderID: id.New(),
		Price:   price,
	}
	p.logger.Info("paper order filled",
		zap.String("symbol", symbol),
		zap.String("direction", string(direction)),
		zap.Int("quantity", quantity),
		zap.Float64("price", price),
		zap.String("order_id", report.OrderID))
	return report, nil
}
