package live

import (
	"context"

	"binance-strategy-bot-go/internal/strategy"
	"go.uber.org/zap"
)

// Notifier delivers strategy alerts to the operator.
type Notifier interface {
	Notify(ctx context.Context, symbol string, res strategy.Result) error
}

// LogNotifier writes alerts to the log.
type LogNotifier struct {
	logger *zap.Logger
}

var _ Notifier = (*LogNotifier)(nil)

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("alerts")}
}

func (n *LogNotifier) Notify(_ context.Context, symbol string, res strategy.Result) error {
	n.logger.Info(res.Context,
		zap.String("symbol", symbol),
		zap.String("state", res.State.String()),
		zap.Int64("timestamp", res.Timestamp),
		zap.Any("custom", res.Custom),
	)
	return nil
}
