// Package live drives a strategy against the exchange on a wall-clock ticker.
package live

import (
	"context"
	"fmt"
	"time"

	"binance-strategy-bot-go/internal/binance"
	"binance-strategy-bot-go/internal/candles"
	"binance-strategy-bot-go/internal/config"
	"binance-strategy-bot-go/internal/models"
	"binance-strategy-bot-go/internal/strategy"
	"go.uber.org/zap"
)

// Driver runs one strategy for one symbol. Each tick fetches recent candles,
// evaluates the newest one and acts on the returned state. Ticks never overlap.
type Driver struct {
	logger   *zap.Logger
	strategy strategy.Strategy
	source   candles.Source
	executor binance.OrderExecutor
	notifier Notifier

	symbol    string
	timeframe string
	unit      time.Duration
	interval  time.Duration
	history   int
	trading   config.Simulation
	now       func() time.Time

	trade *models.TradeRecord // the position being opened or held
	bars  int
}

// NewDriver creates a Driver from the assembler, live and simulation sections of cfg.
// The simulation section supplies the order amount and the profit and stop percentages.
func NewDriver(cfg *config.Config, s strategy.Strategy, source candles.Source, executor binance.OrderExecutor, notifier Notifier, logger *zap.Logger) (*Driver, error) {
	unit, err := candles.TimeframeDuration(cfg.Assembler.Timeframe)
	if err != nil {
		return nil, err
	}
	switch {
	case cfg.Live.TickInterval <= 0:
		return nil, fmt.Errorf("%w: live.tick_interval must be positive", models.ErrInvalidConfiguration)
	case cfg.Live.HistoryCandles <= 0:
		return nil, fmt.Errorf("%w: live.history_candles must be positive", models.ErrInvalidConfiguration)
	case cfg.Simulation.Amount <= 0 || cfg.Simulation.ProfitPct <= 0:
		return nil, fmt.Errorf("%w: simulation.amount and simulation.profit_pct must be positive", models.ErrInvalidConfiguration)
	}
	if err := candles.CheckPageLimit(source, cfg.Live.HistoryCandles); err != nil {
		return nil, fmt.Errorf("live.history_candles: %w", err)
	}

	return &Driver{
		logger:    logger.Named("live").With(zap.String("strategy", s.Name()), zap.String("symbol", cfg.Assembler.Symbol)),
		strategy:  s,
		source:    source,
		executor:  executor,
		notifier:  notifier,
		symbol:    cfg.Assembler.Symbol,
		timeframe: cfg.Assembler.Timeframe,
		unit:      unit,
		interval:  time.Duration(cfg.Live.TickInterval) * time.Second,
		history:   cfg.Live.HistoryCandles,
		trading:   cfg.Simulation,
		now:       time.Now,
	}, nil
}

// Run ticks until ctx is cancelled. A failed tick is logged and the loop goes on.
func (d *Driver) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.logger.Info("Starting live loop", zap.Duration("interval", d.interval))
	d.tickLogged(ctx)

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Stopping live loop...")
			return
		case <-ticker.C:
			d.tickLogged(ctx)
		}
	}
}

func (d *Driver) tickLogged(ctx context.Context) {
	if err := d.Tick(ctx); err != nil {
		d.logger.Error("Tick failed", zap.Error(err), zap.String("state", d.strategy.State().String()))
	}
}

// Tick runs one evaluation and dispatch cycle.
func (d *Driver) Tick(ctx context.Context) error {
	since := d.source.ParseToEpoch(d.now().Add(-time.Duration(d.history) * d.unit))
	batch, err := d.source.FetchOHLCVSince(ctx, d.symbol, d.timeframe, since)
	if err != nil {
		return fmt.Errorf("fetch candles: %w", err)
	}
	series := models.CandleSeries{Symbol: d.symbol, Timeframe: d.timeframe, Candles: batch}
	if err := d.strategy.Setup(series); err != nil {
		return err
	}

	price, err := d.executor.GetTickerPrice(ctx, d.symbol)
	if err != nil {
		d.logger.Warn("Ticker price unavailable, using last close", zap.Error(err))
		price = 0
	}

	res, err := d.strategy.Run(0, false, price)
	if err != nil {
		return err
	}
	if price <= 0 {
		if last, ok := d.strategy.Candles().Last(); ok {
			price = last.Close
		}
	}
	return d.dispatch(ctx, res, price)
}

func (d *Driver) dispatch(ctx context.Context, res strategy.Result, price float64) error {
	switch res.State {
	case strategy.StateEnterLong, strategy.StateEnterShort:
		dir, _ := res.State.Direction()
		return d.enter(ctx, dir, price)

	case strategy.StateAwaitOrderFilled:
		return d.checkFill(ctx)

	case strategy.StateAwaitTakeProfit:
		return d.watchTargets(ctx, price)

	case strategy.StateTakeProfit, strategy.StateStopLossTriggered:
		if d.trade != nil {
			d.logger.Info("Trade closed",
				zap.String("direction", string(d.trade.Direction)),
				zap.Bool("stop_triggered", d.trade.StopTriggered),
				zap.Int("bars", d.trade.TotalBars),
				zap.Float64("profit", d.trade.Profit()))
		}
		d.trade = nil
		return d.strategy.Acknowledge(strategy.EventTradeClosed)

	case strategy.StateTriggerAlert:
		return d.notifier.Notify(ctx, d.symbol, res)

	case strategy.StateTrendUp, strategy.StateTrendDown, strategy.StateContextIndependent:
		d.logger.Debug("Strategy update", zap.String("state", res.State.String()), zap.Any("custom", res.Custom))
	}
	return nil
}

func (d *Driver) enter(ctx context.Context, dir models.Direction, price float64) error {
	order, err := d.executor.CreateOrder(ctx, binance.OrderRequest{
		Symbol: d.symbol,
		Side:   dir.EntrySide(),
		Type:   models.OrderTypeLimit,
		Amount: d.trading.Amount,
		Price:  price,
	})
	if err != nil {
		if ackErr := d.strategy.Acknowledge(strategy.EventAbort); ackErr != nil {
			d.logger.Error("Abort after failed entry was rejected", zap.Error(ackErr))
		}
		return fmt.Errorf("entry order: %w", err)
	}

	d.trade = &models.TradeRecord{
		EntryTimestamp: order.Timestamp,
		EntryOrder:     order,
		Direction:      dir,
		Funds:          order.Cost(),
		Amount:         order.Amount,
	}
	d.setTargets(order.Price)
	d.logger.Info("Entry order placed",
		zap.String("id", order.ID),
		zap.String("direction", string(dir)),
		zap.Float64("price", order.Price),
		zap.Float64("amount", order.Amount))
	return d.strategy.Acknowledge(strategy.EventOrderPlaced)
}

func (d *Driver) setTargets(entry float64) {
	d.trade.ProfitTarget = strategy.ProfitTarget(d.trade.Direction, entry, d.trading.ProfitPct)
	d.trade.StopTarget = strategy.StopTarget(d.trade.Direction, entry, d.trading.StopPct)
}

func (d *Driver) checkFill(ctx context.Context) error {
	if d.trade == nil {
		d.logger.Warn("Awaiting a fill without an entry order, aborting")
		return d.strategy.Acknowledge(strategy.EventAbort)
	}

	order, err := d.executor.GetOrder(ctx, d.symbol, d.trade.EntryOrder.ID)
	if err != nil {
		return fmt.Errorf("poll entry order: %w", err)
	}

	switch {
	case order.Status == models.OrderStatusClosed:
		d.trade.EntryOrder = order
		d.trade.Funds = order.Cost()
		d.trade.Amount = order.Amount
		d.setTargets(order.Price)
		d.bars = 0
		d.logger.Info("Entry order filled",
			zap.String("id", order.ID),
			zap.Float64("profit_target", d.trade.ProfitTarget),
			zap.Float64("stop_target", d.trade.StopTarget))
		return d.strategy.Acknowledge(strategy.EventOrderFilled)
	case order.IsFinal():
		d.logger.Warn("Entry order did not fill", zap.String("id", order.ID), zap.String("status", string(order.Status)))
		d.trade = nil
		return d.strategy.Acknowledge(strategy.EventAbort)
	}
	return nil
}

func (d *Driver) watchTargets(ctx context.Context, price float64) error {
	if d.trade == nil {
		d.logger.Warn("Holding without a trade record, aborting")
		return d.strategy.Acknowledge(strategy.EventAbort)
	}
	d.bars++

	t := d.trade
	var (
		stop  bool
		event strategy.Event
	)
	switch {
	case strategy.ProfitHit(t.Direction, t.ProfitTarget, price, price):
		event = strategy.EventProfitTaken
	case strategy.StopHit(t.Direction, t.StopTarget, price, price):
		stop, event = true, strategy.EventStopTriggered
	default:
		return nil
	}

	exit, err := d.executor.CreateOrder(ctx, binance.OrderRequest{
		Symbol: d.symbol,
		Side:   t.Direction.ExitSide(),
		Type:   models.OrderTypeMarket,
		Amount: t.Amount,
	})
	if err != nil {
		return fmt.Errorf("exit order: %w", err)
	}
	t.Close(exit, d.bars, stop)
	d.logger.Info("Exit order placed",
		zap.String("id", exit.ID),
		zap.Float64("price", exit.Price),
		zap.Bool("stop_triggered", stop))
	return d.strategy.Acknowledge(event)
}
