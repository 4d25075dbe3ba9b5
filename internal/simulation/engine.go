// Package simulation replays a strategy over historical candles, fills its
// orders against the candles' extremes and summarizes the resulting trades.
package simulation

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"binance-strategy-bot-go/internal/config"
	"binance-strategy-bot-go/internal/models"
	"binance-strategy-bot-go/internal/strategy"
	"go.uber.org/zap"
)

// Engine is a deterministic, single-threaded backtester.
type Engine struct {
	logger *zap.Logger
	cfg    config.Simulation
}

// NewEngine creates a new simulation engine.
func NewEngine(cfg config.Simulation, logger *zap.Logger) *Engine {
	return &Engine{logger: logger.Named("simulation"), cfg: cfg}
}

func (e *Engine) validate() error {
	switch {
	case e.cfg.Amount <= 0:
		return fmt.Errorf("%w: simulation.amount must be positive", models.ErrInvalidConfiguration)
	case e.cfg.ProfitPct <= 0:
		return fmt.Errorf("%w: simulation.profit_pct must be positive", models.ErrInvalidConfiguration)
	case e.cfg.StopPct < 0:
		return fmt.Errorf("%w: simulation.stop_pct must not be negative", models.ErrInvalidConfiguration)
	}
	return nil
}

// replay is the mutable state of one Run.
type replay struct {
	trades   []*models.TradeRecord
	open     *models.TradeRecord
	bars     int
	realized float64 // funds after the last closed trade, zero before the first
	orderSeq int
}

// Run sets the strategy up with series and replays every aligned candle.
// It returns ErrSimulationIncomplete when the strategy never entered a trade.
func (e *Engine) Run(s strategy.Strategy, series models.CandleSeries) (Summary, error) {
	if err := e.validate(); err != nil {
		return Summary{}, err
	}
	if err := reset(s); err != nil {
		return Summary{}, fmt.Errorf("reset %s: %w", s.Name(), err)
	}
	if err := s.Setup(series); err != nil {
		return Summary{}, fmt.Errorf("simulation setup: %w", err)
	}
	candles := s.Candles()
	e.logger.Info("Starting replay",
		zap.String("strategy", s.Name()),
		zap.String("symbol", candles.Symbol),
		zap.Int("candles", candles.Len()),
		zap.Int("trimmed", series.Len()-candles.Len()))

	r := &replay{}
	for i, c := range candles.Candles {
		res, err := s.Run(i, true, 0)
		if err != nil {
			return Summary{}, fmt.Errorf("run %s at candle %d: %w", s.Name(), i, err)
		}
		if err := e.step(s, r, candles.Symbol, c, res); err != nil {
			return Summary{}, fmt.Errorf("candle %d: %w", i, err)
		}
	}

	if len(r.trades) == 0 {
		return Summary{}, fmt.Errorf("%s over %d candles: %w", s.Name(), candles.Len(), models.ErrSimulationIncomplete)
	}
	summary := Summarize(r.trades)
	e.logger.Info("Replay finished",
		zap.String("strategy", s.Name()),
		zap.Int("trades", summary.Trades),
		zap.Int("stop_triggered", summary.StopTriggered),
		zap.Float64("success_rate", summary.SuccessRate),
		zap.Float64("total_profit_quote", summary.TotalProfitQuote),
		zap.Bool("ongoing", summary.Ongoing != nil))
	return summary, nil
}

// reset returns a strategy left mid-trade by an earlier run to PENDING.
// States no event can leave are kept.
func reset(s strategy.Strategy) error {
	event := strategy.EventAbort
	switch s.State() {
	case strategy.StateTakeProfit, strategy.StateStopLossTriggered:
		event = strategy.EventTradeClosed
	}
	if err := s.Acknowledge(event); err != nil && !errors.Is(err, models.ErrInvalidTransition) {
		return err
	}
	return nil
}

// step dispatches on the state returned for candle c.
func (e *Engine) step(s strategy.Strategy, r *replay, symbol string, c models.Candle, res strategy.Result) error {
	switch res.State {
	case strategy.StateEnterLong, strategy.StateEnterShort:
		d, _ := res.State.Direction()
		e.enter(r, symbol, c, d)
		if err := s.Acknowledge(strategy.EventOrderPlaced); err != nil {
			return err
		}
		return s.Acknowledge(strategy.EventOrderFilled)

	case strategy.StateAwaitTakeProfit:
		if r.open == nil {
			return fmt.Errorf("%s without an open trade", res.State)
		}
		r.bars++
		t := r.open
		switch {
		case strategy.ProfitHit(t.Direction, t.ProfitTarget, c.High, c.Low):
			e.exit(r, symbol, c, t.ProfitTarget, false)
			return s.Acknowledge(strategy.EventProfitTaken)
		case strategy.StopHit(t.Direction, t.StopTarget, c.High, c.Low):
			e.exit(r, symbol, c, t.StopTarget, true)
			return s.Acknowledge(strategy.EventStopTriggered)
		}

	case strategy.StateTakeProfit, strategy.StateStopLossTriggered:
		return s.Acknowledge(strategy.EventTradeClosed)
	}
	return nil
}

func (e *Engine) enter(r *replay, symbol string, c models.Candle, d models.Direction) {
	amount := e.cfg.Amount
	funds := amount * c.Close
	if e.cfg.Compound && r.realized > 0 {
		funds = r.realized
		amount = funds / c.Close
	}

	t := &models.TradeRecord{
		EntryTimestamp: c.Timestamp,
		EntryOrder:     r.order(symbol, d.EntrySide(), c.Timestamp, c.Close, amount),
		Direction:      d,
		ProfitTarget:   strategy.ProfitTarget(d, c.Close, e.cfg.ProfitPct),
		StopTarget:     strategy.StopTarget(d, c.Close, e.cfg.StopPct),
		Funds:          funds,
		Amount:         amount,
	}
	r.trades = append(r.trades, t)
	r.open = t
	r.bars = 0

	e.logger.Debug("Simulated entry",
		zap.String("direction", string(d)),
		zap.Int64("timestamp", c.Timestamp),
		zap.Float64("price", c.Close),
		zap.Float64("amount", amount),
		zap.Float64("profit_target", t.ProfitTarget),
		zap.Float64("stop_target", t.StopTarget))
}

func (e *Engine) exit(r *replay, symbol string, c models.Candle, price float64, stop bool) {
	t := r.open
	t.Close(r.order(symbol, t.Direction.ExitSide(), c.Timestamp, price, t.Amount), r.bars, stop)
	r.realized = t.ExitFunds()
	r.open = nil

	e.logger.Debug("Simulated exit",
		zap.Int64("timestamp", c.Timestamp),
		zap.Float64("price", price),
		zap.Int("bars", t.TotalBars),
		zap.Bool("stop_triggered", stop),
		zap.Float64("profit", t.Profit()))
}

// order builds a limit order that is already filled.
func (r *replay) order(symbol string, side models.OrderSide, ts int64, price, amount float64) models.Order {
	r.orderSeq++
	return models.Order{
		ID:        "sim-" + strconv.Itoa(r.orderSeq),
		Datetime:  time.UnixMilli(ts).UTC().Format(time.RFC3339),
		Timestamp: ts,
		Status:    models.OrderStatusClosed,
		Symbol:    symbol,
		Type:      models.OrderTypeLimit,
		Side:      side,
		Price:     price,
		Amount:    amount,
	}
}
