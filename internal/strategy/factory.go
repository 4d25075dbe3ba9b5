package strategy

import (
	"fmt"
	"sort"

	"binance-strategy-bot-go/internal/config"
	"binance-strategy-bot-go/internal/models"
	"go.uber.org/zap"
)

type constructor func(cfg config.Strategy, side Side, confirm Confirmation) (Strategy, error)

var registry = map[string]constructor{
	"rsi": func(cfg config.Strategy, side Side, _ Confirmation) (Strategy, error) {
		overbought := orFloat(cfg.Overbought, 70)
		oversold := orFloat(cfg.Oversold, 30)
		if oversold >= overbought {
			return nil, invalid("strategy.oversold", "must be below strategy.overbought")
		}
		return NewRSI(orInt(cfg.Period, 14), overbought, oversold, side), nil
	},
	"macd": func(cfg config.Strategy, side Side, confirm Confirmation) (Strategy, error) {
		fast, slow := orInt(cfg.FastPeriod, 12), orInt(cfg.SlowPeriod, 26)
		if fast >= slow {
			return nil, invalid("strategy.fast_period", "must be below strategy.slow_period")
		}
		return NewMACD(fast, slow, orInt(cfg.SignalLen, 9), side, confirm), nil
	},
	"bollinger": func(cfg config.Strategy, side Side, confirm Confirmation) (Strategy, error) {
		if confirm.Probability <= 0 || confirm.Probability > 1 {
			return nil, invalid("strategy.confirmation.probability", "must be in (0, 1]")
		}
		return NewBollinger(orInt(cfg.Period, 20), orFloat(cfg.Sigma, 2), side, confirm), nil
	},
	"pivot": func(_ config.Strategy, side Side, _ Confirmation) (Strategy, error) {
		return NewPivot(side), nil
	},
	"trend_alert": func(cfg config.Strategy, _ Side, _ Confirmation) (Strategy, error) {
		fast, slow := orInt(cfg.FastPeriod, 9), orInt(cfg.SlowPeriod, 21)
		if fast >= slow {
			return nil, invalid("strategy.fast_period", "must be below strategy.slow_period")
		}
		return NewTrendAlert(fast, slow), nil
	},
	"market_maker": func(cfg config.Strategy, _ Side, _ Confirmation) (Strategy, error) {
		spread := orFloat(cfg.SpreadPct, 0.001)
		if spread >= 1 {
			return nil, invalid("strategy.spread_pct", "must be below 1")
		}
		return NewMarketMaker(spread), nil
	},
}

// New builds the strategy named in cfg. Zero parameters fall back to the
// usual defaults for that strategy. Transitions are logged to a named child of logger.
func New(cfg config.Strategy, logger *zap.Logger) (Strategy, error) {
	build, ok := registry[cfg.Name]
	if !ok {
		return nil, invalid("strategy.name", fmt.Sprintf("%q is not one of %v", cfg.Name, Names()))
	}
	side, err := ParseSide(cfg.Side)
	if err != nil {
		return nil, err
	}
	if cfg.Period < 0 || cfg.FastPeriod < 0 || cfg.SlowPeriod < 0 || cfg.SignalLen < 0 {
		return nil, invalid("strategy", "periods must not be negative")
	}
	confirm := Confirmation{
		Count:       cfg.Confirmation.Count,
		Lookback:    cfg.Confirmation.Lookback,
		Probability: cfg.Confirmation.Probability,
	}
	s, err := build(cfg, side, confirm)
	if err != nil {
		return nil, err
	}
	if l, ok := s.(interface{ SetLogger(*zap.Logger) }); ok && logger != nil {
		l.SetLogger(logger.Named("strategy").With(zap.String("strategy", s.Name())))
	}
	return s, nil
}

// Names returns the registered strategy names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func invalid(key, reason string) error {
	return fmt.Errorf("%w: %s %s", models.ErrInvalidConfiguration, key, reason)
}

func orInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func orFloat(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
