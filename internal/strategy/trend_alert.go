package strategy

import (
	"fmt"

	"binance-strategy-bot-go/internal/indicators"
	"binance-strategy-bot-go/internal/models"
)

// TrendAlert never trades. It reports TREND_UP while the fast SMA is above
// the slow one, TREND_DOWN otherwise, and TRIGGER_ALERT on the run where
// the trend flips. The fast-period ATR is published for sizing alerts.
type TrendAlert struct {
	base
	fast, slow indicators.SMA
	atr        indicators.ATR
	trend      State
	symbol     string
}

var _ Strategy = (*TrendAlert)(nil)

// NewTrendAlert returns an alert-only trend strategy.
func NewTrendAlert(fast, slow int) *TrendAlert {
	f, s := indicators.SMA{Period: fast}, indicators.SMA{Period: slow}
	atr := indicators.ATR{Period: fast}
	return &TrendAlert{
		base: newBase("trend_alert", SideBiDirectional, Confirmation{}, f, s, atr),
		fast: f,
		slow: s,
		atr:  atr,
	}
}

func (s *TrendAlert) Setup(series models.CandleSeries) error {
	s.symbol = series.Symbol
	return s.base.Setup(series)
}

func (s *TrendAlert) Run(index int, isReplay bool, _ float64) (Result, error) {
	i, err := s.position(index, isReplay)
	if err != nil {
		return Result{}, err
	}
	fast, slow := s.value(s.fast, i).Scalar(), s.value(s.slow, i).Scalar()
	ts := s.candle(i).Timestamp
	custom := map[string]any{"fast": fast, "slow": slow, "atr": s.value(s.atr, i).Scalar()}

	trend := StateTrendDown
	if fast > slow {
		trend = StateTrendUp
	}

	var context string
	if s.trend != "" && trend != s.trend {
		s.state = StateTriggerAlert
		context = s.describe(trend, fast, slow)
	} else {
		s.state = trend
	}
	s.trend = trend
	return s.result(ts, custom, context), nil
}

func (s *TrendAlert) describe(trend State, fast, slow float64) string {
	if trend == StateTrendUp {
		return fmt.Sprintf("%s trend turned up: fast SMA %.4f above slow SMA %.4f", s.symbol, fast, slow)
	}
	return fmt.Sprintf("%s trend turned down: fast SMA %.4f below slow SMA %.4f", s.symbol, fast, slow)
}
