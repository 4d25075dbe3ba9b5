package strategy

import (
	"binance-strategy-bot-go/internal/indicators"
	"binance-strategy-bot-go/internal/models"
)

// RSI is a mean reversion strategy: it enters long when the RSI is oversold
// and short when it is overbought, without a confirmation phase.
type RSI struct {
	base
	rsi        indicators.RSI
	overbought float64
	oversold   float64
}

var _ Strategy = (*RSI)(nil)

// NewRSI returns an RSI strategy over the given period.
func NewRSI(period int, overbought, oversold float64, side Side) *RSI {
	rsi := indicators.RSI{Period: period}
	return &RSI{
		base:       newBase("rsi", side, Confirmation{}, rsi),
		rsi:        rsi,
		overbought: overbought,
		oversold:   oversold,
	}
}

func (s *RSI) Run(index int, isReplay bool, _ float64) (Result, error) {
	i, err := s.position(index, isReplay)
	if err != nil {
		return Result{}, err
	}
	rsi := s.value(s.rsi, i).Scalar()

	if !s.Advance() && s.state == StatePending {
		switch {
		case rsi <= s.oversold:
			s.Enter(models.Long)
		case rsi >= s.overbought:
			s.Enter(models.Short)
		}
	}
	return s.result(s.candle(i).Timestamp, map[string]any{"rsi": rsi}, ""), nil
}
