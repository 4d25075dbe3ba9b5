package strategy

import (
	"binance-strategy-bot-go/internal/indicators"
	"binance-strategy-bot-go/internal/models"
)

// MACD follows the trend. A histogram sign change moves it to
// AWAIT_CROSS_UP or AWAIT_CROSS_DOWN, and it enters once the histogram has
// kept its new sign for Confirmation.Count candles. A contrary candle
// returns it to PENDING.
type MACD struct {
	base
	macd indicators.MACD
}

var _ Strategy = (*MACD)(nil)

// NewMACD returns a MACD strategy.
func NewMACD(fast, slow, signal int, side Side, confirm Confirmation) *MACD {
	macd := indicators.MACD{Fast: fast, Slow: slow, Signal: signal}
	return &MACD{base: newBase("macd", side, confirm, macd), macd: macd}
}

func (s *MACD) Run(index int, isReplay bool, _ float64) (Result, error) {
	i, err := s.position(index, isReplay)
	if err != nil {
		return Result{}, err
	}
	cur := s.value(s.macd, i)
	hist := cur.Get(indicators.FieldHistogram)
	ts := s.candle(i).Timestamp
	custom := map[string]any{
		"macd":      cur.Get(indicators.FieldMACD),
		"signal":    cur.Get(indicators.FieldSignal),
		"histogram": hist,
	}

	if s.Advance() {
		return s.result(ts, custom, ""), nil
	}

	switch s.state {
	case StatePending:
		if i == 0 {
			break
		}
		prev := s.value(s.macd, i-1).Get(indicators.FieldHistogram)
		switch {
		case prev <= 0 && hist > 0:
			s.await(StateAwaitCrossUp, models.Long)
		case prev >= 0 && hist < 0:
			s.await(StateAwaitCrossDown, models.Short)
		}
	case StateAwaitCrossUp:
		s.confirmCross(ts, hist > 0)
	case StateAwaitCrossDown:
		s.confirmCross(ts, hist < 0)
	}
	return s.result(ts, custom, ""), nil
}

func (s *MACD) confirmCross(ts int64, confirmed bool) {
	if !confirmed {
		s.abandon()
		return
	}
	s.observe(ts, true)
	if s.consecutive() >= s.confirm.Count {
		s.Enter(s.pending)
	}
}
