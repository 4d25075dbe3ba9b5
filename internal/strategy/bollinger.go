package strategy

import (
	"binance-strategy-bot-go/internal/indicators"
	"binance-strategy-bot-go/internal/models"
)

// Bollinger is a mean reversion strategy. A close outside a band starts a
// confirmation phase; each following candle confirms when its close is back
// inside the band. It enters once the confirmed share of the lookback
// window reaches Confirmation.Probability and gives up when the window
// fills without reaching it.
type Bollinger struct {
	base
	bands indicators.BollingerBands
}

var _ Strategy = (*Bollinger)(nil)

// NewBollinger returns a Bollinger Bands strategy.
func NewBollinger(period int, sigma float64, side Side, confirm Confirmation) *Bollinger {
	bands := indicators.BollingerBands{Period: period, Sigma: sigma}
	return &Bollinger{base: newBase("bollinger", side, confirm, bands), bands: bands}
}

func (s *Bollinger) Run(index int, isReplay bool, _ float64) (Result, error) {
	i, err := s.position(index, isReplay)
	if err != nil {
		return Result{}, err
	}
	c := s.candle(i)
	v := s.value(s.bands, i)
	upper, lower := v.Get(indicators.FieldUpper), v.Get(indicators.FieldLower)
	custom := map[string]any{
		"middle": v.Get(indicators.FieldMiddle),
		"upper":  upper,
		"lower":  lower,
	}

	if s.Advance() {
		return s.result(c.Timestamp, custom, ""), nil
	}

	switch s.state {
	case StatePending:
		switch {
		case c.Close < lower:
			s.await(StateAwaitConfirmation, models.Long)
		case c.Close > upper:
			s.await(StateAwaitConfirmation, models.Short)
		}
	case StateAwaitConfirmation:
		if s.pending == models.Long {
			s.observe(c.Timestamp, c.Close >= lower)
		} else {
			s.observe(c.Timestamp, c.Close <= upper)
		}
		switch {
		case s.confirmedShare() >= s.confirm.Probability:
			s.Enter(s.pending)
		case s.bufferFull():
			s.abandon()
		}
	}
	return s.result(c.Timestamp, custom, ""), nil
}
