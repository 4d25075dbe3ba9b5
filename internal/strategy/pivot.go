package strategy

import (
	"binance-strategy-bot-go/internal/indicators"
	"binance-strategy-bot-go/internal/models"
)

// Pivot trades bounces off Woodie's pivot levels of the previous candle:
// a candle that dips through S1 and closes above it enters long, one that
// spikes through R1 and closes below it enters short.
type Pivot struct {
	base
	pivots indicators.WoodiePivotPoints
}

var _ Strategy = (*Pivot)(nil)

// NewPivot returns a pivot bounce strategy.
func NewPivot(side Side) *Pivot {
	var pivots indicators.WoodiePivotPoints
	return &Pivot{base: newBase("pivot", side, Confirmation{}, pivots), pivots: pivots}
}

func (s *Pivot) Run(index int, isReplay bool, tickerPrice float64) (Result, error) {
	i, err := s.position(index, isReplay)
	if err != nil {
		return Result{}, err
	}
	c := s.candle(i)
	v := s.value(s.pivots, i)
	s1, r1 := v.Get(indicators.FieldS1), v.Get(indicators.FieldR1)
	custom := map[string]any{
		"pivot": v.Get(indicators.FieldPivot),
		"r1":    r1,
		"r2":    v.Get(indicators.FieldR2),
		"s1":    s1,
		"s2":    v.Get(indicators.FieldS2),
	}

	if !s.Advance() && s.state == StatePending {
		price := s.price(i, isReplay, tickerPrice)
		switch {
		case c.Low <= s1 && price > s1:
			s.Enter(models.Long)
		case c.High >= r1 && price < r1:
			s.Enter(models.Short)
		}
	}
	return s.result(c.Timestamp, custom, ""), nil
}
