package strategy

// MarketMaker manages its own order lifecycle outside the shared machine.
// It always reports CONTEXT_INDEPENDENT and publishes bid and ask quotes
// SpreadPct around the current price in Custom.
type MarketMaker struct {
	base
	spread float64
}

var _ Strategy = (*MarketMaker)(nil)

// NewMarketMaker returns a market making strategy quoting spread on each side.
func NewMarketMaker(spread float64) *MarketMaker {
	s := &MarketMaker{base: newBase("market_maker", SideBiDirectional, Confirmation{}), spread: spread}
	s.state = StateContextIndependent
	return s
}

func (s *MarketMaker) Run(index int, isReplay bool, tickerPrice float64) (Result, error) {
	i, err := s.position(index, isReplay)
	if err != nil {
		return Result{}, err
	}
	price := s.price(i, isReplay, tickerPrice)
	custom := map[string]any{
		"price": price,
		"bid":   price - price*s.spread,
		"ask":   price + price*s.spread,
	}
	return s.result(s.candle(i).Timestamp, custom, ""), nil
}
