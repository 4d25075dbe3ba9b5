package simulation

import (
	"math"

	"binance-strategy-bot-go/internal/models"
)

// Summary aggregates the trades of one replay. An unterminated final trade is
// reported in Ongoing and left out of every average and rate.
type Summary struct {
	Trades                int                   `json:"trades"`
	ClosedTrades          int                   `json:"closed_trades"`
	StopTriggered         int                   `json:"stop_triggered"`
	Successful            int                   `json:"successful"`
	SuccessRate           float64               `json:"success_rate"` // percent
	AverageBars           float64               `json:"average_bars"`
	// AverageProfitQuote and AverageProfitBase are signed, so losses offset gains.
	AverageProfitQuote    float64               `json:"average_profit_quote"`
	AverageProfitBase     float64               `json:"average_profit_base"`
	// AverageAbsProfitQuote is the mean magnitude of realized profit or loss.
	AverageAbsProfitQuote float64               `json:"average_abs_profit_quote"`
	TotalProfitQuote      float64               `json:"total_profit_quote"`
	FinalFunds            float64               `json:"final_funds"`
	Ongoing               *models.TradeRecord   `json:"ongoing,omitempty"`
	TradeRecords          []*models.TradeRecord `json:"trade_records"`
}

// Summarize computes a Summary from trades in chronological order.
func Summarize(trades []*models.TradeRecord) Summary {
	s := Summary{Trades: len(trades), TradeRecords: trades}
	if len(trades) == 0 {
		return s
	}
	if last := trades[len(trades)-1]; !last.IsClosed() {
		s.Ongoing = last
	}

	var bars int
	var profitBase, absQuote float64
	for _, t := range trades {
		if !t.IsClosed() {
			continue
		}
		s.ClosedTrades++
		if t.StopTriggered {
			s.StopTriggered++
		}
		if t.Profit() > 0 {
			s.Successful++
		}
		bars += t.TotalBars
		s.TotalProfitQuote += t.Profit()
		absQuote += math.Abs(t.Profit())
		profitBase += t.ProfitBase()
		s.FinalFunds = t.ExitFunds()
	}

	denominator := s.Trades
	if s.Ongoing != nil {
		denominator--
	}
	if denominator > 0 {
		s.SuccessRate = float64(s.Successful) / float64(denominator) * 100
	}
	if s.ClosedTrades > 0 {
		n := float64(s.ClosedTrades)
		s.AverageBars = float64(bars) / n
		s.AverageProfitQuote = s.TotalProfitQuote / n
		s.AverageProfitBase = profitBase / n
		s.AverageAbsProfitQuote = absQuote / n
	}
	return s
}
