package simulation

import (
	"testing"

	"binance-strategy-bot-go/internal/models"
	"github.com/stretchr/testify/assert"
)

func closedTrade(d models.Direction, entry, exit float64, bars int, stop bool) *models.TradeRecord {
	t := &models.TradeRecord{
		Direction:  d,
		EntryOrder: models.Order{Price: entry, Amount: 1},
		Funds:      entry,
		Amount:     1,
	}
	t.Close(models.Order{Price: exit, Amount: 1}, bars, stop)
	return t
}

func TestSummarize(t *testing.T) {
	// Arrange
	trades := []*models.TradeRecord{
		closedTrade(models.Long, 100, 110, 2, false),
		closedTrade(models.Long, 100, 95, 4, true),
		closedTrade(models.Short, 100, 90, 3, false),
		{Direction: models.Long, EntryOrder: models.Order{Price: 100}, Amount: 1},
	}

	// Act
	s := Summarize(trades)

	// Assert
	assert.Equal(t, 4, s.Trades)
	assert.Equal(t, 3, s.ClosedTrades)
	assert.Equal(t, 1, s.StopTriggered)
	assert.Equal(t, 2, s.Successful)
	assert.InDelta(t, 200.0/3.0, s.SuccessRate, 1e-9)
	assert.InDelta(t, 3.0, s.AverageBars, 1e-9)
	assert.InDelta(t, 15.0, s.TotalProfitQuote, 1e-9)
	assert.InDelta(t, 5.0, s.AverageProfitQuote, 1e-9)
	assert.InDelta(t, 25.0/3.0, s.AverageAbsProfitQuote, 1e-9)
	assert.InDelta(t, (10.0/110-5.0/95+10.0/90)/3, s.AverageProfitBase, 1e-9)
	assert.InDelta(t, 110.0, s.FinalFunds, 1e-9)
	assert.Same(t, trades[3], s.Ongoing)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)

	assert.Zero(t, s.Trades)
	assert.Zero(t, s.SuccessRate)
	assert.Nil(t, s.Ongoing)
}

func TestSummarize_AverageProfitSign(t *testing.T) {
	testCases := []struct {
		name       string
		trades     []*models.TradeRecord
		wantSigned float64
		wantAbs    float64
	}{
		{"gain and equal loss", []*models.TradeRecord{
			closedTrade(models.Long, 100, 110, 1, false),
			closedTrade(models.Long, 100, 90, 1, true),
		}, 0, 10},
		{"losses only", []*models.TradeRecord{
			closedTrade(models.Long, 100, 96, 1, true),
			closedTrade(models.Short, 100, 102, 1, true),
		}, -3, 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := Summarize(tc.trades)

			assert.InDelta(t, tc.wantSigned, s.AverageProfitQuote, 1e-9)
			assert.InDelta(t, tc.wantAbs, s.AverageAbsProfitQuote, 1e-9)
		})
	}
}
