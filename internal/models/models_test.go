package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandleFromTuple(t *testing.T) {
	c, err := CandleFromTuple([]float64{1000, 1, 2, 0.5, 1.5, 10})
	require.NoError(t, err)
	assert.Equal(t, Candle{Timestamp: 1000, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10}, c)

	_, err = CandleFromTuple([]float64{1000, 1})
	assert.Error(t, err)
}

func TestCandleSeries_TrimFront(t *testing.T) {
	s := CandleSeries{Symbol: "BTCUSDT", Timeframe: "1h", Candles: []Candle{{Timestamp: 1}, {Timestamp: 2}, {Timestamp: 3}}}

	tests := []struct {
		name string
		n    int
		want []int64
	}{
		{name: "none", n: 0, want: []int64{1, 2, 3}},
		{name: "some", n: 2, want: []int64{3}},
		{name: "all", n: 5, want: []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.TrimFront(tt.n)
			assert.Equal(t, tt.want, got.Timestamps())
			assert.Equal(t, "BTCUSDT", got.Symbol)
		})
	}

	trimmed := s.TrimFront(0)
	trimmed.Candles[0].Close = 99
	assert.Zero(t, s.Candles[0].Close, "trimmed copies do not share candles")
}

func TestCandleSeries_Order(t *testing.T) {
	asc := CandleSeries{Candles: []Candle{{Timestamp: 1}, {Timestamp: 2}}}
	dup := CandleSeries{Candles: []Candle{{Timestamp: 1}, {Timestamp: 1}}}

	assert.True(t, asc.IsStrictlyAscending())
	assert.False(t, dup.IsStrictlyAscending())

	last, ok := asc.Last()
	assert.True(t, ok)
	assert.Equal(t, int64(2), last.Timestamp)

	_, ok = CandleSeries{}.Last()
	assert.False(t, ok)
}

func TestTradeRecord_Profit(t *testing.T) {
	tests := []struct {
		name       string
		direction  Direction
		entry      float64
		exit       float64
		wantProfit float64
	}{
		{name: "long win", direction: Long, entry: 100, exit: 105, wantProfit: 10},
		{name: "long loss", direction: Long, entry: 100, exit: 95, wantProfit: -10},
		{name: "short win", direction: Short, entry: 100, exit: 95, wantProfit: 10},
		{name: "short loss", direction: Short, entry: 100, exit: 102, wantProfit: -4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			tr := &TradeRecord{
				Direction:  tt.direction,
				EntryOrder: Order{Price: tt.entry, Amount: 2},
				Funds:      tt.entry * 2,
				Amount:     2,
			}
			assert.Zero(t, tr.Profit(), "open trades have no profit")

			// Act
			tr.Close(Order{Timestamp: 7, Price: tt.exit, Amount: 2}, 3, false)

			// Assert
			assert.True(t, tr.IsClosed())
			assert.Equal(t, int64(7), *tr.ExitTimestamp)
			assert.Equal(t, 3, tr.TotalBars)
			assert.InDelta(t, tt.wantProfit, tr.Profit(), 1e-9)
			assert.InDelta(t, tt.wantProfit/tt.exit, tr.ProfitBase(), 1e-9)
			assert.InDelta(t, tt.entry*2+tt.wantProfit, tr.ExitFunds(), 1e-9)
		})
	}
}

func TestDirection_Sides(t *testing.T) {
	assert.Equal(t, OrderSideBuy, Long.EntrySide())
	assert.Equal(t, OrderSideSell, Long.ExitSide())
	assert.Equal(t, OrderSideSell, Short.EntrySide())
	assert.Equal(t, OrderSideBuy, Short.ExitSide())
}

func TestOrder_IsFinal(t *testing.T) {
	assert.False(t, Order{Status: OrderStatusOpen}.IsFinal())
	for _, s := range []OrderStatus{OrderStatusClosed, OrderStatusCanceled, OrderStatusExpired, OrderStatusRejected} {
		assert.True(t, Order{Status: s}.IsFinal(), s)
	}
}
