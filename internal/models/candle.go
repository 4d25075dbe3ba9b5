package models

import (
	"fmt"
	"time"
)

// Candle is one OHLCV bar. Timestamp is the bar's open time in epoch milliseconds.
type Candle struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// CandleFromTuple decodes the exchange 6-tuple [timestamp, open, high, low, close, volume].
func CandleFromTuple(t []float64) (Candle, error) {
	if len(t) < 6 {
		return Candle{}, fmt.Errorf("candle tuple has %d fields, want 6", len(t))
	}
	return Candle{
		Timestamp: int64(t[0]),
		Open:      t[1],
		High:      t[2],
		Low:       t[3],
		Close:     t[4],
		Volume:    t[5],
	}, nil
}

// Time returns the candle open time.
func (c Candle) Time() time.Time {
	return time.UnixMilli(c.Timestamp).UTC()
}

// CandleSeries is an ordered run of candles for one symbol and timeframe.
// Timestamps are strictly increasing and unique.
type CandleSeries struct {
	Symbol    string   `json:"symbol"`
	Timeframe string   `json:"timeframe"`
	Candles   []Candle `json:"candles"`
}

// Len returns the number of candles in the series.
func (s CandleSeries) Len() int {
	return len(s.Candles)
}

// Last returns the most recent candle. ok is false for an empty series.
func (s CandleSeries) Last() (c Candle, ok bool) {
	if len(s.Candles) == 0 {
		return Candle{}, false
	}
	return s.Candles[len(s.Candles)-1], true
}

// TrimFront returns a copy of the series without its first n candles.
func (s CandleSeries) TrimFront(n int) CandleSeries {
	if n <= 0 {
		return s.clone(s.Candles)
	}
	if n >= len(s.Candles) {
		return s.clone(nil)
	}
	return s.clone(s.Candles[n:])
}

// Timestamps returns the candle timestamps in series order.
func (s CandleSeries) Timestamps() []int64 {
	out := make([]int64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Timestamp
	}
	return out
}

// IsStrictlyAscending reports whether every timestamp is greater than the previous one.
func (s CandleSeries) IsStrictlyAscending() bool {
	for i := 1; i < len(s.Candles); i++ {
		if s.Candles[i].Timestamp <= s.Candles[i-1].Timestamp {
			return false
		}
	}
	return true
}

func (s CandleSeries) clone(candles []Candle) CandleSeries {
	out := CandleSeries{Symbol: s.Symbol, Timeframe: s.Timeframe}
	out.Candles = append(make([]Candle, 0, len(candles)), candles...)
	return out
}
