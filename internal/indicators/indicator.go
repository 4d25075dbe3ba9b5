// Package indicators computes technical indicators over candle series and
// aligns their (shorter) output with the candles they were computed from.
package indicators

import (
	"errors"

	"binance-strategy-bot-go/internal/models"
)

// ErrNotEnoughCandles is returned when a series is too short for an indicator's lookback.
var ErrNotEnoughCandles = errors.New("not enough candles")

// Field names shared by the built-in indicators.
const (
	FieldValue     = "value"
	FieldMACD      = "macd"
	FieldSignal    = "signal"
	FieldHistogram = "histogram"
	FieldMiddle    = "middle"
	FieldUpper     = "upper"
	FieldLower     = "lower"
)

// Value is one indicator record. Scalar indicators use FieldValue,
// composite ones (MACD, Bollinger Bands) carry several fields.
type Value struct {
	Timestamp int64
	Fields    map[string]float64
}

// Get returns the named field, or zero if it is missing.
func (v Value) Get(field string) float64 {
	return v.Fields[field]
}

// Scalar returns the FieldValue field.
func (v Value) Scalar() float64 {
	return v.Fields[FieldValue]
}

// Indicator computes a derived series from candle columns.
// The output is right-aligned: its last element belongs to the last candle,
// and it is shorter than the input by Lookback().
type Indicator interface {
	Name() string
	Lookback() int
	Compute(cols Columns) ([]Value, error)
}

// Columns is a candle series decomposed into parallel arrays.
type Columns struct {
	Timestamps []int64
	Open       []float64
	High       []float64
	Low        []float64
	Close      []float64
	Volume     []float64
}

// Len returns the number of rows.
func (c Columns) Len() int {
	return len(c.Timestamps)
}

// Decompose splits a candle series into columns.
func Decompose(series models.CandleSeries) Columns {
	n := series.Len()
	cols := Columns{
		Timestamps: make([]int64, n),
		Open:       make([]float64, n),
		High:       make([]float64, n),
		Low:        make([]float64, n),
		Close:      make([]float64, n),
		Volume:     make([]float64, n),
	}
	for i, c := range series.Candles {
		cols.Timestamps[i] = c.Timestamp
		cols.Open[i] = c.Open
		cols.High[i] = c.High
		cols.Low[i] = c.Low
		cols.Close[i] = c.Close
		cols.Volume[i] = c.Volume
	}
	return cols
}
