package indicators

import (
	"fmt"
	"time"

	"github.com/sdcoffey/big"
	"github.com/sdcoffey/techan"
)

// toTimeSeries builds a techan series from columns. Each candle's period runs
// until the next candle opens so techan accepts them in order.
func toTimeSeries(cols Columns) *techan.TimeSeries {
	series := techan.NewTimeSeries()
	n := cols.Len()
	for i := 0; i < n; i++ {
		var span time.Duration
		switch {
		case i+1 < n:
			span = time.Duration(cols.Timestamps[i+1]-cols.Timestamps[i]) * time.Millisecond
		case i > 0:
			span = time.Duration(cols.Timestamps[i]-cols.Timestamps[i-1]) * time.Millisecond
		}

		candle := techan.NewCandle(techan.NewTimePeriod(time.UnixMilli(cols.Timestamps[i]), span))
		candle.OpenPrice = big.NewDecimal(cols.Open[i])
		candle.MaxPrice = big.NewDecimal(cols.High[i])
		candle.MinPrice = big.NewDecimal(cols.Low[i])
		candle.ClosePrice = big.NewDecimal(cols.Close[i])
		candle.Volume = big.NewDecimal(cols.Volume[i])
		series.AddCandle(candle)
	}
	return series
}

// collect evaluates named techan indicators from index lookback onwards.
func collect(cols Columns, lookback int, fields map[string]techan.Indicator) []Value {
	n := cols.Len()
	if n <= lookback {
		return []Value{}
	}
	out := make([]Value, 0, n-lookback)
	for i := lookback; i < n; i++ {
		v := Value{Timestamp: cols.Timestamps[i], Fields: make(map[string]float64, len(fields))}
		for name, ind := range fields {
			v.Fields[name] = ind.Calculate(i).Float()
		}
		out = append(out, v)
	}
	return out
}

func checkPeriod(name string, periods ...int) error {
	for _, p := range periods {
		if p <= 0 {
			return fmt.Errorf("%s: period must be positive, got %d", name, p)
		}
	}
	return nil
}

// RSI is the relative strength index of closing prices.
type RSI struct {
	Period int
}

func (r RSI) Name() string  { return fmt.Sprintf("rsi_%d", r.Period) }
func (r RSI) Lookback() int { return r.Period }

func (r RSI) Compute(cols Columns) ([]Value, error) {
	if err := checkPeriod(r.Name(), r.Period); err != nil {
		return nil, err
	}
	closes := techan.NewClosePriceIndicator(toTimeSeries(cols))
	return collect(cols, r.Lookback(), map[string]techan.Indicator{
		FieldValue: techan.NewRelativeStrengthIndexIndicator(closes, r.Period),
	}), nil
}

// SMA is the simple moving average of closing prices.
type SMA struct {
	Period int
}

func (s SMA) Name() string  { return fmt.Sprintf("sma_%d", s.Period) }
func (s SMA) Lookback() int { return s.Period - 1 }

func (s SMA) Compute(cols Columns) ([]Value, error) {
	if err := checkPeriod(s.Name(), s.Period); err != nil {
		return nil, err
	}
	closes := techan.NewClosePriceIndicator(toTimeSeries(cols))
	return collect(cols, s.Lookback(), map[string]techan.Indicator{
		FieldValue: techan.NewSimpleMovingAverage(closes, s.Period),
	}), nil
}

// EMA is the exponential moving average of closing prices. The first
// evaluated index must be past the seed index for techan to seed the
// average with an SMA, hence a lookback of Period.
type EMA struct {
	Period int
}

func (e EMA) Name() string  { return fmt.Sprintf("ema_%d", e.Period) }
func (e EMA) Lookback() int { return e.Period }

func (e EMA) Compute(cols Columns) ([]Value, error) {
	if err := checkPeriod(e.Name(), e.Period); err != nil {
		return nil, err
	}
	closes := techan.NewClosePriceIndicator(toTimeSeries(cols))
	return collect(cols, e.Lookback(), map[string]techan.Indicator{
		FieldValue: techan.NewEMAIndicator(closes, e.Period),
	}), nil
}

// MACD reports the MACD line, its signal line and the histogram.
type MACD struct {
	Fast, Slow, Signal int
}

func (m MACD) Name() string  { return fmt.Sprintf("macd_%d_%d_%d", m.Fast, m.Slow, m.Signal) }
func (m MACD) Lookback() int { return m.Slow + m.Signal - 1 }

func (m MACD) Compute(cols Columns) ([]Value, error) {
	if err := checkPeriod(m.Name(), m.Fast, m.Slow, m.Signal); err != nil {
		return nil, err
	}
	if m.Fast >= m.Slow {
		return nil, fmt.Errorf("%s: fast period must be below slow period", m.Name())
	}
	closes := techan.NewClosePriceIndicator(toTimeSeries(cols))
	macd := techan.NewMACDIndicator(closes, m.Fast, m.Slow)
	return collect(cols, m.Lookback(), map[string]techan.Indicator{
		FieldMACD:      macd,
		FieldSignal:    techan.NewEMAIndicator(macd, m.Signal),
		FieldHistogram: techan.NewMACDHistogramIndicator(macd, m.Signal),
	}), nil
}

// BollingerBands reports the middle band (SMA) and the bands Sigma deviations away.
type BollingerBands struct {
	Period int
	Sigma  float64
}

func (b BollingerBands) Name() string  { return fmt.Sprintf("bb_%d_%g", b.Period, b.Sigma) }
func (b BollingerBands) Lookback() int { return b.Period - 1 }

func (b BollingerBands) Compute(cols Columns) ([]Value, error) {
	if err := checkPeriod(b.Name(), b.Period); err != nil {
		return nil, err
	}
	if b.Sigma <= 0 {
		return nil, fmt.Errorf("%s: sigma must be positive", b.Name())
	}
	closes := techan.NewClosePriceIndicator(toTimeSeries(cols))
	return collect(cols, b.Lookback(), map[string]techan.Indicator{
		FieldMiddle: techan.NewSimpleMovingAverage(closes, b.Period),
		FieldUpper:  techan.NewBollingerUpperBandIndicator(closes, b.Period, b.Sigma),
		FieldLower:  techan.NewBollingerLowerBandIndicator(closes, b.Period, b.Sigma),
	}), nil
}

// ATR is the average true range.
type ATR struct {
	Period int
}

func (a ATR) Name() string  { return fmt.Sprintf("atr_%d", a.Period) }
func (a ATR) Lookback() int { return a.Period }

func (a ATR) Compute(cols Columns) ([]Value, error) {
	if err := checkPeriod(a.Name(), a.Period); err != nil {
		return nil, err
	}
	return collect(cols, a.Lookback(), map[string]techan.Indicator{
		FieldValue: techan.NewAverageTrueRangeIndicator(toTimeSeries(cols), a.Period),
	}), nil
}
