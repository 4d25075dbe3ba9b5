package strategy

import (
	"errors"
	"fmt"

	"binance-strategy-bot-go/internal/indicators"
	"binance-strategy-bot-go/internal/models"
	"go.uber.org/zap"
)

// ErrNotSetUp is returned by Run before a successful Setup.
var ErrNotSetUp = errors.New("strategy is not set up")

// Strategy turns aligned candles and indicators into state transitions.
// Drivers call Setup with fresh candles, then Run once per candle (replay)
// or per tick (live), and report what they did through Acknowledge.
type Strategy interface {
	// Name returns the unique name of the strategy.
	Name() string

	// Setup computes the indicators the strategy needs and aligns the series
	// with them. It keeps the current state.
	Setup(series models.CandleSeries) error

	// Candles returns the series aligned by the last Setup.
	Candles() models.CandleSeries

	// Run evaluates the candle at index when isReplay is set, otherwise the
	// most recent one. tickerPrice is the live price and may be zero.
	Run(index int, isReplay bool, tickerPrice float64) (Result, error)

	// State returns the current state.
	State() State

	// Acknowledge applies a driver event to the state machine.
	Acknowledge(event Event) error
}

// base carries what every concrete strategy needs besides its own rules.
type base struct {
	Machine
	name       string
	indicators []indicators.Indicator
	aligned    indicators.Aligned
	ready      bool
}

func newBase(name string, side Side, confirm Confirmation, inds ...indicators.Indicator) base {
	return base{Machine: NewMachine(side, confirm), name: name, indicators: inds}
}

func (b *base) Name() string {
	return b.name
}

func (b *base) Candles() models.CandleSeries {
	return b.aligned.Candles
}

func (b *base) Setup(series models.CandleSeries) error {
	aligned, err := indicators.Align(series, b.indicators...)
	if err != nil {
		return fmt.Errorf("%s setup: %w", b.name, err)
	}
	if aligned.Len() == 0 {
		return fmt.Errorf("%s setup: %w: got %d candles, lookback is %d",
			b.name, indicators.ErrNotEnoughCandles, series.Len(), b.lookback())
	}
	b.aligned = aligned
	b.ready = true
	b.logger.Debug("Strategy set up",
		zap.Int("candles", series.Len()),
		zap.Int("aligned", aligned.Len()),
		zap.String("state", string(b.state)))
	return nil
}

func (b *base) lookback() int {
	longest := 0
	for _, ind := range b.indicators {
		if l := ind.Lookback(); l > longest {
			longest = l
		}
	}
	return longest
}

// position resolves the aligned index a run evaluates.
func (b *base) position(index int, isReplay bool) (int, error) {
	if !b.ready {
		return 0, fmt.Errorf("%s: %w", b.name, ErrNotSetUp)
	}
	if !isReplay {
		return b.aligned.Len() - 1, nil
	}
	if index < 0 || index >= b.aligned.Len() {
		return 0, fmt.Errorf("%s: index %d out of range [0, %d)", b.name, index, b.aligned.Len())
	}
	return index, nil
}

func (b *base) candle(i int) models.Candle {
	return b.aligned.Candles.Candles[i]
}

// value returns indicator ind at aligned index i. Setup guarantees presence.
func (b *base) value(ind indicators.Indicator, i int) indicators.Value {
	v, _ := b.aligned.At(ind.Name(), i)
	return v
}

// price is the live ticker price when available, otherwise the close of candle i.
func (b *base) price(i int, isReplay bool, tickerPrice float64) float64 {
	if !isReplay && tickerPrice > 0 {
		return tickerPrice
	}
	return b.candle(i).Close
}
