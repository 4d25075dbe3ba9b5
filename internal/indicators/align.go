package indicators

import (
	"fmt"
	"sort"

	"binance-strategy-bot-go/internal/models"
)

// ComputeAligned runs one indicator over the series and drops the leading
// candles the indicator has no output for, so both results have equal length
// and index i refers to the same instant.
func ComputeAligned(series models.CandleSeries, ind Indicator) (models.CandleSeries, []Value, error) {
	out, err := ind.Compute(Decompose(series))
	if err != nil {
		return models.CandleSeries{}, nil, fmt.Errorf("compute %s: %w", ind.Name(), err)
	}
	if len(out) > series.Len() {
		return models.CandleSeries{}, nil, fmt.Errorf("%w: %s returned %d values for %d candles",
			models.ErrIndicatorAlignment, ind.Name(), len(out), series.Len())
	}

	aligned := series.TrimFront(series.Len() - len(out))
	if err := verify(ind.Name(), aligned, out); err != nil {
		return models.CandleSeries{}, nil, err
	}
	return aligned, out, nil
}

// Aligned is a candle series together with any number of indicator series,
// all of the same length.
type Aligned struct {
	Candles models.CandleSeries
	values  map[string][]Value
}

// Len returns the aligned length.
func (a Aligned) Len() int {
	return a.Candles.Len()
}

// Series returns the aligned output of the named indicator.
func (a Aligned) Series(name string) []Value {
	return a.values[name]
}

// At returns the named indicator value at index i.
func (a Aligned) At(name string, i int) (Value, bool) {
	s, ok := a.values[name]
	if !ok || i < 0 || i >= len(s) {
		return Value{}, false
	}
	return s[i], true
}

// Align computes every indicator against the untrimmed series and trims all
// of them to the shortest output. The call order of indicators does not matter.
func Align(series models.CandleSeries, inds ...Indicator) (Aligned, error) {
	if len(inds) == 0 {
		return Aligned{Candles: series.TrimFront(0), values: map[string][]Value{}}, nil
	}

	sorted := append([]Indicator(nil), inds...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Lookback() < sorted[j].Lookback() })

	cols := Decompose(series)
	outputs := make(map[string][]Value, len(sorted))
	maxDiff := 0
	for _, ind := range sorted {
		name := ind.Name()
		if _, dup := outputs[name]; dup {
			return Aligned{}, fmt.Errorf("%w: indicator %s given twice", models.ErrIndicatorAlignment, name)
		}
		out, err := ind.Compute(cols)
		if err != nil {
			return Aligned{}, fmt.Errorf("compute %s: %w", name, err)
		}
		if len(out) > series.Len() {
			return Aligned{}, fmt.Errorf("%w: %s returned %d values for %d candles",
				models.ErrIndicatorAlignment, name, len(out), series.Len())
		}
		outputs[name] = out
		if diff := series.Len() - len(out); diff > maxDiff {
			maxDiff = diff
		}
	}

	result := Aligned{Candles: series.TrimFront(maxDiff), values: make(map[string][]Value, len(outputs))}
	for name, out := range outputs {
		ownDiff := series.Len() - len(out)
		trimmed := out[maxDiff-ownDiff:]
		if err := verify(name, result.Candles, trimmed); err != nil {
			return Aligned{}, err
		}
		result.values[name] = trimmed
	}
	return result, nil
}

func verify(name string, candles models.CandleSeries, values []Value) error {
	if len(values) != candles.Len() {
		return fmt.Errorf("%w: %s has %d values for %d candles",
			models.ErrIndicatorAlignment, name, len(values), candles.Len())
	}
	for i, v := range values {
		if v.Timestamp != candles.Candles[i].Timestamp {
			return fmt.Errorf("%w: %s value %d is at %d, candle is at %d",
				models.ErrIndicatorAlignment, name, i, v.Timestamp, candles.Candles[i].Timestamp)
		}
	}
	return nil
}
