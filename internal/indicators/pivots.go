package indicators

import (
	"strconv"

	"github.com/sdcoffey/big"

	"binance-strategy-bot-go/internal/models"
)

// Pivots holds Woodie's pivot point with two support and two resistance levels.
type Pivots struct {
	Pivot float64
	R1    float64
	R2    float64
	S1    float64
	S2    float64
}

// WoodiePivots computes Woodie's pivots from one candle:
//
//	P  = (H + L + 2C) / 4
//	R1 = 2P - L
//	R2 = P + H - L
//	S1 = 2P - H
//	S2 = P - (H - L)
func WoodiePivots(c models.Candle) Pivots {
	high, low, closePrice := decimal(c.High), decimal(c.Low), decimal(c.Close)
	two := big.NewFromInt(2)

	p := high.Add(low).Add(closePrice.Mul(two)).Div(big.NewFromInt(4))
	rng := high.Sub(low)

	return Pivots{
		Pivot: p.Float(),
		R1:    p.Mul(two).Sub(low).Float(),
		R2:    p.Add(rng).Float(),
		S1:    p.Mul(two).Sub(high).Float(),
		S2:    p.Sub(rng).Float(),
	}
}

func decimal(f float64) big.Decimal {
	return big.NewFromString(strconv.FormatFloat(f, 'f', -1, 64))
}

// Pivot fields emitted by WoodiePivotPoints.
const (
	FieldPivot = "pivot"
	FieldR1    = "r1"
	FieldR2    = "r2"
	FieldS1    = "s1"
	FieldS2    = "s2"
)

// WoodiePivotPoints is an Indicator whose value at candle i holds the pivots
// of candle i-1.
type WoodiePivotPoints struct{}

func (WoodiePivotPoints) Name() string  { return "woodie_pivots" }
func (WoodiePivotPoints) Lookback() int { return 1 }

func (WoodiePivotPoints) Compute(cols Columns) ([]Value, error) {
	n := cols.Len()
	if n <= 1 {
		return []Value{}, nil
	}
	out := make([]Value, 0, n-1)
	for i := 1; i < n; i++ {
		p := WoodiePivots(models.Candle{
			Timestamp: cols.Timestamps[i-1],
			Open:      cols.Open[i-1],
			High:      cols.High[i-1],
			Low:       cols.Low[i-1],
			Close:     cols.Close[i-1],
		})
		out = append(out, Value{Timestamp: cols.Timestamps[i], Fields: map[string]float64{
			FieldPivot: p.Pivot,
			FieldR1:    p.R1,
			FieldR2:    p.R2,
			FieldS1:    p.S1,
			FieldS2:    p.S2,
		}})
	}
	return out, nil
}
