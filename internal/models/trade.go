package models

// Direction is the side of a position.
type Direction string

const (
	Long  Direction = "long"
	Short Direction = "short"
)

// EntrySide returns the order side that opens a position in this direction.
func (d Direction) EntrySide() OrderSide {
	if d == Short {
		return OrderSideSell
	}
	return OrderSideBuy
}

// ExitSide returns the order side that closes a position in this direction.
func (d Direction) ExitSide() OrderSide {
	if d == Short {
		return OrderSideBuy
	}
	return OrderSideSell
}

// TradeRecord tracks one open-to-close trade cycle.
// It is created on entry, updated while the position waits for its targets
// and finalized when the exit order is set.
type TradeRecord struct {
	EntryTimestamp int64     `json:"entry_timestamp"`
	ExitTimestamp  *int64    `json:"exit_timestamp,omitempty"`
	EntryOrder     Order     `json:"entry_order"`
	ExitOrder      *Order    `json:"exit_order,omitempty"`
	Direction      Direction `json:"direction"`
	ProfitTarget   float64   `json:"profit_target"`
	StopTarget     float64   `json:"stop_target,omitempty"`
	StopTriggered  bool      `json:"stop_triggered"`
	TotalBars      int       `json:"total_bars"`
	Funds          float64   `json:"funds"`
	Amount         float64   `json:"amount"`
}

// IsClosed reports whether the trade has an exit order.
func (t *TradeRecord) IsClosed() bool {
	return t.ExitOrder != nil
}

// Close finalizes the trade with its exit order.
func (t *TradeRecord) Close(exit Order, bars int, stopTriggered bool) {
	ts := exit.Timestamp
	t.ExitOrder = &exit
	t.ExitTimestamp = &ts
	t.TotalBars = bars
	t.StopTriggered = stopTriggered
}

// Profit is the realized quote profit of a closed trade, zero while open.
func (t *TradeRecord) Profit() float64 {
	if !t.IsClosed() {
		return 0
	}
	diff := t.ExitOrder.Price - t.EntryOrder.Price
	if t.Direction == Short {
		diff = -diff
	}
	return diff * t.Amount
}

// ProfitBase is the realized profit expressed in base units at the exit price.
func (t *TradeRecord) ProfitBase() float64 {
	if !t.IsClosed() || t.ExitOrder.Price == 0 {
		return 0
	}
	return t.Profit() / t.ExitOrder.Price
}

// ExitFunds is the quote balance after the trade closes.
func (t *TradeRecord) ExitFunds() float64 {
	return t.Funds + t.Profit()
}
