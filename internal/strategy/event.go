package strategy

import (
	"fmt"

	"binance-strategy-bot-go/internal/models"
)

// Event is a driver acknowledgement of something that happened outside the
// strategy, such as an order being placed or a target being hit.
type Event string

const (
	EventOrderPlaced   Event = "ORDER_PLACED"
	EventOrderFilled   Event = "ORDER_FILLED"
	EventProfitTaken   Event = "PROFIT_TAKEN"
	EventStopTriggered Event = "STOP_TRIGGERED"
	EventTradeClosed   Event = "TRADE_CLOSED"
	EventAbort         Event = "ABORT"
)

type transition struct {
	from []State
	to   State
}

var transitions = map[Event]transition{
	EventOrderPlaced:   {from: []State{StateEnterLong, StateEnterShort}, to: StateAwaitOrderFilled},
	EventOrderFilled:   {from: []State{StateAwaitOrderFilled}, to: StateAwaitTakeProfit},
	EventProfitTaken:   {from: []State{StateAwaitTakeProfit}, to: StateTakeProfit},
	EventStopTriggered: {from: []State{StateAwaitTakeProfit}, to: StateStopLossTriggered},
	EventTradeClosed:   {from: []State{StateTakeProfit, StateStopLossTriggered}, to: StatePending},
	EventAbort: {
		from: []State{
			StatePending, StateEnterLong, StateEnterShort, StateAwaitOrderFilled, StateAwaitTakeProfit,
			StateAwaitCrossUp, StateAwaitCrossDown, StateAwaitConfirmation,
		},
		to: StatePending,
	},
}

// next returns the state reached by applying e in state from.
func next(from State, e Event) (State, error) {
	t, ok := transitions[e]
	if !ok {
		return from, fmt.Errorf("%w: unknown event %q", models.ErrInvalidTransition, e)
	}
	for _, s := range t.from {
		if s == from {
			return t.to, nil
		}
	}
	return from, fmt.Errorf("%w: %s in state %s", models.ErrInvalidTransition, e, from)
}
