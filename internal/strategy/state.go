package strategy

import (
	"fmt"

	"binance-strategy-bot-go/internal/models"
)

// State is the position of a strategy in the shared trading state machine.
type State string

const (
	StatePending            State = "PENDING"
	StateEnterLong          State = "ENTER_LONG"
	StateEnterShort         State = "ENTER_SHORT"
	StateAwaitOrderFilled   State = "AWAIT_ORDER_FILLED"
	StateAwaitTakeProfit    State = "AWAIT_TAKE_PROFIT"
	StateTakeProfit         State = "TAKE_PROFIT"
	StateStopLossTriggered  State = "STOP_LOSS_TRIGGERED"
	StateAwaitCrossUp       State = "AWAIT_CROSS_UP"
	StateAwaitCrossDown     State = "AWAIT_CROSS_DOWN"
	StateAwaitConfirmation  State = "AWAIT_CONFIRMATION"
	StateTrendUp            State = "TREND_UP"
	StateTrendDown          State = "TREND_DOWN"
	StateTriggerAlert       State = "TRIGGER_ALERT"
	StateContextIndependent State = "CONTEXT_INDEPENDENT"
)

var allStates = []State{
	StatePending,
	StateEnterLong,
	StateEnterShort,
	StateAwaitOrderFilled,
	StateAwaitTakeProfit,
	StateTakeProfit,
	StateStopLossTriggered,
	StateAwaitCrossUp,
	StateAwaitCrossDown,
	StateAwaitConfirmation,
	StateTrendUp,
	StateTrendDown,
	StateTriggerAlert,
	StateContextIndependent,
}

// States returns every state in declaration order.
func States() []State {
	return append([]State(nil), allStates...)
}

// Valid reports whether s is one of the declared states.
func (s State) Valid() bool {
	for _, known := range allStates {
		if s == known {
			return true
		}
	}
	return false
}

func (s State) String() string {
	return string(s)
}

// ParseState converts a state name into a State.
func ParseState(name string) (State, error) {
	s := State(name)
	if !s.Valid() {
		return "", fmt.Errorf("unknown strategy state %q", name)
	}
	return s, nil
}

// IsEntry reports whether s asks the driver to open a position.
func (s State) IsEntry() bool {
	return s == StateEnterLong || s == StateEnterShort
}

// Direction returns the position direction of an entry state.
func (s State) Direction() (models.Direction, bool) {
	switch s {
	case StateEnterLong:
		return models.Long, true
	case StateEnterShort:
		return models.Short, true
	}
	return "", false
}

// driverOwned reports whether only driver events may move the machine out of s.
func (s State) driverOwned() bool {
	switch s {
	case StateAwaitOrderFilled, StateAwaitTakeProfit, StateTakeProfit, StateStopLossTriggered:
		return true
	}
	return false
}

// Side restricts which entries a strategy may signal.
type Side string

const (
	SideLong          Side = "long"
	SideShort         Side = "short"
	SideBiDirectional Side = "biDirectional"
)

// ParseSide converts a side preference name. An empty name means biDirectional.
func ParseSide(name string) (Side, error) {
	switch Side(name) {
	case "", SideBiDirectional:
		return SideBiDirectional, nil
	case SideLong, SideShort:
		return Side(name), nil
	}
	return "", fmt.Errorf("%w: unknown side %q", models.ErrInvalidConfiguration, name)
}

// Allows reports whether the side preference permits entering in direction d.
func (s Side) Allows(d models.Direction) bool {
	switch s {
	case SideLong:
		return d == models.Long
	case SideShort:
		return d == models.Short
	}
	return true
}
