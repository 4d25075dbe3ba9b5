package strategy

import (
	"maps"

	"binance-strategy-bot-go/internal/models"
	"go.uber.org/zap"
)

// Confirmation configures the debounce buffer used by the AWAIT_* states.
type Confirmation struct {
	Count       int     // consecutive confirming observations required
	Lookback    int     // size of the observation buffer
	Probability float64 // share of confirming observations required within Lookback
}

// Machine holds the state shared by every strategy: the current state, the
// side preference and the confirmation buffer. Strategies embed it by value
// and only they or Acknowledge change its state.
type Machine struct {
	state   State
	side    Side
	confirm Confirmation
	logger  *zap.Logger

	pending      models.Direction
	observations []bool
	lastObserved int64
}

// NewMachine returns a machine in PENDING.
func NewMachine(side Side, confirm Confirmation) Machine {
	if confirm.Count <= 0 {
		confirm.Count = 1
	}
	if confirm.Lookback < confirm.Count {
		confirm.Lookback = confirm.Count
	}
	return Machine{state: StatePending, side: side, confirm: confirm, logger: zap.NewNop()}
}

// SetLogger makes the machine log its transitions to l at debug level.
func (m *Machine) SetLogger(l *zap.Logger) {
	if l != nil {
		m.logger = l
	}
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// Side returns the side preference.
func (m *Machine) Side() Side {
	return m.side
}

// Acknowledge applies a driver event. Events that are not legal in the
// current state leave it unchanged and return ErrInvalidTransition.
func (m *Machine) Acknowledge(e Event) error {
	to, err := next(m.state, e)
	if err != nil {
		m.logger.Debug("Event rejected", zap.String("event", string(e)), zap.String("state", string(m.state)))
		return err
	}
	m.logger.Debug("Event acknowledged",
		zap.String("event", string(e)),
		zap.String("from", string(m.state)),
		zap.String("to", string(to)))
	m.state = to
	if to == StatePending {
		m.resetConfirmation()
	}
	return nil
}

// Advance applies the rules every strategy shares and reports whether they
// decided this run. An entry signal is one-shot: the next run always moves
// to AWAIT_ORDER_FILLED. States owned by the driver are left alone.
func (m *Machine) Advance() bool {
	switch {
	case m.state.IsEntry():
		m.logger.Debug("Entry signal consumed", zap.String("from", string(m.state)))
		m.state = StateAwaitOrderFilled
		return true
	case m.state.driverOwned():
		return true
	}
	return false
}

// Enter signals an entry in direction d if the side preference allows it.
func (m *Machine) Enter(d models.Direction) bool {
	if !m.side.Allows(d) {
		m.logger.Debug("Entry rejected by side preference", zap.String("direction", string(d)), zap.String("side", string(m.side)))
		return false
	}
	m.logger.Debug("Entry signalled", zap.String("direction", string(d)))
	if d == models.Short {
		m.state = StateEnterShort
	} else {
		m.state = StateEnterLong
	}
	m.resetConfirmation()
	return true
}

// await moves into a debounce state for direction d with an empty buffer.
func (m *Machine) await(s State, d models.Direction) bool {
	if !m.side.Allows(d) {
		m.logger.Debug("Confirmation skipped by side preference", zap.String("direction", string(d)), zap.String("side", string(m.side)))
		return false
	}
	m.logger.Debug("Awaiting confirmation", zap.String("state", string(s)), zap.String("direction", string(d)))
	m.resetConfirmation()
	m.state = s
	m.pending = d
	return true
}

// abandon drops a pending debounce and returns to PENDING.
func (m *Machine) abandon() {
	m.logger.Debug("Confirmation abandoned",
		zap.String("state", string(m.state)),
		zap.String("direction", string(m.pending)),
		zap.Int("observations", len(m.observations)))
	m.state = StatePending
	m.resetConfirmation()
}

// observe records one confirmation observation for the candle at ts.
// Repeated observations of the same candle are ignored so a live driver
// polling faster than the timeframe does not fill the buffer early.
func (m *Machine) observe(ts int64, confirmed bool) {
	if len(m.observations) > 0 && ts == m.lastObserved {
		return
	}
	m.lastObserved = ts
	m.observations = append(m.observations, confirmed)
	if over := len(m.observations) - m.confirm.Lookback; over > 0 {
		m.observations = m.observations[over:]
	}
}

// consecutive returns the number of trailing confirming observations.
func (m *Machine) consecutive() int {
	n := 0
	for i := len(m.observations) - 1; i >= 0 && m.observations[i]; i-- {
		n++
	}
	return n
}

// confirmedShare returns confirming observations over the full lookback window.
func (m *Machine) confirmedShare() float64 {
	n := 0
	for _, ok := range m.observations {
		if ok {
			n++
		}
	}
	return float64(n) / float64(m.confirm.Lookback)
}

// bufferFull reports whether the buffer holds Lookback observations.
func (m *Machine) bufferFull() bool {
	return len(m.observations) >= m.confirm.Lookback
}

func (m *Machine) resetConfirmation() {
	m.pending = ""
	m.observations = nil
	m.lastObserved = 0
}

// result builds the immutable result of one run.
func (m *Machine) result(ts int64, custom map[string]any, context string) Result {
	return Result{State: m.state, Timestamp: ts, Custom: maps.Clone(custom), Context: context}
}
