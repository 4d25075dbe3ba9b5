package models

import "errors"

var (
	// ErrUnsupportedCapability is returned when a data source lacks a required feature.
	ErrUnsupportedCapability = errors.New("unsupported capability")
	// ErrInvalidConfiguration is returned for missing or invalid parameters.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrIndicatorAlignment is returned when indicator output cannot be aligned with its candles.
	ErrIndicatorAlignment = errors.New("indicator alignment")
	// ErrSimulationIncomplete is returned when a replay produces no trades.
	ErrSimulationIncomplete = errors.New("simulation produced no trades")
	// ErrInvalidTransition is returned when a driver event is not legal in the current state.
	ErrInvalidTransition = errors.New("invalid state transition")
)
