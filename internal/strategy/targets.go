package strategy

import "binance-strategy-bot-go/internal/models"

// CalculateLongProfitTarget returns entry + entry*pct.
func CalculateLongProfitTarget(entry, pct float64) float64 {
	return entry + entry*pct
}

// CalculateShortProfitTarget returns entry - entry*pct.
func CalculateShortProfitTarget(entry, pct float64) float64 {
	return entry - entry*pct
}

// CalculateLongStopTarget returns entry - entry*pct.
func CalculateLongStopTarget(entry, pct float64) float64 {
	return entry - entry*pct
}

// CalculateShortStopTarget returns entry + entry*pct.
func CalculateShortStopTarget(entry, pct float64) float64 {
	return entry + entry*pct
}

// ProfitTarget dispatches on the trade direction.
func ProfitTarget(d models.Direction, entry, pct float64) float64 {
	if d == models.Short {
		return CalculateShortProfitTarget(entry, pct)
	}
	return CalculateLongProfitTarget(entry, pct)
}

// StopTarget dispatches on the trade direction. A zero pct disables the stop
// and returns zero.
func StopTarget(d models.Direction, entry, pct float64) float64 {
	if pct <= 0 {
		return 0
	}
	if d == models.Short {
		return CalculateShortStopTarget(entry, pct)
	}
	return CalculateLongStopTarget(entry, pct)
}

// ProfitHit reports whether a bar with the given extremes reaches the profit target.
func ProfitHit(d models.Direction, target, high, low float64) bool {
	if d == models.Short {
		return low <= target
	}
	return high >= target
}

// StopHit reports whether a bar with the given extremes reaches the stop target.
// A zero target never triggers.
func StopHit(d models.Direction, target, high, low float64) bool {
	if target <= 0 {
		return false
	}
	if d == models.Short {
		return high >= target
	}
	return low <= target
}
