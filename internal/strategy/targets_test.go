package strategy

import (
	"testing"

	"binance-strategy-bot-go/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestTargetMath(t *testing.T) {
	testCases := []struct {
		name string
		fn   func(entry, pct float64) float64
		pct  float64
		want float64
	}{
		{"long profit", CalculateLongProfitTarget, 0.05, 105},
		{"short profit", CalculateShortProfitTarget, 0.05, 95},
		{"long stop", CalculateLongStopTarget, 0.02, 98},
		{"short stop", CalculateShortStopTarget, 0.02, 102},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.fn(100, tc.pct))
		})
	}
}

func TestTargetsByDirection(t *testing.T) {
	assert.Equal(t, 105.0, ProfitTarget(models.Long, 100, 0.05))
	assert.Equal(t, 95.0, ProfitTarget(models.Short, 100, 0.05))
	assert.Equal(t, 98.0, StopTarget(models.Long, 100, 0.02))
	assert.Equal(t, 102.0, StopTarget(models.Short, 100, 0.02))
	assert.Zero(t, StopTarget(models.Long, 100, 0))
}

func TestHits(t *testing.T) {
	testCases := []struct {
		name      string
		direction models.Direction
		high, low float64
		profit    bool
		stop      bool
	}{
		{"long neither", models.Long, 104, 99, false, false},
		{"long profit", models.Long, 105, 99, true, false},
		{"long stop", models.Long, 101, 98, false, true},
		{"long both", models.Long, 106, 97, true, true},
		{"short neither", models.Short, 101, 96, false, false},
		{"short profit", models.Short, 101, 95, true, false},
		{"short stop", models.Short, 102, 99, false, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			profitTarget := ProfitTarget(tc.direction, 100, 0.05)
			stopTarget := StopTarget(tc.direction, 100, 0.02)

			assert.Equal(t, tc.profit, ProfitHit(tc.direction, profitTarget, tc.high, tc.low))
			assert.Equal(t, tc.stop, StopHit(tc.direction, stopTarget, tc.high, tc.low))
		})
	}

	t.Run("disabled stop never hits", func(t *testing.T) {
		assert.False(t, StopHit(models.Long, 0, 1000, 0))
		assert.False(t, StopHit(models.Short, 0, 1000, 0))
	})
}
