package config

import (
	"os"
	"path/filepath"
	"testing"

	"binance-strategy-bot-go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
assembler:
  symbol: ETHUSDT
  timeframe: 5m
strategy:
  name: macd
  fast_period: 12
  slow_period: 26
  signal_period: 9
  confirmation:
    count: 2
simulation:
  amount: 0.5
  profit_pct: 0.02
  stop_pct: 0.01
`

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(body), 0o600))
}

func TestLoadConfig(t *testing.T) {
	t.Run("File values and defaults", func(t *testing.T) {
		// Arrange
		dir := t.TempDir()
		writeConfig(t, dir, testConfig)

		// Act
		cfg, err := LoadConfig(dir)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "ETHUSDT", cfg.Assembler.Symbol)
		assert.Equal(t, "5m", cfg.Assembler.Timeframe)
		assert.Equal(t, 500, cfg.Assembler.CandlesPerRequest)
		assert.Equal(t, 4, cfg.Assembler.MaxPolls)
		assert.Equal(t, "macd", cfg.Strategy.Name)
		assert.Equal(t, "biDirectional", cfg.Strategy.Side)
		assert.Equal(t, 2, cfg.Strategy.Confirmation.Count)
		assert.Equal(t, 5, cfg.Strategy.Confirmation.Lookback)
		assert.InDelta(t, 0.6, cfg.Strategy.Confirmation.Probability, 1e-9)
		assert.InDelta(t, 0.02, cfg.Simulation.ProfitPct, 1e-9)
		assert.Equal(t, float64(20), cfg.Binance.RateLimit)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("Dotenv overrides file", func(t *testing.T) {
		// Arrange
		dir := t.TempDir()
		writeConfig(t, dir, testConfig)
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ASSEMBLER_SYMBOL=SOLUSDT\n"), 0o600))
		t.Cleanup(func() { os.Unsetenv("ASSEMBLER_SYMBOL") })

		// Act
		cfg, err := LoadConfig(dir)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "SOLUSDT", cfg.Assembler.Symbol)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := LoadConfig(t.TempDir())
		assert.Error(t, err)
	})
}

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Assembler:  Assembler{Symbol: "BTCUSDT", Timeframe: "1h", CandlesPerRequest: 100, MaxPolls: 2},
			Strategy:   Strategy{Name: "rsi"},
			Simulation: Simulation{Amount: 1, ProfitPct: 0.01},
		}
	}

	testCases := []struct {
		name   string
		mutate func(c *Config)
		key    string
	}{
		{name: "Missing symbol", mutate: func(c *Config) { c.Assembler.Symbol = "" }, key: "assembler.symbol"},
		{name: "Zero polls", mutate: func(c *Config) { c.Assembler.MaxPolls = 0 }, key: "assembler.max_polls"},
		{name: "Missing strategy", mutate: func(c *Config) { c.Strategy.Name = "" }, key: "strategy.name"},
		{name: "Zero profit", mutate: func(c *Config) { c.Simulation.ProfitPct = 0 }, key: "simulation.profit_pct"},
		{name: "Negative stop", mutate: func(c *Config) { c.Simulation.StopPct = -1 }, key: "simulation.stop_pct"},
	}

	assert.NoError(t, valid().Validate())
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)

			err := cfg.Validate()

			assert.ErrorIs(t, err, models.ErrInvalidConfiguration)
			assert.Contains(t, err.Error(), tc.key)
		})
	}
}
