package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"binance-strategy-bot-go/internal/models"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Binance    Binance    `mapstructure:"binance"`
	Assembler  Assembler  `mapstructure:"assembler"`
	Strategy   Strategy   `mapstructure:"strategy"`
	Simulation Simulation `mapstructure:"simulation"`
	Live       Live       `mapstructure:"live"`
	Logger     Logger     `mapstructure:"logger"`
	Database   Database   `mapstructure:"database"`
}

// Binance holds the configuration for the Binance API.
type Binance struct {
	ApiKey         string  `mapstructure:"apiKey"`
	SecretKey      string  `mapstructure:"secretKey"`
	Testnet        bool    `mapstructure:"testnet"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Assembler holds the candle history download parameters.
type Assembler struct {
	Symbol            string `mapstructure:"symbol"`
	Timeframe         string `mapstructure:"timeframe"`
	CandlesPerRequest int    `mapstructure:"candles_per_request"`
	MaxPolls          int    `mapstructure:"max_polls"`
}

// Strategy selects a strategy and holds its parameters.
// Not every field is used by every strategy.
type Strategy struct {
	Name string `mapstructure:"name"`
	Side string `mapstructure:"side"` // long, short or biDirectional

	Period     int     `mapstructure:"period"`
	FastPeriod int     `mapstructure:"fast_period"`
	SlowPeriod int     `mapstructure:"slow_period"`
	SignalLen  int     `mapstructure:"signal_period"`
	Overbought float64 `mapstructure:"overbought"`
	Oversold   float64 `mapstructure:"oversold"`
	Sigma      float64 `mapstructure:"sigma"`
	SpreadPct  float64 `mapstructure:"spread_pct"`

	Confirmation Confirmation `mapstructure:"confirmation"`
}

// Confirmation configures the debounce used before committing to an entry.
type Confirmation struct {
	Count       int     `mapstructure:"count"`
	Lookback    int     `mapstructure:"lookback"`
	Probability float64 `mapstructure:"probability"`
}

// Simulation holds the backtest parameters.
type Simulation struct {
	Amount    float64 `mapstructure:"amount"`
	ProfitPct float64 `mapstructure:"profit_pct"`
	StopPct   float64 `mapstructure:"stop_pct"`
	Compound  bool    `mapstructure:"compound"`
}

// Live holds the configuration for the wall-clock driver.
type Live struct {
	TickInterval   int  `mapstructure:"tick_interval"`
	DryRun         bool `mapstructure:"dry_run"`
	HistoryCandles int  `mapstructure:"history_candles"`
}

// Database holds the configuration for the candle cache.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration from file or environment variables.
// A .env file next to the config file is loaded first if present.
func LoadConfig(path string) (config Config, err error) {
	if err = godotenv.Load(filepath.Join(path, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config") // name of config file (without extension)
	v.SetConfigType("yml")

	// Allow environment variables to override config file
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err = v.ReadInConfig(); err != nil {
		return config, err
	}

	err = v.Unmarshal(&config)
	return
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("binance.rate_limit", 20)      // requests per second
	v.SetDefault("binance.rate_limit_burst", 5) // burst size

	v.SetDefault("assembler.timeframe", "1h")
	v.SetDefault("assembler.candles_per_request", 500)
	v.SetDefault("assembler.max_polls", 4)

	v.SetDefault("strategy.side", "biDirectional")
	v.SetDefault("strategy.confirmation.count", 3)
	v.SetDefault("strategy.confirmation.lookback", 5)
	v.SetDefault("strategy.confirmation.probability", 0.6)

	v.SetDefault("simulation.amount", 1)
	v.SetDefault("simulation.profit_pct", 0.01)

	v.SetDefault("live.tick_interval", 60)
	v.SetDefault("live.dry_run", true)
	v.SetDefault("live.history_candles", 200)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("database.dsn", "candles.db")
}

// Validate checks the settings that every command relies on.
func (c Config) Validate() error {
	switch {
	case c.Assembler.Symbol == "":
		return invalid("assembler.symbol", "must be set")
	case c.Assembler.Timeframe == "":
		return invalid("assembler.timeframe", "must be set")
	case c.Assembler.CandlesPerRequest <= 0:
		return invalid("assembler.candles_per_request", "must be positive")
	case c.Assembler.MaxPolls <= 0:
		return invalid("assembler.max_polls", "must be positive")
	case c.Strategy.Name == "":
		return invalid("strategy.name", "must be set")
	case c.Simulation.Amount <= 0:
		return invalid("simulation.amount", "must be positive")
	case c.Simulation.ProfitPct <= 0:
		return invalid("simulation.profit_pct", "must be positive")
	case c.Simulation.StopPct < 0:
		return invalid("simulation.stop_pct", "must not be negative")
	}
	return nil
}

func invalid(key, reason string) error {
	return fmt.Errorf("%w: %s %s", models.ErrInvalidConfiguration, key, reason)
}
