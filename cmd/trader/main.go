package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"binance-strategy-bot-go/internal/binance"
	"binance-strategy-bot-go/internal/candles"
	"binance-strategy-bot-go/internal/config"
	"binance-strategy-bot-go/internal/database"
	"binance-strategy-bot-go/internal/live"
	"binance-strategy-bot-go/internal/logger"
	"binance-strategy-bot-go/internal/models"
	"binance-strategy-bot-go/internal/simulation"
	"binance-strategy-bot-go/internal/strategy"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	app := &cli.App{
		Name:  "trader",
		Usage: "backtest and run candle-driven strategies on Binance",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: "./configs", Usage: "directory holding config.yml"},
			&cli.StringFlag{Name: "symbol", Usage: "override assembler.symbol"},
			&cli.StringFlag{Name: "strategy", Usage: "override strategy.name (" + strings.Join(strategy.Names(), ", ") + ")"},
		},
		Commands: []*cli.Command{
			{
				Name:   "backtest",
				Usage:  "replay a strategy over candle history and print the summary",
				Flags:  []cli.Flag{&cli.BoolFlag{Name: "cached", Usage: "read candles from the local cache instead of Binance"}},
				Action: backtest,
			},
			{
				Name:   "fetch",
				Usage:  "download candle history into the local cache",
				Action: fetch,
			},
			{
				Name:   "live",
				Usage:  "run the strategy against the exchange until interrupted",
				Action: runLive,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env is what every command needs.
type env struct {
	cfg config.Config
	log *zap.Logger
}

func load(c *cli.Context) (*env, error) {
	// Load application configuration
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		return nil, fmt.Errorf("could not load config: %w", err)
	}
	if s := c.String("symbol"); s != "" {
		cfg.Assembler.Symbol = s
	}
	if s := c.String("strategy"); s != "" {
		cfg.Strategy.Name = s
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		return nil, err
	}
	log.Info("Configuration loaded",
		zap.String("symbol", cfg.Assembler.Symbol),
		zap.String("timeframe", cfg.Assembler.Timeframe),
		zap.String("strategy", cfg.Strategy.Name))
	return &env{cfg: cfg, log: log}, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(log *zap.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()
	return ctx, cancel
}

func (e *env) request() candles.Request {
	return candles.Request{
		Symbol:            e.cfg.Assembler.Symbol,
		Timeframe:         e.cfg.Assembler.Timeframe,
		CandlesPerRequest: e.cfg.Assembler.CandlesPerRequest,
		MaxPolls:          e.cfg.Assembler.MaxPolls,
	}
}

func (e *env) store() (*database.CandleStore, error) {
	db, err := database.NewDatabase(e.cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	return database.NewCandleStore(db), nil
}

func backtest(c *cli.Context) error {
	e, err := load(c)
	if err != nil {
		return err
	}
	defer e.log.Sync()

	s, err := strategy.New(e.cfg.Strategy, e.log)
	if err != nil {
		return err
	}

	var series models.CandleSeries
	if c.Bool("cached") {
		store, err := e.store()
		if err != nil {
			return err
		}
		if series, err = store.LoadSeries(e.cfg.Assembler.Symbol, e.cfg.Assembler.Timeframe, 0); err != nil {
			return err
		}
	} else {
		ctx, cancel := signalContext(e.log)
		defer cancel()
		client := binance.NewRestClient(&e.cfg.Binance, e.log)
		if series, err = candles.NewAssembler(client, e.log).Assemble(ctx, e.request()); err != nil {
			return err
		}
	}

	summary, err := simulation.NewEngine(e.cfg.Simulation, e.log).Run(s, series)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

func fetch(c *cli.Context) error {
	e, err := load(c)
	if err != nil {
		return err
	}
	defer e.log.Sync()

	store, err := e.store()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(e.log)
	defer cancel()

	client := binance.NewRestClient(&e.cfg.Binance, e.log)
	series, err := candles.NewAssembler(client, e.log).Assemble(ctx, e.request())
	if err != nil {
		return err
	}
	n, err := store.SaveSeries(series)
	if err != nil {
		return err
	}
	total, err := store.Count(series.Symbol, series.Timeframe)
	if err != nil {
		return err
	}
	e.log.Info("Candles cached",
		zap.Int("candles", n),
		zap.Int64("cached_total", total),
		zap.String("dsn", e.cfg.Database.DSN))
	return nil
}

func runLive(c *cli.Context) error {
	e, err := load(c)
	if err != nil {
		return err
	}
	defer e.log.Sync()

	s, err := strategy.New(e.cfg.Strategy, e.log)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(e.log)
	defer cancel()

	// Initialize Binance REST client
	client := binance.NewRestClient(&e.cfg.Binance, e.log)
	if _, err := client.GetServerTime(ctx); err != nil {
		return fmt.Errorf("failed to connect to Binance API: %w", err)
	}
	e.log.Info("Successfully connected to Binance API.")

	var executor binance.OrderExecutor = client
	if e.cfg.Live.DryRun {
		e.log.Warn("Dry run enabled. Orders are filled in memory.")
		executor = binance.NewPaperExecutor(client, e.log)
	}

	driver, err := live.NewDriver(&e.cfg, s, client, executor, live.NewLogNotifier(e.log), e.log)
	if err != nil {
		return err
	}
	driver.Run(ctx)

	e.log.Info("Bot has been shut down.")
	return nil
}
