package live

import (
	"context"
	"errors"
	"testing"
	"time"

	"binance-strategy-bot-go/internal/binance"
	"binance-strategy-bot-go/internal/config"
	"binance-strategy-bot-go/internal/models"
	"binance-strategy-bot-go/internal/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const hour = int64(3_600_000)

var fixedNow = time.UnixMilli(1000 * hour)

// MockSource is a mock implementation of candles.Source.
type MockSource struct {
	mock.Mock
}

func (m *MockSource) Has(capability string) bool {
	return m.Called(capability).Bool(0)
}

func (m *MockSource) FetchOHLCVSince(ctx context.Context, symbol, timeframe string, since int64) ([]models.Candle, error) {
	args := m.Called(ctx, symbol, timeframe, since)
	return args.Get(0).([]models.Candle), args.Error(1)
}

func (m *MockSource) WaitForRateLimit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockSource) ParseToEpoch(t time.Time) int64 {
	return t.UnixMilli()
}

// MockExecutor is a mock implementation of binance.OrderExecutor.
type MockExecutor struct {
	mock.Mock
}

func (m *MockExecutor) CreateOrder(ctx context.Context, req binance.OrderRequest) (models.Order, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(models.Order), args.Error(1)
}

func (m *MockExecutor) GetOrder(ctx context.Context, symbol, id string) (models.Order, error) {
	args := m.Called(ctx, symbol, id)
	return args.Get(0).(models.Order), args.Error(1)
}

func (m *MockExecutor) GetTickerPrice(ctx context.Context, symbol string) (float64, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(float64), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, symbol string, res strategy.Result) error {
	return m.Called(ctx, symbol, res).Error(0)
}

// scripted enters or alerts on fixed run numbers and otherwise follows the shared machine.
type scripted struct {
	strategy.Machine
	enterOn map[int]models.Direction
	alertOn map[int]string
	runs    int
	candles models.CandleSeries
}

func newScripted() *scripted {
	return &scripted{
		Machine: strategy.NewMachine(strategy.SideBiDirectional, strategy.Confirmation{}),
		enterOn: map[int]models.Direction{},
		alertOn: map[int]string{},
	}
}

func (s *scripted) Name() string                { return "scripted" }
func (s *scripted) Candles() models.CandleSeries { return s.candles }

func (s *scripted) Setup(series models.CandleSeries) error {
	s.candles = series
	return nil
}

func (s *scripted) Run(_ int, _ bool, _ float64) (strategy.Result, error) {
	s.runs++
	if !s.Advance() && s.State() == strategy.StatePending {
		if d, ok := s.enterOn[s.runs]; ok {
			s.Enter(d)
		}
		if msg, ok := s.alertOn[s.runs]; ok {
			return strategy.Result{State: strategy.StateTriggerAlert, Context: msg}, nil
		}
	}
	return strategy.Result{State: s.State()}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Assembler:  config.Assembler{Symbol: "BTCUSDT", Timeframe: "1h"},
		Live:       config.Live{TickInterval: 60, HistoryCandles: 10},
		Simulation: config.Simulation{Amount: 1, ProfitPct: 0.05, StopPct: 0.05},
	}
}

type fixture struct {
	driver   *Driver
	strategy *scripted
	source   *MockSource
	executor *MockExecutor
	notifier *MockNotifier
}

func setup(t *testing.T) fixture {
	f := fixture{
		strategy: newScripted(),
		source:   new(MockSource),
		executor: new(MockExecutor),
		notifier: new(MockNotifier),
	}
	d, err := NewDriver(testConfig(), f.strategy, f.source, f.executor, f.notifier, zap.NewNop())
	require.NoError(t, err)
	d.now = func() time.Time { return fixedNow }
	f.driver = d

	since := fixedNow.UnixMilli() - 10*hour
	f.source.On("FetchOHLCVSince", mock.Anything, "BTCUSDT", "1h", since).
		Return([]models.Candle{{Timestamp: 999 * hour, Close: 99}}, nil)
	return f
}

func order(id string, status models.OrderStatus, side models.OrderSide, price float64) models.Order {
	return models.Order{ID: id, Status: status, Symbol: "BTCUSDT", Side: side, Price: price, Amount: 1}
}

func TestDriver_TradeLifecycle(t *testing.T) {
	// Arrange
	f := setup(t)
	ctx := context.Background()
	f.strategy.enterOn[1] = models.Long

	for _, p := range []float64{100, 100, 103, 106, 106} {
		f.executor.On("GetTickerPrice", mock.Anything, "BTCUSDT").Return(p, nil).Once()
	}
	f.executor.On("CreateOrder", mock.Anything, binance.OrderRequest{
		Symbol: "BTCUSDT", Side: models.OrderSideBuy, Type: models.OrderTypeLimit, Amount: 1, Price: 100,
	}).Return(order("1", models.OrderStatusOpen, models.OrderSideBuy, 100), nil).Once()
	f.executor.On("GetOrder", mock.Anything, "BTCUSDT", "1").
		Return(order("1", models.OrderStatusClosed, models.OrderSideBuy, 100), nil).Once()
	f.executor.On("CreateOrder", mock.Anything, binance.OrderRequest{
		Symbol: "BTCUSDT", Side: models.OrderSideSell, Type: models.OrderTypeMarket, Amount: 1,
	}).Return(order("2", models.OrderStatusClosed, models.OrderSideSell, 106), nil).Once()

	// Act and Assert
	want := []strategy.State{
		strategy.StateAwaitOrderFilled,
		strategy.StateAwaitTakeProfit,
		strategy.StateAwaitTakeProfit,
		strategy.StateTakeProfit,
		strategy.StatePending,
	}
	var closed *models.TradeRecord
	for i, state := range want {
		require.NoError(t, f.driver.Tick(ctx), "tick %d", i+1)
		assert.Equal(t, state, f.strategy.State(), "tick %d", i+1)
		if i == 1 {
			assert.Equal(t, 105.0, f.driver.trade.ProfitTarget)
			assert.Equal(t, 95.0, f.driver.trade.StopTarget)
		}
		if f.driver.trade != nil {
			closed = f.driver.trade
		}
	}

	require.NotNil(t, closed)
	assert.True(t, closed.IsClosed())
	assert.Equal(t, 2, closed.TotalBars)
	assert.False(t, closed.StopTriggered)
	assert.InDelta(t, 6.0, closed.Profit(), 1e-9)
	assert.Nil(t, f.driver.trade)
	f.executor.AssertExpectations(t)
}

func TestDriver_ShortStopLoss(t *testing.T) {
	// Arrange
	f := setup(t)
	ctx := context.Background()
	f.strategy.enterOn[1] = models.Short

	for _, p := range []float64{200, 200, 211} {
		f.executor.On("GetTickerPrice", mock.Anything, "BTCUSDT").Return(p, nil).Once()
	}
	f.executor.On("CreateOrder", mock.Anything, mock.MatchedBy(func(r binance.OrderRequest) bool {
		return r.Side == models.OrderSideSell
	})).Return(order("1", models.OrderStatusOpen, models.OrderSideSell, 200), nil).Once()
	f.executor.On("GetOrder", mock.Anything, "BTCUSDT", "1").
		Return(order("1", models.OrderStatusClosed, models.OrderSideSell, 200), nil).Once()
	f.executor.On("CreateOrder", mock.Anything, mock.MatchedBy(func(r binance.OrderRequest) bool {
		return r.Side == models.OrderSideBuy && r.Type == models.OrderTypeMarket
	})).Return(order("2", models.OrderStatusClosed, models.OrderSideBuy, 211), nil).Once()

	// Act
	for i := 0; i < 3; i++ {
		require.NoError(t, f.driver.Tick(ctx))
	}

	// Assert
	assert.Equal(t, strategy.StateStopLossTriggered, f.strategy.State())
	require.NotNil(t, f.driver.trade)
	assert.True(t, f.driver.trade.StopTriggered)
	assert.InDelta(t, -11.0, f.driver.trade.Profit(), 1e-9)
	f.executor.AssertExpectations(t)
}

func TestDriver_EntryNotFilled(t *testing.T) {
	tests := []struct {
		name   string
		status models.OrderStatus
		want   strategy.State
	}{
		{name: "still open", status: models.OrderStatusOpen, want: strategy.StateAwaitOrderFilled},
		{name: "canceled", status: models.OrderStatusCanceled, want: strategy.StatePending},
		{name: "expired", status: models.OrderStatusExpired, want: strategy.StatePending},
		{name: "rejected", status: models.OrderStatusRejected, want: strategy.StatePending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := setup(t)
			f.strategy.enterOn[1] = models.Long
			f.executor.On("GetTickerPrice", mock.Anything, "BTCUSDT").Return(100.0, nil)
			f.executor.On("CreateOrder", mock.Anything, mock.Anything).
				Return(order("1", models.OrderStatusOpen, models.OrderSideBuy, 100), nil).Once()
			f.executor.On("GetOrder", mock.Anything, "BTCUSDT", "1").
				Return(order("1", tt.status, models.OrderSideBuy, 100), nil).Once()

			// Act
			require.NoError(t, f.driver.Tick(context.Background()))
			require.NoError(t, f.driver.Tick(context.Background()))

			// Assert
			assert.Equal(t, tt.want, f.strategy.State())
			assert.Equal(t, tt.want != strategy.StatePending, f.driver.trade != nil)
		})
	}
}

func TestDriver_EntryOrderFails(t *testing.T) {
	// Arrange
	f := setup(t)
	f.strategy.enterOn[1] = models.Long
	f.executor.On("GetTickerPrice", mock.Anything, "BTCUSDT").Return(100.0, nil)
	f.executor.On("CreateOrder", mock.Anything, mock.Anything).
		Return(models.Order{}, errors.New("insufficient funds")).Once()

	// Act
	err := f.driver.Tick(context.Background())

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient funds")
	assert.Equal(t, strategy.StatePending, f.strategy.State())
	assert.Nil(t, f.driver.trade)
}

func TestDriver_TickerFallsBackToLastClose(t *testing.T) {
	// Arrange
	f := setup(t)
	f.strategy.enterOn[1] = models.Long
	f.executor.On("GetTickerPrice", mock.Anything, "BTCUSDT").Return(0.0, errors.New("API down"))
	f.executor.On("CreateOrder", mock.Anything, mock.MatchedBy(func(r binance.OrderRequest) bool {
		return r.Price == 99
	})).Return(order("1", models.OrderStatusOpen, models.OrderSideBuy, 99), nil).Once()

	// Act
	err := f.driver.Tick(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, strategy.StateAwaitOrderFilled, f.strategy.State())
	f.executor.AssertExpectations(t)
}

func TestDriver_AlertIsNotified(t *testing.T) {
	// Arrange
	f := setup(t)
	f.strategy.alertOn[1] = "BTCUSDT trend turned up"
	f.executor.On("GetTickerPrice", mock.Anything, "BTCUSDT").Return(100.0, nil)
	f.notifier.On("Notify", mock.Anything, "BTCUSDT", mock.MatchedBy(func(r strategy.Result) bool {
		return r.State == strategy.StateTriggerAlert && r.Context == "BTCUSDT trend turned up"
	})).Return(nil).Once()

	// Act
	require.NoError(t, f.driver.Tick(context.Background()))
	require.NoError(t, f.driver.Tick(context.Background()))

	// Assert
	f.notifier.AssertExpectations(t)
	f.executor.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestDriver_FetchErrorKeepsState(t *testing.T) {
	// Arrange
	src := new(MockSource)
	src.On("FetchOHLCVSince", mock.Anything, "BTCUSDT", "1h", mock.Anything).
		Return([]models.Candle(nil), errors.New("API down"))
	s := newScripted()
	d, err := NewDriver(testConfig(), s, src, new(MockExecutor), new(MockNotifier), zap.NewNop())
	require.NoError(t, err)

	// Act
	err = d.Tick(context.Background())

	// Assert
	assert.ErrorContains(t, err, "API down")
	assert.Equal(t, strategy.StatePending, s.State())
	assert.Zero(t, s.runs)
}

func TestDriver_RunStopsOnCancel(t *testing.T) {
	// Arrange
	src := new(MockSource)
	src.On("FetchOHLCVSince", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Candle(nil), errors.New("API down"))
	d, err := NewDriver(testConfig(), newScripted(), src, new(MockExecutor), new(MockNotifier), zap.NewNop())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Act
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	// Assert
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	src.AssertNumberOfCalls(t, "FetchOHLCVSince", 1)
}

func TestNewDriver_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *config.Config)
	}{
		{name: "timeframe", mutate: func(c *config.Config) { c.Assembler.Timeframe = "soon" }},
		{name: "tick interval", mutate: func(c *config.Config) { c.Live.TickInterval = 0 }},
		{name: "history", mutate: func(c *config.Config) { c.Live.HistoryCandles = 0 }},
		{name: "amount", mutate: func(c *config.Config) { c.Simulation.Amount = 0 }},
		{name: "profit", mutate: func(c *config.Config) { c.Simulation.ProfitPct = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)

			_, err := NewDriver(cfg, newScripted(), new(MockSource), new(MockExecutor), new(MockNotifier), zap.NewNop())

			assert.ErrorIs(t, err, models.ErrInvalidConfiguration)
		})
	}
}

type pagedSource struct {
	MockSource
}

func (p *pagedSource) MaxCandlesPerRequest() int { return 1000 }

func TestNewDriver_HistoryAbovePageLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Live.HistoryCandles = 1500

	_, err := NewDriver(cfg, newScripted(), &pagedSource{}, new(MockExecutor), new(MockNotifier), zap.NewNop())
	assert.ErrorIs(t, err, models.ErrInvalidConfiguration)

	cfg.Live.HistoryCandles = 1000
	_, err = NewDriver(cfg, newScripted(), &pagedSource{}, new(MockExecutor), new(MockNotifier), zap.NewNop())
	assert.NoError(t, err)
}

func TestLogNotifier(t *testing.T) {
	n := NewLogNotifier(zap.NewNop())

	err := n.Notify(context.Background(), "BTCUSDT", strategy.Result{State: strategy.StateTriggerAlert, Context: "hello"})

	assert.NoError(t, err)
}
