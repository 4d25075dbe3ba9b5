package binance

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"binance-strategy-bot-go/internal/models"
	"go.uber.org/zap"
)

// PriceSource supplies the latest traded price of a symbol.
type PriceSource interface {
	GetTickerPrice(ctx context.Context, symbol string) (float64, error)
}

// PaperExecutor fills orders in memory instead of sending them to the exchange.
// Limit orders fill at their own price, market orders at the current ticker price.
type PaperExecutor struct {
	prices PriceSource
	logger *zap.Logger
	now    func() time.Time

	mu     sync.Mutex
	seq    int
	orders map[string]models.Order
}

var _ OrderExecutor = (*PaperExecutor)(nil)

// NewPaperExecutor creates a PaperExecutor quoting market orders from prices.
func NewPaperExecutor(prices PriceSource, logger *zap.Logger) *PaperExecutor {
	return &PaperExecutor{
		prices: prices,
		logger: logger.Named("paper"),
		now:    time.Now,
		orders: make(map[string]models.Order),
	}
}

// CreateOrder records a filled order.
func (p *PaperExecutor) CreateOrder(ctx context.Context, req OrderRequest) (models.Order, error) {
	if req.Amount <= 0 {
		return models.Order{}, fmt.Errorf("%w: order amount must be positive", models.ErrInvalidConfiguration)
	}

	price := req.Price
	if req.Type == models.OrderTypeMarket || price <= 0 {
		var err error
		if price, err = p.prices.GetTickerPrice(ctx, req.Symbol); err != nil {
			return models.Order{}, fmt.Errorf("paper order price: %w", err)
		}
	}

	now := p.now().UTC()
	p.mu.Lock()
	p.seq++
	order := models.Order{
		ID:        "paper-" + strconv.Itoa(p.seq),
		Datetime:  now.Format(time.RFC3339),
		Timestamp: now.UnixMilli(),
		Status:    models.OrderStatusClosed,
		Symbol:    req.Symbol,
		Type:      req.Type,
		Side:      req.Side,
		Price:     price,
		Amount:    req.Amount,
	}
	p.orders[order.ID] = order
	p.mu.Unlock()

	p.logger.Warn("[Dry Run] Simulated order",
		zap.String("id", order.ID),
		zap.String("symbol", order.Symbol),
		zap.String("side", string(order.Side)),
		zap.Float64("price", order.Price),
		zap.Float64("amount", order.Amount),
	)
	return order, nil
}

// GetOrder returns a previously created paper order.
func (p *PaperExecutor) GetOrder(_ context.Context, symbol, id string) (models.Order, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	order, ok := p.orders[id]
	if !ok || order.Symbol != symbol {
		return models.Order{}, fmt.Errorf("paper order %s for %s not found", id, symbol)
	}
	return order, nil
}

// GetTickerPrice delegates to the price source.
func (p *PaperExecutor) GetTickerPrice(ctx context.Context, symbol string) (float64, error) {
	return p.prices.GetTickerPrice(ctx, symbol)
}
