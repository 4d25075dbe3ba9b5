package binance

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"binance-strategy-bot-go/internal/models"
	"go.uber.org/zap"
)

// OrderRequest describes an order to place.
type OrderRequest struct {
	Symbol string
	Side   models.OrderSide
	Type   models.OrderType
	Amount float64
	Price  float64 // limit orders only
}

// OrderExecutor places and tracks orders for the live driver.
type OrderExecutor interface {
	CreateOrder(ctx context.Context, req OrderRequest) (models.Order, error)
	GetOrder(ctx context.Context, symbol, id string) (models.Order, error)
	GetTickerPrice(ctx context.Context, symbol string) (float64, error)
}

// OrderResponse is the order object returned by the /order endpoints.
type OrderResponse struct {
	Symbol              string `json:"symbol"`
	OrderID             int64  `json:"orderId"`
	ClientOrderID       string `json:"clientOrderId"`
	TransactTime        int64  `json:"transactTime"`
	Time                int64  `json:"time"`
	Price               string `json:"price"`
	OrigQuantity        string `json:"origQty"`
	ExecutedQuantity    string `json:"executedQty"`
	CummulativeQuoteQty string `json:"cummulativeQuoteQty"`
	Status              string `json:"status"`
	TimeInForce         string `json:"timeInForce"`
	Type                string `json:"type"`
	Side                string `json:"side"`
}

// CreateOrder places a new order on Binance. Quantity and price are floored
// to the symbol's lot and tick sizes first.
func (c *RestClient) CreateOrder(ctx context.Context, order OrderRequest) (models.Order, error) {
	info, err := c.symbolInfo(ctx, order.Symbol)
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to create order: %w", err)
	}
	quantity, err := FormatQuantity(info, order.Amount)
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to create order: %w", err)
	}

	params := url.Values{}
	params.Set("symbol", order.Symbol)
	params.Set("side", strings.ToUpper(string(order.Side)))
	params.Set("type", strings.ToUpper(string(order.Type)))
	params.Set("quantity", strconv.FormatFloat(quantity, 'f', -1, 64))
	if order.Type == models.OrderTypeLimit {
		params.Set("timeInForce", "GTC")
		params.Set("price", strconv.FormatFloat(FormatPrice(info, order.Price), 'f', -1, 64))
	}

	req := c.client.R().
		SetContext(ctx).
		SetHeader("X-MBX-APIKEY", c.apiKey).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetBody(c.signedQuery(params)).
		SetResult(&OrderResponse{})

	resp, err := c.doRequest(ctx, http.MethodPost, "/order", req)
	if err != nil {
		c.logger.Error("Failed to create order after multiple attempts",
			zap.Error(err),
			zap.String("symbol", order.Symbol),
		)
		return models.Order{}, fmt.Errorf("failed to create order: %w", err)
	}

	result := resp.Result().(*OrderResponse)
	c.logger.Info("Successfully created order", zap.Any("order", result))
	return result.toOrder()
}

// GetOrder fetches the current state of an order.
func (c *RestClient) GetOrder(ctx context.Context, symbol, id string) (models.Order, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("orderId", id)

	req := c.client.R().
		SetContext(ctx).
		SetHeader("X-MBX-APIKEY", c.apiKey).
		SetQueryString(c.signedQuery(params)).
		SetResult(&OrderResponse{})

	resp, err := c.doRequest(ctx, http.MethodGet, "/order", req)
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to get order %s: %w", id, err)
	}
	return resp.Result().(*OrderResponse).toOrder()
}

func (r *OrderResponse) toOrder() (models.Order, error) {
	amount, err := strconv.ParseFloat(r.OrigQuantity, 64)
	if err != nil {
		return models.Order{}, fmt.Errorf("parse origQty %q: %w", r.OrigQuantity, err)
	}
	price, _ := strconv.ParseFloat(r.Price, 64)
	if price == 0 {
		// market orders report price 0; use the average fill price
		executed, _ := strconv.ParseFloat(r.ExecutedQuantity, 64)
		quote, _ := strconv.ParseFloat(r.CummulativeQuoteQty, 64)
		if executed > 0 {
			price = quote / executed
		}
	}

	ts := r.TransactTime
	if ts == 0 {
		ts = r.Time
	}
	return models.Order{
		ID:        strconv.FormatInt(r.OrderID, 10),
		Datetime:  time.UnixMilli(ts).UTC().Format(time.RFC3339),
		Timestamp: ts,
		Status:    orderStatus(r.Status),
		Symbol:    r.Symbol,
		Type:      models.OrderType(strings.ToLower(r.Type)),
		Side:      models.OrderSide(strings.ToLower(r.Side)),
		Price:     price,
		Amount:    amount,
	}, nil
}

func orderStatus(status string) models.OrderStatus {
	switch status {
	case "FILLED":
		return models.OrderStatusClosed
	case "CANCELED", "PENDING_CANCEL":
		return models.OrderStatusCanceled
	case "REJECTED":
		return models.OrderStatusRejected
	case "EXPIRED", "EXPIRED_IN_MATCH":
		return models.OrderStatusExpired
	}
	return models.OrderStatusOpen
}
