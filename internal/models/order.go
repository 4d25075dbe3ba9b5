package models

// OrderStatus is the lifecycle status reported by the order-execution service.
type OrderStatus string

// OrderType is the execution type of an order.
type OrderType string

// OrderSide is buy or sell.
type OrderSide string

const (
	OrderStatusOpen     OrderStatus = "open"
	OrderStatusClosed   OrderStatus = "closed"
	OrderStatusCanceled OrderStatus = "canceled"
	OrderStatusExpired  OrderStatus = "expired"
	OrderStatusRejected OrderStatus = "rejected"

	OrderTypeMarket OrderType = "market"
	OrderTypeLimit  OrderType = "limit"

	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// Order is the order shape exchanged with the order-execution service.
type Order struct {
	ID        string      `json:"id"`
	Datetime  string      `json:"datetime"`
	Timestamp int64       `json:"timestamp"`
	Status    OrderStatus `json:"status"`
	Symbol    string      `json:"symbol"`
	Type      OrderType   `json:"type"`
	Side      OrderSide   `json:"side"`
	Price     float64     `json:"price"`
	Amount    float64     `json:"amount"`
}

// Cost is the quote value of the order.
func (o Order) Cost() float64 {
	return o.Price * o.Amount
}

// IsFinal reports whether the order can no longer fill.
func (o Order) IsFinal() bool {
	switch o.Status {
	case OrderStatusClosed, OrderStatusCanceled, OrderStatusExpired, OrderStatusRejected:
		return true
	}
	return false
}
