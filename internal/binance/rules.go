package binance

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
)

// ExchangeInfoResponse represents the full response from the /exchangeInfo endpoint.
type ExchangeInfoResponse struct {
	Symbols []SymbolInfo `json:"symbols"`
}

// SymbolInfo contains information about a specific trading symbol.
type SymbolInfo struct {
	Symbol  string   `json:"symbol"`
	Status  string   `json:"status"`
	Filters []Filter `json:"filters"`
}

// Filter represents a single filter for a symbol.
// LOT_SIZE carries minQty and stepSize, PRICE_FILTER carries tickSize.
type Filter struct {
	FilterType string `json:"filterType"`
	MinQty     string `json:"minQty,omitempty"`
	MaxQty     string `json:"maxQty,omitempty"`
	StepSize   string `json:"stepSize,omitempty"`
	TickSize   string `json:"tickSize,omitempty"`
}

func (s SymbolInfo) filter(filterType string) (Filter, bool) {
	for _, f := range s.Filters {
		if f.FilterType == filterType {
			return f, true
		}
	}
	return Filter{}, false
}

// GetExchangeInfo fetches exchange trading rules and symbol information.
func (c *RestClient) GetExchangeInfo(ctx context.Context) (*ExchangeInfoResponse, error) {
	var exchangeInfo ExchangeInfoResponse

	req := c.client.R().
		SetContext(ctx).
		SetResult(&exchangeInfo).
		SetHeader("Content-Type", "application/json")

	resp, err := c.doRequest(ctx, http.MethodGet, "/exchangeInfo", req)
	if err != nil {
		return nil, fmt.Errorf("failed to get exchange info: %w", err)
	}

	return resp.Result().(*ExchangeInfoResponse), nil
}

// symbolInfo returns the cached trading rules of symbol, loading them on first use.
func (c *RestClient) symbolInfo(ctx context.Context, symbol string) (SymbolInfo, error) {
	c.rulesMu.Lock()
	defer c.rulesMu.Unlock()

	if c.rules == nil {
		info, err := c.GetExchangeInfo(ctx)
		if err != nil {
			return SymbolInfo{}, err
		}
		c.rules = make(map[string]SymbolInfo, len(info.Symbols))
		for _, s := range info.Symbols {
			c.rules[s.Symbol] = s
		}
	}

	info, ok := c.rules[symbol]
	if !ok {
		return SymbolInfo{}, fmt.Errorf("symbol %s is not listed", symbol)
	}
	return info, nil
}

// FormatQuantity floors quantity to the symbol's LOT_SIZE step and checks minQty.
// Symbols without a LOT_SIZE filter are returned unchanged.
func FormatQuantity(info SymbolInfo, quantity float64) (float64, error) {
	lot, ok := info.filter("LOT_SIZE")
	if !ok || lot.StepSize == "" {
		return quantity, nil
	}

	minQty, _ := strconv.ParseFloat(lot.MinQty, 64)
	floored := floorToStep(quantity, lot.StepSize)
	if floored < minQty || floored <= 0 {
		return 0, fmt.Errorf("quantity %.8f is less than minQty %.8f for symbol %s", quantity, minQty, info.Symbol)
	}
	return floored, nil
}

// FormatPrice floors price to the symbol's PRICE_FILTER tick.
func FormatPrice(info SymbolInfo, price float64) float64 {
	pf, ok := info.filter("PRICE_FILTER")
	if !ok || pf.TickSize == "" {
		return price
	}
	return floorToStep(price, pf.TickSize)
}

// floorToStep floors v to the number of decimals in step, e.g. "0.00100000" -> 3.
func floorToStep(v float64, step string) float64 {
	precision := 0
	if dot := strings.IndexByte(step, '.'); dot >= 0 {
		if trimmed := strings.TrimRight(step[dot+1:], "0"); trimmed != "" {
			precision = len(trimmed)
		}
	}
	multiplier := math.Pow(10, float64(precision))
	return math.Floor(v*multiplier) / multiplier
}
