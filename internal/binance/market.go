package binance

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"binance-strategy-bot-go/internal/candles"
	"binance-strategy-bot-go/internal/models"
	"go.uber.org/zap"
)

// Capabilities this client supports.
const (
	CapabilityCreateOrder = "createOrder"
	CapabilityFetchOrder  = "fetchOrder"
	CapabilityFetchTicker = "fetchTicker"
)

var capabilities = map[string]bool{
	candles.CapabilityFetchOHLCV: true,
	CapabilityCreateOrder:        true,
	CapabilityFetchOrder:         true,
	CapabilityFetchTicker:        true,
}

// intervals are the kline intervals Binance accepts.
var intervals = map[string]bool{
	"1s": true, "1m": true, "3m": true, "5m": true, "15m": true, "30m": true,
	"1h": true, "2h": true, "4h": true, "6h": true, "8h": true, "12h": true,
	"1d": true, "3d": true, "1w": true, "1M": true,
}

// Has reports whether the client supports a capability.
func (c *RestClient) Has(capability string) bool {
	return capabilities[capability]
}

// MaxCandlesPerRequest is the most klines Binance returns for one request.
func (c *RestClient) MaxCandlesPerRequest() int {
	return maxKlineLimit
}

// ParseToEpoch converts t to epoch milliseconds.
func (c *RestClient) ParseToEpoch(t time.Time) int64 {
	return t.UnixMilli()
}

// WaitForRateLimit blocks until the request limiter allows another call.
func (c *RestClient) WaitForRateLimit(ctx context.Context) error {
	return c.limiter.Wait(ctx)
}

// GetKlines fetches up to limit klines opening at or after startTime and
// returns them as [timestamp, open, high, low, close, volume] tuples.
func (c *RestClient) GetKlines(ctx context.Context, symbol, interval string, startTime int64, limit int) ([][]float64, error) {
	if !intervals[interval] {
		return nil, fmt.Errorf("%w: unsupported kline interval %q", models.ErrInvalidConfiguration, interval)
	}
	if limit <= 0 || limit > maxKlineLimit {
		limit = maxKlineLimit
	}

	var rows [][]any
	req := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol":    symbol,
			"interval":  interval,
			"startTime": strconv.FormatInt(startTime, 10),
			"limit":     strconv.Itoa(limit),
		}).
		SetResult(&rows)

	resp, err := c.doRequest(ctx, http.MethodGet, "/klines", req)
	if err != nil {
		return nil, fmt.Errorf("failed to get klines for %s: %w", symbol, err)
	}

	result := *resp.Result().(*[][]any)
	tuples := make([][]float64, 0, len(result))
	for i, row := range result {
		if len(row) < 6 {
			return nil, fmt.Errorf("kline %d for %s has %d fields", i, symbol, len(row))
		}
		tuple := make([]float64, 6)
		for j := 0; j < 6; j++ {
			if tuple[j], err = toFloat(row[j]); err != nil {
				return nil, fmt.Errorf("kline %d field %d for %s: %w", i, j, symbol, err)
			}
		}
		tuples = append(tuples, tuple)
	}
	return tuples, nil
}

// FetchOHLCVSince fetches candles opening at or after since.
func (c *RestClient) FetchOHLCVSince(ctx context.Context, symbol, timeframe string, since int64) ([]models.Candle, error) {
	tuples, err := c.GetKlines(ctx, symbol, timeframe, since, maxKlineLimit)
	if err != nil {
		return nil, err
	}

	out := make([]models.Candle, 0, len(tuples))
	for _, t := range tuples {
		candle, err := models.CandleFromTuple(t)
		if err != nil {
			return nil, err
		}
		out = append(out, candle)
	}
	c.logger.Debug("Fetched candles",
		zap.String("symbol", symbol),
		zap.String("timeframe", timeframe),
		zap.Int64("since", since),
		zap.Int("count", len(out)))
	return out, nil
}

// TickerPrice represents the response for a single ticker price.
type TickerPrice struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// GetTickerPrice fetches the latest price of one symbol.
func (c *RestClient) GetTickerPrice(ctx context.Context, symbol string) (float64, error) {
	req := c.client.R().
		SetContext(ctx).
		SetQueryParam("symbol", symbol).
		SetResult(&TickerPrice{})

	resp, err := c.doRequest(ctx, http.MethodGet, "/ticker/price", req)
	if err != nil {
		return 0, fmt.Errorf("failed to get ticker price for %s: %w", symbol, err)
	}

	result := resp.Result().(*TickerPrice)
	price, err := strconv.ParseFloat(result.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse ticker price %q for %s: %w", result.Price, symbol, err)
	}
	return price, nil
}

func toFloat(v any) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case string:
		return strconv.ParseFloat(val, 64)
	}
	return 0, fmt.Errorf("unexpected %T", v)
}
