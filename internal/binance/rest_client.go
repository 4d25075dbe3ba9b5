package binance

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"binance-strategy-bot-go/internal/candles"
	"binance-strategy-bot-go/internal/config"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	baseURL        = "https://api.binance.com/api/v3"
	testnetBaseURL = "https://testnet.binance.vision/api/v3"
	recvWindow     = "5000" // How long a request is valid in milliseconds
	maxKlineLimit  = 1000
)

// RestClientInterface defines the interface for the Binance REST API client.
type RestClientInterface interface {
	candles.Source
	candles.PageLimiter
	OrderExecutor
	GetServerTime(ctx context.Context) (int64, error)
	GetExchangeInfo(ctx context.Context) (*ExchangeInfoResponse, error)
	GetKlines(ctx context.Context, symbol, interval string, startTime int64, limit int) ([][]float64, error)
}

// RestClient is a client for the Binance REST API.
// It implements the RestClientInterface.
type RestClient struct {
	client    *resty.Client
	apiKey    string
	secretKey string
	logger    *zap.Logger
	limiter   *rate.Limiter
	backoff   time.Duration // first retry delay, doubled on each attempt

	rulesMu sync.Mutex
	rules   map[string]SymbolInfo
}

// ensure RestClient implements the interface
var _ RestClientInterface = (*RestClient)(nil)

// NewRestClient creates a new Binance REST API client.
func NewRestClient(cfg *config.Binance, logger *zap.Logger) *RestClient {
	logger = logger.Named("binance")

	endpoint := baseURL
	if cfg.Testnet {
		endpoint = testnetBaseURL
		logger.Warn("Using Binance Testnet")
	} else {
		logger.Info("Using Binance Production API")
	}

	client := resty.New().SetBaseURL(endpoint)

	// rate.Limit is requests per second.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &RestClient{
		client:    client,
		apiKey:    cfg.ApiKey,
		secretKey: cfg.SecretKey,
		logger:    logger,
		limiter:   limiter,
		backoff:   time.Second,
	}
}

// sign creates a HMAC-SHA256 signature for the request.
func (c *RestClient) sign(data string) string {
	h := hmac.New(sha256.New, []byte(c.secretKey))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// GetServerTime fetches the current server time from Binance.
// This is a good endpoint to test connectivity.
func (c *RestClient) GetServerTime(ctx context.Context) (int64, error) {
	type ServerTimeResponse struct {
		ServerTime int64 `json:"serverTime"`
	}

	req := c.client.R().
		SetContext(ctx).
		SetResult(&ServerTimeResponse{})

	resp, err := c.doRequest(ctx, http.MethodGet, "/time", req)
	if err != nil {
		c.logger.Error("Failed to get server time", zap.Error(err))
		return 0, fmt.Errorf("failed to get server time: %w", err)
	}

	result := resp.Result().(*ServerTimeResponse)
	return result.ServerTime, nil
}

// doRequest handles the actual request execution with rate limiting and retry logic.
func (c *RestClient) doRequest(ctx context.Context, method, path string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing request", zap.String("method", method), zap.String("url", c.client.BaseURL+path))
		resp, err = req.Execute(method, path)

		if err == nil && !resp.IsError() {
			return resp, nil
		}

		// Analyze error and decide whether to retry
		shouldRetry := false
		var retryAfter time.Duration

		if err == nil {
			statusCode := resp.StatusCode()
			if statusCode == http.StatusTooManyRequests || statusCode == 418 { // HTTP 429 or 418
				shouldRetry = true
				if seconds, convErr := strconv.Atoi(resp.Header().Get("Retry-After")); convErr == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if statusCode >= 500 {
				shouldRetry = true
			}
			err = fmt.Errorf("status %s: %s", resp.Status(), resp.String())
		} else { // Network or other client-side errors
			shouldRetry = true
		}

		if !shouldRetry {
			return nil, fmt.Errorf("request failed with %w", err)
		}

		if retryAfter == 0 {
			// Exponential backoff: 1x, 2x, 4x
			retryAfter = time.Duration(math.Pow(2, float64(i))) * c.backoff
		}

		c.logger.Warn("Request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, err)
}

// signedQuery adds the timestamp, receive window and signature Binance
// requires on account endpoints and returns the encoded query.
func (c *RestClient) signedQuery(params url.Values) string {
	params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	params.Set("recvWindow", recvWindow)
	queryString := params.Encode()
	return queryString + "&signature=" + c.sign(queryString)
}
