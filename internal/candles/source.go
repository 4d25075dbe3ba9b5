package candles

import (
	"context"
	"fmt"
	"time"

	"binance-strategy-bot-go/internal/models"
)

// CapabilityFetchOHLCV is the capability a source needs for history retrieval.
const CapabilityFetchOHLCV = "fetchOHLCV"

// Source is the slice of the exchange connectivity layer the assembler needs.
type Source interface {
	// Has reports whether the source supports the named capability.
	Has(capability string) bool
	// FetchOHLCVSince returns candles starting at since (epoch ms), in either order.
	FetchOHLCVSince(ctx context.Context, symbol, timeframe string, since int64) ([]models.Candle, error)
	// WaitForRateLimit blocks for the source's advertised request interval.
	WaitForRateLimit(ctx context.Context) error
	// ParseToEpoch converts a date to the source's epoch representation (ms).
	ParseToEpoch(t time.Time) int64
}

// PageLimiter is implemented by sources that return at most a fixed number of
// candles per fetch. Windows larger than that would leave gaps.
type PageLimiter interface {
	MaxCandlesPerRequest() int
}

// CheckPageLimit fails with ErrInvalidConfiguration when n candles cannot be
// fetched from source in one request.
func CheckPageLimit(source Source, n int) error {
	pl, ok := source.(PageLimiter)
	if !ok {
		return nil
	}
	if limit := pl.MaxCandlesPerRequest(); limit > 0 && n > limit {
		return fmt.Errorf("%w: %d candles per request exceeds the source limit of %d",
			models.ErrInvalidConfiguration, n, limit)
	}
	return nil
}
