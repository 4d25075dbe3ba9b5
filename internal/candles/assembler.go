package candles

import (
	"context"
	"fmt"
	"sort"
	"time"

	"binance-strategy-bot-go/internal/models"
	"go.uber.org/zap"
)

// Request describes one history download.
type Request struct {
	Symbol            string
	Timeframe         string
	CandlesPerRequest int
	MaxPolls          int
}

func (r Request) validate() error {
	switch {
	case r.Symbol == "":
		return fmt.Errorf("%w: symbol must be set", models.ErrInvalidConfiguration)
	case r.CandlesPerRequest <= 0:
		return fmt.Errorf("%w: candles per request must be positive", models.ErrInvalidConfiguration)
	case r.MaxPolls <= 0:
		return fmt.Errorf("%w: max polls must be positive", models.ErrInvalidConfiguration)
	}
	return nil
}

// Assembler walks backwards through a source's history in bounded windows and
// stitches the windows into one ascending, deduplicated series.
// Polls are strictly sequential.
type Assembler struct {
	source Source
	logger *zap.Logger
	now    func() time.Time
}

// NewAssembler creates an Assembler reading from source.
func NewAssembler(source Source, logger *zap.Logger) *Assembler {
	return &Assembler{
		source: source,
		logger: logger.Named("assembler"),
		now:    time.Now,
	}
}

// Assemble downloads the candle history described by req.
func (a *Assembler) Assemble(ctx context.Context, req Request) (models.CandleSeries, error) {
	series := models.CandleSeries{Symbol: req.Symbol, Timeframe: req.Timeframe}

	if !a.source.Has(CapabilityFetchOHLCV) {
		return series, fmt.Errorf("assemble %s: %w: %s", req.Symbol, models.ErrUnsupportedCapability, CapabilityFetchOHLCV)
	}
	if err := req.validate(); err != nil {
		return series, fmt.Errorf("assemble %s: %w", req.Symbol, err)
	}
	if err := CheckPageLimit(a.source, req.CandlesPerRequest); err != nil {
		return series, fmt.Errorf("assemble %s: %w", req.Symbol, err)
	}
	unit, err := TimeframeDuration(req.Timeframe)
	if err != nil {
		return series, fmt.Errorf("assemble %s: %w", req.Symbol, err)
	}

	l := a.logger.With(zap.String("symbol", req.Symbol), zap.String("timeframe", req.Timeframe))
	step := time.Duration(req.CandlesPerRequest)*unit + unit

	var (
		buffer     []models.Candle
		prevOldest int64
		havePrev   bool
		lastErr    error
	)
	cursor := a.now()

	for poll := 1; poll <= req.MaxPolls; poll++ {
		cursor = cursor.Add(-step)
		since := a.source.ParseToEpoch(cursor)

		batch, err := a.source.FetchOHLCVSince(ctx, req.Symbol, req.Timeframe, since)
		if err != nil {
			lastErr = err
			l.Warn("Candle poll failed, stopping", zap.Int("poll", poll), zap.Error(err))
			break
		}
		if len(batch) <= 1 {
			l.Debug("Source returned no further history", zap.Int("poll", poll), zap.Int("candles", len(batch)))
			if len(buffer) == 0 {
				buffer = append(buffer, batch...)
			}
			break
		}

		if batch[0].Timestamp > batch[len(batch)-1].Timestamp {
			reverse(batch)
		}

		oldest := batch[0].Timestamp
		if havePrev && oldest == prevOldest {
			l.Debug("Source returned stale window, stopping", zap.Int("poll", poll), zap.Int64("oldest", oldest))
			break
		}

		buffer = append(append(make([]models.Candle, 0, len(batch)+len(buffer)), batch...), buffer...)
		prevOldest, havePrev = oldest, true
		cursor = time.UnixMilli(oldest)

		l.Debug("Prepended candle window",
			zap.Int("poll", poll),
			zap.Int("batch", len(batch)),
			zap.Int("total", len(buffer)),
		)

		if poll < req.MaxPolls {
			if err := a.source.WaitForRateLimit(ctx); err != nil {
				return series, fmt.Errorf("assemble %s: rate limit wait failed: %w", req.Symbol, err)
			}
		}
	}

	if len(buffer) == 0 && lastErr != nil {
		return series, fmt.Errorf("assemble %s: %w", req.Symbol, lastErr)
	}

	series.Candles = dedupe(buffer)
	l.Info("Candle series assembled", zap.Int("candles", len(series.Candles)))
	return series, nil
}

func reverse(c []models.Candle) {
	for i, j := 0, len(c)-1; i < j; i, j = i+1, j-1 {
		c[i], c[j] = c[j], c[i]
	}
}

// dedupe sorts candles by timestamp and keeps the first candle seen for each timestamp.
func dedupe(in []models.Candle) []models.Candle {
	sort.SliceStable(in, func(i, j int) bool { return in[i].Timestamp < in[j].Timestamp })
	out := make([]models.Candle, 0, len(in))
	for _, c := range in {
		if len(out) > 0 && out[len(out)-1].Timestamp == c.Timestamp {
			continue
		}
		out = append(out, c)
	}
	return out
}
