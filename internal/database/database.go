package database

import (
	"fmt"

	"binance-strategy-bot-go/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// NewDatabase creates a new database connection and performs auto-migration.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// AutoMigrate creates or updates the candle cache schema. Existing rows are kept.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.CandleRecord{}); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}

// CandleStore caches assembled candle series for offline backtests.
type CandleStore struct {
	db *gorm.DB
}

// NewCandleStore wraps an opened and migrated database.
func NewCandleStore(db *gorm.DB) *CandleStore {
	return &CandleStore{db: db}
}

// SaveSeries upserts every candle of series. A candle already cached for the
// same symbol, timeframe and timestamp is overwritten.
func (s *CandleStore) SaveSeries(series models.CandleSeries) (int, error) {
	if len(series.Candles) == 0 {
		return 0, nil
	}

	rows := make([]models.CandleRecord, len(series.Candles))
	for i, c := range series.Candles {
		rows[i] = models.CandleRecord{
			Symbol:    series.Symbol,
			Timeframe: series.Timeframe,
			Timestamp: c.Timestamp,
			Open:      c.Open,
			High:      c.High,
			Low:       c.Low,
			Close:     c.Close,
			Volume:    c.Volume,
		}
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "timeframe"}, {Name: "timestamp"}},
		DoUpdates: clause.AssignmentColumns([]string{"open", "high", "low", "close", "volume", "updated_at"}),
	}).CreateInBatches(rows, 500).Error
	if err != nil {
		return 0, fmt.Errorf("failed to save %s %s candles: %w", series.Symbol, series.Timeframe, err)
	}
	return len(rows), nil
}

// LoadSeries returns the cached candles of symbol and timeframe in ascending order.
// since (epoch ms) bounds the oldest candle; zero loads everything.
func (s *CandleStore) LoadSeries(symbol, timeframe string, since int64) (models.CandleSeries, error) {
	series := models.CandleSeries{Symbol: symbol, Timeframe: timeframe}

	var rows []models.CandleRecord
	err := s.db.
		Where("symbol = ? AND timeframe = ? AND timestamp >= ?", symbol, timeframe, since).
		Order("timestamp asc").
		Find(&rows).Error
	if err != nil {
		return series, fmt.Errorf("could not load %s %s candles: %w", symbol, timeframe, err)
	}

	series.Candles = make([]models.Candle, len(rows))
	for i, r := range rows {
		series.Candles[i] = r.ToCandle()
	}
	return series, nil
}

// Count returns the number of cached candles for symbol and timeframe.
func (s *CandleStore) Count(symbol, timeframe string) (int64, error) {
	var n int64
	err := s.db.Model(&models.CandleRecord{}).
		Where("symbol = ? AND timeframe = ?", symbol, timeframe).
		Count(&n).Error
	return n, err
}
