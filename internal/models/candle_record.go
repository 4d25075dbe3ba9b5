package models

import "gorm.io/gorm"

// CandleRecord is a cached candle row.
// Symbol, timeframe and timestamp identify a row uniquely.
type CandleRecord struct {
	gorm.Model
	Symbol    string  `gorm:"uniqueIndex:idx_symbol_tf_ts;not null"`
	Timeframe string  `gorm:"uniqueIndex:idx_symbol_tf_ts;not null"`
	Timestamp int64   `gorm:"uniqueIndex:idx_symbol_tf_ts;not null"`
	Open      float64 `gorm:"not null"`
	High      float64 `gorm:"not null"`
	Low       float64 `gorm:"not null"`
	Close     float64 `gorm:"not null"`
	Volume    float64
}

// ToCandle converts the row back to a domain candle.
func (r CandleRecord) ToCandle() Candle {
	return Candle{
		Timestamp: r.Timestamp,
		Open:      r.Open,
		High:      r.High,
		Low:       r.Low,
		Close:     r.Close,
		Volume:    r.Volume,
	}
}
