package market

import (
	"fmt"
	"time"
)

// Candle represents OHLC (Open, High, Low, Close) candlestick data.
// A candle is immutable once produced; sequences are ordered by
// strictly increasing time.
type Candle struct {
	Open   float64
	High   float64
	Low    float64
	Close  float64
	time.Time
	Volume float64
}

// Valid reports whether the candle carries a usable OHLC set. Feeds can
// produce partial rows (missing fields parse as zero); strategies treat
// those as "hold", not as a fault.
func (c Candle) Valid() bool {
	if c.Open <= 0 || c.High <= 0 || c.Low <= 0 || c.Close <= 0 {
		return false
	}
	return c.High >= c.Low
}

// CheckOrdered verifies the sequence never goes backwards in time.
// Candles without timestamps (CSV files with no date column) are allowed.
func CheckOrdered(candles []Candle) error {
	var last time.Time
	for i, c := range candles {
		if c.Time.IsZero() {
			continue
		}
		if !last.IsZero() && !c.Time.After(last) {
			return fmt.Errorf("candle %d: time %s not after %s", i, c.Time.Format(time.RFC3339), last.Format(time.RFC3339))
		}
		last = c.Time
	}
	return nil
}
