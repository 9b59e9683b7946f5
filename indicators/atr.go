package indicators

import (
	"fmt"
	"math"

	"github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/market"
)

// ATR calculates the Average True Range as a simple rolling mean of the
// true range over the last period candles. Needs period+1 candles since
// the true range references the previous close.
func ATR(candles []market.Candle, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(candles) < period+1 {
		return 0, fmt.Errorf("not enough candles: need %d, got %d", period+1, len(candles))
	}

	sum := 0.0
	for i := len(candles) - period; i < len(candles); i++ {
		sum += trueRange(candles[i], candles[i-1])
	}
	return sum / float64(period), nil
}

// trueRange is the largest of high-low, |high-prevClose|, |low-prevClose|.
func trueRange(current, previous market.Candle) float64 {
	highLow := current.High - current.Low
	highClose := math.Abs(current.High - previous.Close)
	lowClose := math.Abs(current.Low - previous.Close)

	return math.Max(highLow, math.Max(highClose, lowClose))
}
