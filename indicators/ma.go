package indicators

import (
	"fmt"

	"github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/market"
)

// MA calculates the Simple Moving Average of the close over the last
// period candles.
func MA(candles []market.Candle, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(candles) < period {
		return 0, fmt.Errorf("not enough candles: need %d, got %d", period, len(candles))
	}

	sum := 0.0
	for i := len(candles) - period; i < len(candles); i++ {
		sum += candles[i].Close
	}
	return sum / float64(period), nil
}

// EMA calculates the Exponential Moving Average of the close for the
// given period, seeded with the first close and smoothed across the
// whole series. Deterministic for identical input.
func EMA(candles []market.Candle, period int) (float64, error) {
	series, err := EMASeries(candles, period)
	if err != nil {
		return 0, err
	}
	return series[len(series)-1], nil
}

// EMASeries returns the full EMA series, one value per candle. The
// series starts at the first close, so early values carry seed bias;
// callers wanting a stable value should discard the warmup prefix.
func EMASeries(candles []market.Candle, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("no candles")
	}

	multiplier := 2.0 / float64(period+1)

	out := make([]float64, len(candles))
	out[0] = candles[0].Close
	for i := 1; i < len(candles); i++ {
		out[i] = (candles[i].Close-out[i-1])*multiplier + out[i-1]
	}
	return out, nil
}
