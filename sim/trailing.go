package sim

import "github.com/georgevans/Forex-Backtester-and-Strategy-Mangager/market"

// TrailTrigger decides whether an open trade should arm its trailing
// stop on this bar. Pure function of its inputs.
//
// It triggers only once break-even has been reached, when the bar's
// favorable extreme touches entry +/- trailStart x the original target
// distance. The returned distance is trailDistance x the original
// target distance; the caller tightens the stop behind the favorable
// extreme by that amount but never loosens it.
func TrailTrigger(c market.Candle, t *Trade, trailStart, trailDistance float64) (float64, bool) {
	if !t.BreakEvenReached {
		return 0, false
	}

	targetDist := t.TargetDistance()
	if targetDist <= 0 {
		return 0, false
	}

	distance := market.RoundPrice(trailDistance * targetDist)

	if t.Side == Long {
		trigger := t.EntryPrice + trailStart*targetDist
		if c.High >= trigger {
			return distance, true
		}
		return 0, false
	}

	trigger := t.EntryPrice - trailStart*targetDist
	if c.Low <= trigger {
		return distance, true
	}
	return 0, false
}

// trailStopFor computes the stop level a trailing target implies at the
// trade's current favorable extreme.
func trailStopFor(t *Trade) float64 {
	if t.Side == Long {
		return t.HighestPrice - t.Target.Distance
	}
	return t.LowestPrice + t.Target.Distance
}

// tightens reports whether newStop reduces risk relative to the current
// stop. A trailing stop may only ever move in the trade's favor.
func tightens(t *Trade, newStop float64) bool {
	if t.Side == Long {
		return newStop > t.StopLoss
	}
	return newStop < t.StopLoss
}
