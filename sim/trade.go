package sim

import (
	"math"
	"time"
)

// Side: +1 long, -1 short
type Side int8

const (
	Long  Side = +1
	Short Side = -1
)

func (s Side) String() string {
	if s == Short {
		return "sell"
	}
	return "buy"
}

// CloseReason distinguishes how a trade left the book. EndOfData marks
// the forced liquidation at the end of a replay, not a simulated market
// exit, so exports can tell the two apart.
type CloseReason string

const (
	CloseTakeProfit   CloseReason = "TakeProfit"
	CloseStopLoss     CloseReason = "StopLoss"
	CloseTrailingStop CloseReason = "TrailingStop"
	CloseEndOfData    CloseReason = "EndOfData"
)

// TargetKind tags the exit-target variant.
type TargetKind int8

const (
	TargetFixed TargetKind = iota
	TargetTrailing
)

// ExitTarget is either a fixed take-profit level or an open-ended
// trailing stop at a fixed distance behind the favorable extreme.
// A tagged variant, never a nullable price reinterpreted in place.
type ExitTarget struct {
	Kind     TargetKind
	Price    float64 // fixed: the take-profit level
	Distance float64 // trailing: absolute distance behind the extreme
}

func FixedTarget(price float64) ExitTarget {
	return ExitTarget{Kind: TargetFixed, Price: price}
}

func TrailingTarget(distance float64) ExitTarget {
	return ExitTarget{Kind: TargetTrailing, Distance: distance}
}

// Trade is one simulated position. Owned exclusively by a Ledger; the
// lifecycle is Open -> (TrailingArmed) -> Closed with no way back out
// of Closed. Units are fixed at open and never recomputed.
type Trade struct {
	ID         int64
	Instrument string
	Side       Side
	EntryPrice float64
	OpenTime   time.Time

	StopLoss       float64    // current, trail-adjustable
	OriginalStop   float64    // immutable, risk/reward accounting
	Target         ExitTarget // current exit target
	OriginalTarget float64    // immutable take-profit proposed at open

	Units float64

	HighestPrice float64
	LowestPrice  float64

	BreakEvenReached bool
	TrailingArmed    bool

	Closed      bool
	ClosePrice  float64
	CloseTime   time.Time
	CloseReason CloseReason

	Profit     float64 // native price units
	ProfitPips float64
	ProfitUSD  float64 // account currency
	Win        bool
}

// RiskDistance is the original entry-to-stop distance.
func (t *Trade) RiskDistance() float64 {
	return math.Abs(t.EntryPrice - t.OriginalStop)
}

// TargetDistance is the original entry-to-take-profit distance.
func (t *Trade) TargetDistance() float64 {
	return math.Abs(t.OriginalTarget - t.EntryPrice)
}

// FavorableExcursion is how far price has moved in the trade's favor,
// measured from entry to the recorded extreme.
func (t *Trade) FavorableExcursion() float64 {
	if t.Side == Long {
		return t.HighestPrice - t.EntryPrice
	}
	return t.EntryPrice - t.LowestPrice
}
